package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/graph"
	"github.com/matzehuels/dotgraph/pkg/render/dot"
)

// WriteDOT writes g as DOT text to w.
func WriteDOT(w io.Writer, g graph.Graph) error {
	gen, err := dot.NewGenerator(g)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "generate dot")
	}
	if err := gen.Generate(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write dot")
	}
	return nil
}

// ExportDOT writes g as DOT text to a file at path.
// This is a convenience wrapper around [WriteDOT] for file-based output.
func ExportDOT(path string, g graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteDOT(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteDocument encodes doc in the given format.
func WriteDocument(w io.Writer, doc *Document, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}
