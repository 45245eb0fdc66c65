package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

// Format identifies a document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported document formats.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// FormatFromPath returns the document format for a file name or URL path
// based on its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document type: %s", path)
}

// ParseFormat validates a format name such as "json" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", s)
}

// Read decodes a document in the given format and validates it.
func Read(r io.Reader, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
}

// ReadJSON decodes and validates a JSON document.
//
// If the input is not well-formed JSON it is repaired once (trailing commas,
// comments, unquoted keys and similar) and decoded again. Unknown fields are
// rejected either way. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}

	doc, err := decodeJSON(data)
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
		doc, err = decodeJSON([]byte(repaired))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
	}
	return validated(doc)
}

func decodeJSON(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadTOML decodes and validates a TOML document. Nodes, clusters and edges
// are arrays of tables:
//
//	[[nodes]]
//	name = "api"
//	cluster = "backend"
func ReadTOML(r io.Reader) (*Document, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "decode toml: unknown key %q", undecoded[0].String())
	}
	return validated(&doc)
}

// ReadYAML decodes and validates a YAML document.
func ReadYAML(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
	}
	return validated(&doc)
}

func validated(doc *Document) (*Document, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Import reads the document at path, choosing the decoder from the file
// extension.
func Import(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format)
}
