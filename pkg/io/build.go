package io

import (
	stderrors "errors"

	"github.com/matzehuels/dotgraph/pkg/builder"
	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/graph"
)

// Build validates doc and creates its graph tree with cfg's layout
// settings. Clusters are created before nodes, parents before children,
// otherwise in declaration order. Document attributes are applied over the
// builder's defaults.
func Build(doc *Document, cfg config.Config) (*builder.Builder, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	b := builder.New(cfg)
	root := b.Graph()
	root.Attributes().SetAll(doc.Attrs)
	root.NodeAttributes().SetAll(doc.NodeAttrs)
	root.EdgeAttributes().SetAll(doc.EdgeAttrs)

	decls := make(map[string]Cluster, len(doc.Clusters))
	for _, c := range doc.Clusters {
		decls[c.Name] = c
	}
	var ensure func(name string) error
	ensure = func(name string) error {
		if _, ok := b.LookupCluster(name); ok {
			return nil
		}
		c := decls[name]
		if c.Parent != "" {
			if err := ensure(c.Parent); err != nil {
				return err
			}
		}
		g, err := b.Cluster(c.Name, c.Parent)
		if err != nil {
			return wrapBuild(err, "cluster %q", c.Name)
		}
		if !g.IsRoot() {
			g.Attributes().SetAll(c.Attrs)
		}
		return nil
	}
	for _, c := range doc.Clusters {
		if err := ensure(c.Name); err != nil {
			return nil, err
		}
	}

	for _, n := range doc.Nodes {
		node, err := b.Node(n.Name, n.Rank, n.Cluster)
		if err != nil {
			return nil, wrapBuild(err, "node %q", n.Name)
		}
		node.Attributes().SetAll(n.Attrs)
	}

	for _, e := range doc.Edges {
		edge, err := b.Edge(e.From, e.To)
		if err != nil {
			return nil, wrapBuild(err, "edge %s -> %s", e.From, e.To)
		}
		edge.Attributes().SetAll(e.Attrs)
	}

	return b, nil
}

func wrapBuild(err error, format string, args ...any) error {
	code := errors.ErrCodeInvalidDocument
	switch {
	case stderrors.Is(err, builder.ErrUnknownCluster):
		code = errors.ErrCodeUnknownCluster
	case stderrors.Is(err, builder.ErrUnknownNode):
		code = errors.ErrCodeUnknownNode
	case stderrors.Is(err, graph.ErrForeignNode), stderrors.Is(err, graph.ErrMissingEndpoint):
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, format, args...)
}
