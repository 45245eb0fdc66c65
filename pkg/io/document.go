package io

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

// Document describes a clustered graph by name.
type Document struct {
	Attrs     map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty" jsonschema_description:"Attributes of the root graph"`
	NodeAttrs map[string]string `json:"node_attrs,omitempty" toml:"node_attrs,omitempty" yaml:"node_attrs,omitempty" jsonschema_description:"Default attributes for every node"`
	EdgeAttrs map[string]string `json:"edge_attrs,omitempty" toml:"edge_attrs,omitempty" yaml:"edge_attrs,omitempty" jsonschema_description:"Default attributes for every edge"`
	Clusters  []Cluster         `json:"clusters,omitempty" toml:"clusters,omitempty" yaml:"clusters,omitempty" jsonschema_description:"Clusters in declaration order"`
	Nodes     []Node            `json:"nodes" toml:"nodes" yaml:"nodes" jsonschema_description:"Nodes in declaration order"`
	Edges     []Edge            `json:"edges,omitempty" toml:"edges,omitempty" yaml:"edges,omitempty" jsonschema_description:"Edges in declaration order"`
}

// Cluster declares a named subgraph.
type Cluster struct {
	Name   string            `json:"name" toml:"name" yaml:"name" jsonschema:"required" jsonschema_description:"Unique cluster name, used as its label"`
	Parent string            `json:"parent,omitempty" toml:"parent,omitempty" yaml:"parent,omitempty" jsonschema_description:"Name of the enclosing cluster; empty for the root graph"`
	Attrs  map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty" jsonschema_description:"Cluster attributes"`
}

// Node declares a named node.
type Node struct {
	Name    string            `json:"name" toml:"name" yaml:"name" jsonschema:"required" jsonschema_description:"Unique node name"`
	Cluster string            `json:"cluster,omitempty" toml:"cluster,omitempty" yaml:"cluster,omitempty" jsonschema_description:"Owning cluster; empty for the root graph"`
	Rank    string            `json:"rank,omitempty" toml:"rank,omitempty" yaml:"rank,omitempty" jsonschema_description:"Nodes sharing a rank label in one cluster are laid out on the same level"`
	Attrs   map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty" jsonschema_description:"Node attributes"`
}

// Edge declares a directed edge between two declared nodes.
type Edge struct {
	From  string            `json:"from" toml:"from" yaml:"from" jsonschema:"required" jsonschema_description:"Source node name"`
	To    string            `json:"to" toml:"to" yaml:"to" jsonschema:"required" jsonschema_description:"Target node name"`
	Attrs map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty" jsonschema_description:"Edge attributes"`
}

// Validate checks names, attribute keys and references. Clusters may be
// declared in any order, but every parent must be declared and parent
// chains must not loop.
func (d *Document) Validate() error {
	for _, set := range []struct {
		what  string
		attrs map[string]string
	}{{"attrs", d.Attrs}, {"node_attrs", d.NodeAttrs}, {"edge_attrs", d.EdgeAttrs}} {
		if err := validateAttrs(set.what, set.attrs); err != nil {
			return err
		}
	}

	clusters := make(map[string]string, len(d.Clusters))
	for i, c := range d.Clusters {
		if err := errors.ValidateName(c.Name); err != nil {
			return invalid(err, "cluster %d", i)
		}
		if _, dup := clusters[c.Name]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "cluster %q declared twice", c.Name)
		}
		clusters[c.Name] = c.Parent
		if err := validateAttrs("cluster "+c.Name, c.Attrs); err != nil {
			return err
		}
	}
	for _, c := range d.Clusters {
		if err := checkParents(c.Name, clusters); err != nil {
			return err
		}
	}

	nodes := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if err := errors.ValidateName(n.Name); err != nil {
			return invalid(err, "node %d", i)
		}
		if nodes[n.Name] {
			return errors.New(errors.ErrCodeInvalidDocument, "node %q declared twice", n.Name)
		}
		nodes[n.Name] = true
		if err := validateAttrs("node "+n.Name, n.Attrs); err != nil {
			return err
		}
	}

	for i, e := range d.Edges {
		for _, end := range []string{e.From, e.To} {
			if !nodes[end] {
				return errors.New(errors.ErrCodeUnknownNode, "edge %d: unknown node %q", i, end)
			}
		}
		if err := validateAttrs(fmt.Sprintf("edge %s -> %s", e.From, e.To), e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

// checkParents follows the parent chain of name, failing on undeclared
// parents and on loops.
func checkParents(name string, parents map[string]string) error {
	seen := map[string]bool{name: true}
	for p := parents[name]; p != ""; p = parents[p] {
		if _, ok := parents[p]; !ok {
			return errors.New(errors.ErrCodeUnknownCluster, "cluster %q: unknown parent %q", name, p)
		}
		if seen[p] {
			return errors.New(errors.ErrCodeInvalidDocument, "cluster %q: parent chain loops through %q", name, p)
		}
		seen[p] = true
	}
	return nil
}

func validateAttrs(what string, attrs map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if err := errors.ValidateAttributeKey(k); err != nil {
			return invalid(err, "%s", what)
		}
	}
	return nil
}

func invalid(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvalidDocument, err, format, args...)
}
