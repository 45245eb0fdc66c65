// Package io reads graph documents and writes DOT files.
//
// # Overview
//
// A graph document is a declarative description of a clustered graph by
// name. It can be written as JSON, TOML or YAML and is turned into a
// [graph.Graph] tree by [Build]:
//
//	{
//	  "attrs": {"label": "services"},
//	  "clusters": [
//	    {"name": "backend"},
//	    {"name": "storage", "parent": "backend"}
//	  ],
//	  "nodes": [
//	    {"name": "api", "cluster": "backend", "rank": "edge"},
//	    {"name": "db", "cluster": "storage", "attrs": {"shape": "cylinder"}}
//	  ],
//	  "edges": [
//	    {"from": "api", "to": "db", "attrs": {"label": "sql"}}
//	  ]
//	}
//
// # Document Fields
//
//   - attrs, node_attrs, edge_attrs: attributes of the root graph and its
//     default node and edge attributes
//   - clusters: name (required), parent (another cluster, optional), attrs
//   - nodes: name (required), cluster, rank, attrs
//   - edges: from and to (both required, must name declared nodes), attrs
//
// Attribute keys must be plain identifiers; values are free text. Values
// wrapped in angle brackets are written unquoted as HTML-like labels.
//
// # Import
//
// [Import] picks the decoder from the file extension. [ReadJSON], [ReadTOML]
// and [ReadYAML] decode from any reader. JSON input with small syntax
// problems (trailing commas, comments, single quotes) is repaired before
// decoding. Unknown fields are rejected in every format.
//
// # Export
//
// [WriteDOT] and [ExportDOT] serialize a tree with the DOT generator.
// [WriteDocument] re-encodes a document in any supported format.
//
// # Schema
//
// [Schema] returns the JSON Schema of the document format, for editors and
// API clients.
package io
