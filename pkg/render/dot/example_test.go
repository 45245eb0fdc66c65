package dot_test

import (
	"os"

	"github.com/matzehuels/dotgraph/pkg/graph"
	"github.com/matzehuels/dotgraph/pkg/render/dot"
)

func ExampleGenerator_Generate() {
	root := graph.New()
	root.Attributes().Set("rankdir", "LR")

	lib := root.NewGraph()
	lib.Attributes().Set("label", "lib")

	app := root.NewNode()
	app.Attributes().Set("label", "app")
	core := lib.NewNode()
	core.Attributes().Set("label", "core")
	root.NewEdge(app, core)

	gen, err := dot.NewGenerator(root)
	if err != nil {
		panic(err)
	}
	if err := gen.Generate(os.Stdout); err != nil {
		panic(err)
	}
	// Output:
	// digraph {
	// rankdir = "LR";
	// node0 [ label="app"];
	// node0 -> node1;
	// subgraph cluster1 {
	// label = "lib";
	// node1 [ label="core"];
	// }
	// }
}
