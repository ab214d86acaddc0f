// Package graph provides the node-link serialization of a family tree view.
//
// A [Graph] is what the chart adapter produces for exports and for Graphviz
// rendering. Nodes carry their [Node.Kind] relative to the root person
// (root, spouse, child, parent); edges are either spouse links or parent
// links pointing from parent to child:
//
//	{
//	  "root": "a1",
//	  "nodes": [
//	    {"id": "a1", "label": "Anna Schmidt", "kind": "root", "gender": "F", "birth": "1950"},
//	    {"id": "k2", "label": "Karl Schmidt", "kind": "spouse", "gender": "M"},
//	    {"id": "c3", "label": "Lena Schmidt", "kind": "child", "gender": "F"}
//	  ],
//	  "edges": [
//	    {"from": "a1", "to": "k2", "kind": "spouse"},
//	    {"from": "a1", "to": "c3", "kind": "parent"},
//	    {"from": "k2", "to": "c3", "kind": "parent"}
//	  ]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("tree.json")   // File → Graph (validated)
//	graph.WriteGraphFile(g, "output.json")     // Graph → File
//	data, _ := graph.MarshalGraph(g)           // Graph → []byte
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
