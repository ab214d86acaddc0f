// Package pkg provides the libraries behind familytree, a client for a
// family-tree REST service.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [family] - Domain types (Person, Relationship, Date) and local filtering
//  2. [integrations] - HTTP plumbing and the [familyapi] service client
//  3. [forms] - Person and relationship form models with validation
//  4. [chart] - Adapter from a family tree view to chart members and relations
//  5. [graph] - Serialization types for node-link graphs
//  6. [render] - Graphviz rendering (DOT, SVG, PDF, PNG)
//  7. [pipeline] - Orchestration (fetch → build → render)
//  8. [cache], [observability], [errors], [httputil] - Shared infrastructure
//
// # Architecture
//
// The typical data flow for drawing a tree:
//
//	family-tree service
//	         ↓
//	    [familyapi] client (fetch /persons/{id}/family_tree/)
//	         ↓
//	    [chart] package (walk into members, relations, graph)
//	         ↓
//	    [render] package (Graphviz)
//	         ↓
//	    JSON/DOT/SVG/PDF/PNG output
//
// # Quick Start
//
//	client, _ := familyapi.NewClient(familyapi.Options{BaseURL: "http://localhost:8000/api"})
//	runner := pipeline.NewRunner(client, nil, nil, nil)
//	result, err := runner.Execute(ctx, personID, pipeline.Options{
//	    Formats: []string{pipeline.FormatNodes, pipeline.FormatSVG},
//	})
package pkg
