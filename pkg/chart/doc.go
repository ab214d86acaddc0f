// Package chart adapts a family tree view into the shapes chart renderers
// consume.
//
// # Shapes
//
//   - [ToNodes]: the flat "pids/mid" node list read by the family-chart
//     widget. This is the shape the tree page loads.
//   - [ToRelations]: the "data/rels" shape read by newer family-chart
//     releases, served with ?format=relations.
//   - [ToGraph]: a [graph.Graph] used for JSON export and Graphviz rendering.
//
// All three are projections of one [Walk] over the tree, so they agree on
// which people appear and in which order:
//
//  1. the root person
//  2. each spouse in order, followed by that spouse's children
//  3. the root's remaining children
//  4. the root's parents, when the service includes them
//
// A person is emitted once. A child listed both under a spouse and under the
// root keeps the first position and the parents [root, spouse].
//
// Spouses get a synthetic marriage id, counting up from [FirstMarriageID] in
// spouse order.
//
// [graph.Graph]: github.com/matzehuels/familytree/pkg/graph.Graph
package chart
