// Package graph defines the design graph types for joinery.
// The design graph is an immutable DAG of primitives, transforms, groups
// and join features that represents one evaluated document. Named root
// nodes are the document objects, in creation order.
package graph
