// Package dot generates Graphviz DOT descriptors from arbitrary graphs and
// trees.
//
// # Graphs
//
// A graph is a node slice plus an adjacency function:
//
//	src := dot.Graph([]string{"a", "b"}, func(n string) []string {
//	    if n == "a" {
//	        return []string{"b"}
//	    }
//	    return nil
//	})
//	descriptor, err := src.Descriptor(dot.Options{})
//
// Nodes are compared with ==, so every distinct value becomes one DOT node.
// Adjacent values that are not in the node slice are ignored.
//
// # Trees
//
// A tree is a root, a children function and a branch predicate. Only nodes
// for which isBranch returns true are expanded. Every visit produces its own
// DOT node, so equal values at different positions stay separate:
//
//	src := dot.Tree(root, children, isBranch)
//
// # Options
//
// [Options] controls directedness, graph/node/edge attributes, node labels and
// per-node and per-edge attributes. Attributes are written in sorted key order
// so descriptors are deterministic and cache well.
package dot
