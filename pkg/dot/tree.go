package dot

import "fmt"

// maxTreeDepth guards against children functions that describe a cycle.
const maxTreeDepth = 10000

// Tree returns a Source describing the tree rooted at root. Only nodes for
// which isBranch reports true are expanded with children. A nil isBranch
// expands every node.
func Tree[N any](root N, children func(N) []N, isBranch func(N) bool) Source {
	return SourceFunc(func(opts Options) (string, error) {
		return treeDescriptor(root, children, isBranch, opts)
	})
}

func treeDescriptor[N any](root N, children func(N) []N, isBranch func(N) bool, opts Options) (string, error) {
	w := newWriter(opts)
	next := 0

	var walk func(n N, id string, depth int) error
	walk = func(n N, id string, depth int) error {
		if depth > maxTreeDepth {
			return fmt.Errorf("tree deeper than %d levels; children may describe a cycle", maxTreeDepth)
		}
		w.node(id, n)
		if children == nil || (isBranch != nil && !isBranch(n)) {
			return nil
		}
		for _, c := range children(n) {
			next++
			cid := nodeID(next)
			if err := walk(c, cid, depth+1); err != nil {
				return err
			}
			w.edge(id, cid, n, c)
		}
		return nil
	}

	if err := walk(root, nodeID(0), 0); err != nil {
		return "", err
	}
	return w.String(), nil
}
