package dot

// Graph returns a Source describing nodes and the edges given by adjacent.
func Graph[N comparable](nodes []N, adjacent func(N) []N) Source {
	return SourceFunc(func(opts Options) (string, error) {
		return graphDescriptor(nodes, adjacent, opts), nil
	})
}

func graphDescriptor[N comparable](nodes []N, adjacent func(N) []N, opts Options) string {
	w := newWriter(opts)

	ids := make(map[N]string, len(nodes))
	for _, n := range nodes {
		if _, seen := ids[n]; seen {
			continue
		}
		id := nodeID(len(ids))
		ids[n] = id
		w.node(id, n)
	}

	w.buf.WriteString("\n")
	if adjacent != nil {
		for _, n := range nodes {
			from := ids[n]
			for _, m := range adjacent(n) {
				to, ok := ids[m]
				if !ok {
					continue
				}
				w.edge(from, to, n, m)
			}
		}
	}
	return w.String()
}
