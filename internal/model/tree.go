package model

import "sort"

// Node is one node of the Huffman coding tree.  Leaves occupy indices
// [0, numLabels) and internal nodes [numLabels, 2*numLabels-1); the root is
// the last node.  The tree is immutable once built.
type Node struct {
	Parent int32
	Left   int32
	Right  int32
	Count  int64
	// Binary is the code bit assigned to this node: true for the
	// second-chosen child of each merge, false for the first.
	Binary bool
}

// unusedCount marks not-yet-created internal nodes so the merge loop always
// prefers a real count over them.
const unusedCount = int64(1e15)

// buildTree constructs an optimal binary prefix code over the label
// frequencies, then derives every label's leaf-to-root path of internal-node
// ids (offset by the label count, matching the output matrix rows) and the
// corresponding code bits.
//
// The merge is the classic two-pointer construction: one cursor walks the
// leaves in ascending frequency order, the other walks internal nodes in
// creation order (their counts are non-decreasing, so both sequences are
// sorted).  Each of the numLabels-1 steps picks the two smallest available
// counts, giving O(n log n) overall for the initial sort and O(n) merging.
// Tie-breaking follows selection order and is deterministic for a given
// input order.
func (m *Model) buildTree(counts []int64) {
	osz := m.osz
	tree := make([]Node, 2*osz-1)
	for i := range tree {
		tree[i] = Node{Parent: -1, Left: -1, Right: -1, Count: unusedCount}
	}
	for i := 0; i < osz; i++ {
		tree[i].Count = counts[i]
	}

	order := make([]int32, osz)
	for i := range order {
		order[i] = int32(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] < counts[order[b]]
	})

	leaf, node := 0, osz
	for i := osz; i < 2*osz-1; i++ {
		var mini [2]int32
		for j := 0; j < 2; j++ {
			if leaf < osz && tree[order[leaf]].Count < tree[node].Count {
				mini[j] = order[leaf]
				leaf++
			} else {
				mini[j] = int32(node)
				node++
			}
		}
		tree[i].Left = mini[0]
		tree[i].Right = mini[1]
		tree[i].Count = tree[mini[0]].Count + tree[mini[1]].Count
		tree[mini[0]].Parent = int32(i)
		tree[mini[1]].Parent = int32(i)
		tree[mini[1]].Binary = true
	}

	paths := make([][]int32, osz)
	codes := make([][]bool, osz)
	for i := 0; i < osz; i++ {
		var path []int32
		var code []bool
		for j := int32(i); tree[j].Parent != -1; j = tree[j].Parent {
			path = append(path, tree[j].Parent-int32(osz))
			code = append(code, tree[j].Binary)
		}
		paths[i] = path
		codes[i] = code
	}

	m.tree = tree
	m.paths = paths
	m.codes = codes
}
