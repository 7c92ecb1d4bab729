package cluster

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node is a cluster in the merge tree. Leaves have the index of their input
// row as ID; merged clusters have negative ids in creation order. Left and
// Right are both set for merged clusters and both nil for leaves.
type Node struct {
	ID     int
	Vector []float64
	Left   *Node
	Right  *Node
	// Distance is the metric value that caused the merge. Zero for leaves.
	Distance float64
}

// IsLeaf reports whether n is an input row.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Walk visits the tree depth-first, parent before children and left before
// right. Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	if n.Left != nil {
		n.Left.walk(fn, depth+1)
	}
	if n.Right != nil {
		n.Right.walk(fn, depth+1)
	}
}

// Leaves returns the row indices under n, left to right.
func (n *Node) Leaves() []int {
	var ids []int
	n.Walk(func(node *Node, _ int) bool {
		if node.IsLeaf() {
			ids = append(ids, node.ID)
		}
		return true
	})
	return ids
}

// Render writes the tree as an indented hierarchy, one space per level.
// Leaves are printed with labels[id] when available, otherwise with their id;
// merged clusters are printed as "-".
func Render(w io.Writer, root *Node, labels []string) error {
	var err error
	root.Walk(func(node *Node, depth int) bool {
		if err != nil {
			return false
		}
		name := "-"
		if node.IsLeaf() {
			name = strconv.Itoa(node.ID)
			if node.ID < len(labels) {
				name = labels[node.ID]
			}
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", depth), name)
		return err == nil
	})
	return err
}
