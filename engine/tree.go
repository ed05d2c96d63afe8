package engine

import (
	"github.com/opensync/topicsync/change"
	"github.com/opensync/topicsync/topic"
)

// treeNode is one node of the transition tree built during a recording
// scope. The root is anonymous and carries no change.
type treeNode struct {
	isRoot   bool
	parent   *treeNode
	change   change.Change
	children []*treeNode
}

// tree is the rooted causal tree built during one recording scope, plus
// the scoped "current node" cursor that addChild and withCurrent operate
// against.
type tree struct {
	root    *treeNode
	current *treeNode
}

func newTree() *tree {
	root := &treeNode{isRoot: true}
	return &tree{root: root, current: root}
}

// addChildToCurrent appends a new node for c under the current node, in
// insertion order.
func (t *tree) addChildToCurrent(c change.Change) *treeNode {
	n := &treeNode{parent: t.current, change: c}
	t.current.children = append(t.current.children, n)
	return n
}

// withCurrent runs fn with node set as the current node, restoring the
// prior current node on every exit path including a panic or error return.
func (t *tree) withCurrent(node *treeNode, fn func() error) error {
	prev := t.current
	t.current = node
	defer func() { t.current = prev }()
	return fn()
}

// preorder returns the flat pre-order traversal of the whole tree (root
// excluded) — this is the shape of a Transition's change log.
func (t *tree) preorder() []change.Change {
	return preorderNodes(t.root, nil)
}

func preorderNodes(n *treeNode, out []change.Change) []change.Change {
	if !n.isRoot {
		out = append(out, n.change)
	}
	for _, c := range n.children {
		out = preorderNodes(c, out)
	}
	return out
}

func flatten(n *treeNode) []*treeNode {
	var out []*treeNode
	var walk func(x *treeNode)
	walk = func(x *treeNode) {
		if !x.isRoot {
			out = append(out, x)
		}
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// clearSubtree is the compensation procedure: it inverts every change in
// n's subtree in exact reverse chronological order (the reverse of the
// pre-order traversal, which is the order the changes were actually
// applied in, since listener cascades are synchronous) and detaches the
// subtree from its parent. It returns the inverse changes it applied, for
// the changes_made side-log.
//
// This flattens the subtree and walks it back-to-front rather than
// recursing child-by-child: a node whose siblings already touched the
// same topic needs its sibling's mutation undone first, and only a
// globally reverse-chronological walk guarantees that regardless of which
// branch a topic's repeated mutations live in.
//
// Compensations notify listeners, matching the original's clear_subtree
// (topic.apply_change defaults to notify_listeners=True there). Both call
// sites run with maxRecursionDepth pinned to 0, so a listener that tries
// to recurse back into StateMachine.ApplyChange for a stateful topic is
// silently dropped by the recursion guard rather than cascading further —
// the same _block_recursion() discipline the original relies on.
func (t *tree) clearSubtree(n *treeNode, getTopic func(string) (topic.Topic, error)) ([]change.Change, error) {
	nodes := flatten(n)
	compensations := make([]change.Change, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		tp, err := getTopic(node.change.TopicName())
		if err != nil {
			return compensations, err
		}
		inv := node.change.Inverse()
		if _, _, err := tp.ApplyChange(inv, true); err != nil {
			return compensations, err
		}
		compensations = append(compensations, inv)
	}
	if !n.isRoot && n.parent != nil {
		removeChild(n.parent, n)
	} else {
		n.children = nil
	}
	return compensations, nil
}

func removeChild(parent, child *treeNode) {
	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return
		}
	}
}
