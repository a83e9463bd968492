// Copyright 2024 The mindeg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package btree implements an in-memory B-Tree of configurable minimum
// degree, for use as an ordered data structure.
//
// A tree of minimum degree t keeps between t-1 and 2t-1 items per node
// (the root alone may hold fewer) and all leaves at the same depth, which
// produces a much flatter structure than an equivalent binary tree.
// Insertion splits full nodes on the way down and deletion refills sparse
// nodes on the way down, so both run in a single pass from the root with
// no backtracking.
//
// The tree holds items of any type T, ordered by a caller-supplied
// LessFunc. For types ordered by '<' the New constructor supplies the
// comparison automatically. Two items a and b are treated as equal when
// !less(a, b) && !less(b, a); the tree holds at most one item from each
// equivalence class, and inserting an equal item replaces the one held.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
package btree

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ErrDegree is returned by the constructors when the requested minimum
// degree is below 2, the smallest degree for which a B-Tree is defined.
var ErrDegree = errors.New("btree: minimum degree must be at least 2")

// DefaultFreeListSize is the freelist capacity used by constructors that
// are not handed an explicit freelist.
const DefaultFreeListSize = 32

// LessFunc determines the ordering of items in a tree. It must implement
// a strict weak ordering, returning true if a sorts before b.
type LessFunc[T any] func(a, b T) bool

// Ordered is the set of types for which the '<' operator works.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

// FreeList holds recycled btree nodes. Each tree allocated by New owns a
// private freelist, but several trees may share one; a shared freelist is
// safe for concurrent use.
type FreeList[T any] struct {
	mu       sync.Mutex
	freelist []*node[T]
}

// NewFreeList creates a freelist that retains at most size nodes.
func NewFreeList[T any](size int) *FreeList[T] {
	return &FreeList[T]{freelist: make([]*node[T], 0, size)}
}

func (f *FreeList[T]) newNode() (n *node[T]) {
	f.mu.Lock()
	index := len(f.freelist) - 1
	if index < 0 {
		f.mu.Unlock()
		return new(node[T])
	}
	n = f.freelist[index]
	f.freelist[index] = nil
	f.freelist = f.freelist[:index]
	f.mu.Unlock()
	return
}

func (f *FreeList[T]) freeNode(n *node[T]) (out bool) {
	f.mu.Lock()
	if len(f.freelist) < cap(f.freelist) {
		f.freelist = append(f.freelist, n)
		out = true
	}
	f.mu.Unlock()
	return
}

// New creates a tree of the given minimum degree for item types ordered
// by '<'. New(2), for example, creates a 2-3-4 tree (each node holds 1-3
// items and 2-4 children). It returns ErrDegree if degree < 2.
func New[T Ordered](degree int) (*BTree[T], error) {
	return NewWithLess(degree, func(a, b T) bool { return a < b })
}

// NewWithLess creates a tree of the given minimum degree ordered by the
// supplied comparison. It returns ErrDegree if degree < 2.
func NewWithLess[T any](degree int, less LessFunc[T]) (*BTree[T], error) {
	return NewWithFreeList(degree, less, NewFreeList[T](DefaultFreeListSize))
}

// NewWithFreeList creates a tree that draws its nodes from the given
// freelist. It returns ErrDegree if degree < 2.
func NewWithFreeList[T any](degree int, less LessFunc[T], f *FreeList[T]) (*BTree[T], error) {
	if degree < 2 {
		return nil, ErrDegree
	}
	return &BTree[T]{
		degree:   degree,
		freelist: f,
		less:     less,
	}, nil
}

// items stores the ordered contents of a node.
type items[T any] []T

// insertAt inserts a value at the given index, pushing all subsequent
// values forward.
func (s *items[T]) insertAt(index int, item T) {
	var zero T
	*s = append(*s, zero)
	if index < len(*s) {
		copy((*s)[index+1:], (*s)[index:])
	}
	(*s)[index] = item
}

// removeAt removes the value at the given index, pulling all subsequent
// values back.
func (s *items[T]) removeAt(index int) T {
	item := (*s)[index]
	copy((*s)[index:], (*s)[index+1:])
	var zero T
	(*s)[len(*s)-1] = zero
	*s = (*s)[:len(*s)-1]
	return item
}

// pop removes and returns the last value in the list.
func (s *items[T]) pop() (out T) {
	index := len(*s) - 1
	out = (*s)[index]
	var zero T
	(*s)[index] = zero
	*s = (*s)[:index]
	return
}

// truncate shrinks the list to its first index values, zeroing the tail
// so the dropped values can be collected.
func (s *items[T]) truncate(index int) {
	var toClear items[T]
	*s, toClear = (*s)[:index], (*s)[index:]
	var zero T
	for i := 0; i < len(toClear); i++ {
		toClear[i] = zero
	}
}

// find returns the index at which the given item belongs in this list.
// 'found' is true if an equal item already sits at that index.
func (s items[T]) find(item T, less LessFunc[T]) (index int, found bool) {
	i := sort.Search(len(s), func(i int) bool {
		return less(item, s[i])
	})
	if i > 0 && !less(s[i-1], item) {
		return i - 1, true
	}
	return i, false
}

// node is a single node in the tree. It must at all times maintain the
// invariant that either
//   - len(children) == 0 (leaf), or
//   - len(children) == len(items) + 1 (internal).
type node[T any] struct {
	items    items[T]
	children items[*node[T]]
	tree     *BTree[T]
}

func (n *node[T]) leaf() bool {
	return len(n.children) == 0
}

// split divides the node at the given index. The node shrinks to its
// first i items, and split returns the item that sat at index i together
// with a new node holding everything after it.
func (n *node[T]) split(i int) (T, *node[T]) {
	item := n.items[i]
	next := n.tree.newNode()
	next.items = append(next.items, n.items[i+1:]...)
	n.items.truncate(i)
	if !n.leaf() {
		next.children = append(next.children, n.children[i+1:]...)
		n.children.truncate(i + 1)
	}
	return item, next
}

// maybeSplitChild splits child i if it is full, promoting its median item
// into this node. Returns whether a split occurred.
func (n *node[T]) maybeSplitChild(i, maxItems int) bool {
	if len(n.children[i].items) < maxItems {
		return false
	}
	child := n.children[i]
	item, next := child.split(maxItems / 2)
	n.items.insertAt(i, item)
	n.children.insertAt(i+1, next)
	return true
}

// insert adds an item to the subtree rooted at this node, splitting any
// full child before descending into it so that no node in the subtree
// ever exceeds maxItems. If an equal item was already present it is
// replaced and returned.
func (n *node[T]) insert(item T, maxItems int) (_ T, _ bool) {
	i, found := n.items.find(item, n.tree.less)
	if found {
		out := n.items[i]
		n.items[i] = item
		return out, true
	}
	if n.leaf() {
		n.items.insertAt(i, item)
		return
	}
	if n.maybeSplitChild(i, maxItems) {
		inTree := n.items[i]
		switch {
		case n.tree.less(item, inTree):
			// still left of the promoted median, keep descending into child i
		case n.tree.less(inTree, item):
			i++ // the promoted median sorts before us, shift to the new sibling
		default:
			out := n.items[i]
			n.items[i] = item
			return out, true
		}
	}
	return n.children[i].insert(item, maxItems)
}

// get finds the given key in the subtree rooted at this node.
func (n *node[T]) get(key T) (_ T, _ bool) {
	i, found := n.items.find(key, n.tree.less)
	if found {
		return n.items[i], true
	} else if !n.leaf() {
		return n.children[i].get(key)
	}
	return
}

// min returns the first item in the subtree.
func (n *node[T]) min() (_ T, _ bool) {
	if n == nil {
		return
	}
	for !n.leaf() {
		n = n.children[0]
	}
	if len(n.items) == 0 {
		return
	}
	return n.items[0], true
}

// max returns the last item in the subtree.
func (n *node[T]) max() (_ T, _ bool) {
	if n == nil {
		return
	}
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	if len(n.items) == 0 {
		return
	}
	return n.items[len(n.items)-1], true
}

// removeMode selects what node.remove takes out of a subtree.
type removeMode int

const (
	removeItem removeMode = iota // remove the given item
	removeMin                    // remove the smallest item in the subtree
	removeMax                    // remove the largest item in the subtree
)

// remove removes an item from the subtree rooted at this node in a single
// top-down pass. Before descending it guarantees the target child holds
// more than minItems items, borrowing from a sibling or merging as
// needed, so no ancestor ever has to be revisited.
//
// When the item is found in an internal node it is replaced by its
// in-order predecessor if the left subtree can spare an item, by its
// successor if the right subtree can, and otherwise the two subtrees are
// merged around it and removal recurses into the merged child.
func (n *node[T]) remove(item T, minItems int, mode removeMode) (_ T, _ bool) {
	var i int
	var found bool
	switch mode {
	case removeMax:
		if n.leaf() {
			return n.items.pop(), true
		}
		i = len(n.items)
	case removeMin:
		if n.leaf() {
			return n.items.removeAt(0), true
		}
		i = 0
	case removeItem:
		i, found = n.items.find(item, n.tree.less)
		if n.leaf() {
			if found {
				return n.items.removeAt(i), true
			}
			return
		}
	default:
		panic("invalid remove mode")
	}
	// Internal node from here on.
	if found {
		var zero T
		if len(n.children[i].items) > minItems {
			// The left subtree can spare an item: swap in the
			// predecessor and pull it out of that subtree.
			out := n.items[i]
			n.items[i], _ = n.children[i].remove(zero, minItems, removeMax)
			return out, true
		}
		if len(n.children[i+1].items) > minItems {
			// Symmetric: swap in the successor from the right subtree.
			out := n.items[i]
			n.items[i], _ = n.children[i+1].remove(zero, minItems, removeMin)
			return out, true
		}
		// Neither subtree can spare an item. Fold the item and the
		// right subtree into the left one, then take the item out of
		// the merged child.
		n.mergeChild(i)
		return n.children[i].remove(item, minItems, removeItem)
	}
	// The item, if present, lives under child i. Refill the child first
	// if taking an item out of it could leave it under-occupied.
	if len(n.children[i].items) <= minItems {
		i = n.fillChild(i, minItems)
	}
	return n.children[i].remove(item, minItems, mode)
}

// fillChild brings child i above minItems items by rotating an item in
// from an adjacent sibling through this node, or by merging the child
// with a sibling when neither can spare one. It returns the index of the
// child to descend into, which moves left by one if the child was merged
// into its left sibling.
func (n *node[T]) fillChild(i, minItems int) int {
	switch {
	case i > 0 && len(n.children[i-1].items) > minItems:
		// Rotate right: the left sibling's last item moves up into this
		// node and the displaced separator moves down.
		child, sibling := n.children[i], n.children[i-1]
		child.items.insertAt(0, n.items[i-1])
		n.items[i-1] = sibling.items.pop()
		if !sibling.leaf() {
			child.children.insertAt(0, sibling.children.pop())
		}
	case i < len(n.items) && len(n.children[i+1].items) > minItems:
		// Rotate left: the right sibling's first item moves up and the
		// separator moves down.
		child, sibling := n.children[i], n.children[i+1]
		child.items = append(child.items, n.items[i])
		n.items[i] = sibling.items.removeAt(0)
		if !sibling.leaf() {
			child.children = append(child.children, sibling.children.removeAt(0))
		}
	default:
		if i >= len(n.items) {
			i--
		}
		n.mergeChild(i)
	}
	return i
}

// mergeChild folds the separator at index i and the entire contents of
// child i+1 into child i, shrinking this node by one item and one child.
// The absorbed node is returned to the freelist.
func (n *node[T]) mergeChild(i int) {
	child := n.children[i]
	separator := n.items.removeAt(i)
	next := n.children.removeAt(i + 1)
	child.items = append(child.items, separator)
	child.items = append(child.items, next.items...)
	child.children = append(child.children, next.children...)
	n.tree.freeNode(next)
}

// print is used for testing/debugging purposes.
func (n *node[T]) print(w io.Writer, level int) {
	fmt.Fprintf(w, "%sNODE:%v\n", strings.Repeat("  ", level), n.items)
	for _, c := range n.children {
		c.print(w, level+1)
	}
}

// BTree is an in-memory B-Tree of minimum degree >= 2.
//
// BTree stores items of type T in an ordered structure, allowing easy
// insertion, removal, and iteration. Every node except the root holds
// between degree-1 and 2*degree-1 items, and all leaves sit at the same
// depth.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type BTree[T any] struct {
	degree   int
	length   int
	root     *node[T]
	freelist *FreeList[T]
	less     LessFunc[T]
}

// maxItems returns the most items any node may hold.
func (t *BTree[T]) maxItems() int {
	return t.degree*2 - 1
}

// minItems returns the fewest items a non-root node may hold.
func (t *BTree[T]) minItems() int {
	return t.degree - 1
}

func (t *BTree[T]) newNode() (n *node[T]) {
	n = t.freelist.newNode()
	n.tree = t
	return
}

func (t *BTree[T]) freeNode(n *node[T]) {
	// clear to allow GC
	n.items.truncate(0)
	n.children.truncate(0)
	n.tree = nil
	t.freelist.freeNode(n)
}

// Insert adds the given item to the tree. If the tree already held an
// equal item, that item is replaced and returned with true; otherwise
// Insert returns (zeroValue, false). Insertion never fails.
func (t *BTree[T]) Insert(item T) (_ T, _ bool) {
	if t.root == nil {
		t.root = t.newNode()
		t.root.items = append(t.root.items, item)
		t.length++
		return
	}
	if len(t.root.items) >= t.maxItems() {
		// The root is full; splitting it is the only way the tree ever
		// grows in height.
		separator, next := t.root.split(t.maxItems() / 2)
		oldRoot := t.root
		t.root = t.newNode()
		t.root.items = append(t.root.items, separator)
		t.root.children = append(t.root.children, oldRoot, next)
	}
	out, replaced := t.root.insert(item, t.maxItems())
	if !replaced {
		t.length++
	}
	return out, replaced
}

// Delete removes the item equal to the passed-in item from the tree,
// returning it. Deleting an item that is not present is a no-op and
// returns (zeroValue, false).
func (t *BTree[T]) Delete(item T) (T, bool) {
	return t.deleteItem(item, removeItem)
}

// DeleteMin removes the smallest item in the tree and returns it.
// If the tree is empty it returns (zeroValue, false).
func (t *BTree[T]) DeleteMin() (T, bool) {
	var zero T
	return t.deleteItem(zero, removeMin)
}

// DeleteMax removes the largest item in the tree and returns it.
// If the tree is empty it returns (zeroValue, false).
func (t *BTree[T]) DeleteMax() (T, bool) {
	var zero T
	return t.deleteItem(zero, removeMax)
}

func (t *BTree[T]) deleteItem(item T, mode removeMode) (_ T, _ bool) {
	if t.root == nil || len(t.root.items) == 0 {
		return
	}
	out, removed := t.root.remove(item, t.minItems(), mode)
	if len(t.root.items) == 0 && !t.root.leaf() {
		// The root emptied out; its sole remaining child becomes the
		// new root and the tree shrinks by one level.
		oldRoot := t.root
		t.root = t.root.children[0]
		t.freeNode(oldRoot)
	}
	if removed {
		t.length--
	}
	return out, removed
}

// Get looks for an item equal to key in the tree and returns it. It
// returns (zeroValue, false) if no such item is present.
func (t *BTree[T]) Get(key T) (_ T, _ bool) {
	if t.root == nil {
		return
	}
	return t.root.get(key)
}

// Has reports whether an item equal to key is present in the tree.
func (t *BTree[T]) Has(key T) bool {
	_, ok := t.Get(key)
	return ok
}

// Min returns the smallest item in the tree, or (zeroValue, false) if the
// tree is empty.
func (t *BTree[T]) Min() (T, bool) {
	return t.root.min()
}

// Max returns the largest item in the tree, or (zeroValue, false) if the
// tree is empty.
func (t *BTree[T]) Max() (T, bool) {
	return t.root.max()
}

// Len returns the number of items currently in the tree.
func (t *BTree[T]) Len() int {
	return t.length
}

// Degree returns the tree's minimum degree.
func (t *BTree[T]) Degree() int {
	return t.degree
}

// Height returns the number of edges on the path from the root to any
// leaf. An empty or single-node tree has height 0.
func (t *BTree[T]) Height() int {
	h := 0
	for n := t.root; n != nil && !n.leaf(); n = n.children[0] {
		h++
	}
	return h
}

// Items returns all items in the tree in ascending order.
func (t *BTree[T]) Items() []T {
	out := make([]T, 0, t.length)
	t.Ascend(func(item T) bool {
		out = append(out, item)
		return true
	})
	return out
}

// Clear removes all items from the tree. The root is dereferenced and the
// subtree left to Go's normal GC processes; this is much faster than
// deleting the items one by one.
func (t *BTree[T]) Clear() {
	t.root, t.length = nil, 0
}

// Dump writes a structural rendering of the tree to w, one line per node,
// indented by depth. Intended for debugging at small degrees.
func (t *BTree[T]) Dump(w io.Writer) {
	if t.root == nil {
		return
	}
	t.root.print(w, 0)
}
