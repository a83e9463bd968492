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

package btree

// ItemIterator allows callers of the Ascend*/Descend* family to walk
// portions of the tree in order. When this function returns false,
// iteration stops and the associated method returns immediately.
type ItemIterator[T any] func(item T) bool

// bound is an optional endpoint for a range walk.
type bound[T any] struct {
	item T
	set  bool
}

func include[T any](item T) bound[T] {
	return bound[T]{item: item, set: true}
}

func unbounded[T any]() bound[T] {
	return bound[T]{}
}

// ascend walks the subtree in ascending order, visiting items within
// [ge, lt). An unset ge starts at the subtree minimum; an unset lt runs
// to the subtree maximum. Returns false once the iterator stops the walk.
func (n *node[T]) ascend(ge, lt bound[T], iter ItemIterator[T]) bool {
	var i int
	var found bool
	if ge.set {
		i, found = n.items.find(ge.item, n.tree.less)
	}
	// When ge matches items[i] exactly, everything under children[i]
	// sorts below the range and can be skipped outright.
	if !found && !n.leaf() {
		if !n.children[i].ascend(ge, lt, iter) {
			return false
		}
	}
	for ; i < len(n.items); i++ {
		if lt.set && !n.tree.less(n.items[i], lt.item) {
			return false
		}
		if !iter(n.items[i]) {
			return false
		}
		if !n.leaf() {
			if !n.children[i+1].ascend(ge, lt, iter) {
				return false
			}
		}
	}
	return true
}

// descend walks the subtree in descending order, visiting items within
// (gt, le]. An unset le starts at the subtree maximum; an unset gt runs
// to the subtree minimum. Returns false once the iterator stops the walk.
func (n *node[T]) descend(le, gt bound[T], iter ItemIterator[T]) bool {
	i := len(n.items)
	enterRight := true
	if le.set {
		j, found := n.items.find(le.item, n.tree.less)
		if found {
			// items[j] is the inclusive upper end; the subtree to its
			// right holds only larger items.
			i = j + 1
			enterRight = false
		} else {
			i = j
		}
	}
	if enterRight && !n.leaf() {
		if !n.children[i].descend(le, gt, iter) {
			return false
		}
	}
	for i--; i >= 0; i-- {
		if gt.set && !n.tree.less(gt.item, n.items[i]) {
			return false
		}
		if !iter(n.items[i]) {
			return false
		}
		if !n.leaf() {
			if !n.children[i].descend(le, gt, iter) {
				return false
			}
		}
	}
	return true
}

// Ascend calls the iterator for every item in the tree within the range
// [first, last], until the iterator returns false.
func (t *BTree[T]) Ascend(iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.ascend(unbounded[T](), unbounded[T](), iterator)
}

// AscendRange calls the iterator for every item in the tree within the
// range [greaterOrEqual, lessThan), until the iterator returns false.
func (t *BTree[T]) AscendRange(greaterOrEqual, lessThan T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.ascend(include(greaterOrEqual), include(lessThan), iterator)
}

// AscendLessThan calls the iterator for every item in the tree within the
// range [first, pivot), until the iterator returns false.
func (t *BTree[T]) AscendLessThan(pivot T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.ascend(unbounded[T](), include(pivot), iterator)
}

// AscendGreaterOrEqual calls the iterator for every item in the tree
// within the range [pivot, last], until the iterator returns false.
func (t *BTree[T]) AscendGreaterOrEqual(pivot T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.ascend(include(pivot), unbounded[T](), iterator)
}

// Descend calls the iterator for every item in the tree within the range
// [last, first], until the iterator returns false.
func (t *BTree[T]) Descend(iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.descend(unbounded[T](), unbounded[T](), iterator)
}

// DescendRange calls the iterator for every item in the tree within the
// range [lessOrEqual, greaterThan), until the iterator returns false.
func (t *BTree[T]) DescendRange(lessOrEqual, greaterThan T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.descend(include(lessOrEqual), include(greaterThan), iterator)
}

// DescendLessOrEqual calls the iterator for every item in the tree within
// the range [pivot, first], until the iterator returns false.
func (t *BTree[T]) DescendLessOrEqual(pivot T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.descend(include(pivot), unbounded[T](), iterator)
}

// DescendGreaterThan calls the iterator for every item in the tree within
// the range [last, pivot), until the iterator returns false.
func (t *BTree[T]) DescendGreaterThan(pivot T, iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.descend(unbounded[T](), include(pivot), iterator)
}
