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

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every error returned from Check. Use
// errors.Is to detect it.
var ErrInvariant = errors.New("btree: structural invariant violated")

// Check walks the whole tree and verifies its structural invariants:
// per-node occupancy bounds, child counts, ascending item order within
// nodes, separator bounds between parents and children, uniform leaf
// depth, and item count accounting. It returns nil for a well-formed
// tree. Check is intended for tests and debugging; it visits every node.
func (t *BTree[T]) Check() error {
	if t.root == nil {
		if t.length != 0 {
			return fmt.Errorf("%w: empty tree reports length %d", ErrInvariant, t.length)
		}
		return nil
	}
	if len(t.root.items) == 0 && !t.root.leaf() {
		return fmt.Errorf("%w: internal root holds no items", ErrInvariant)
	}
	count := 0
	if _, err := t.root.check(0, unbounded[T](), unbounded[T](), &count); err != nil {
		return err
	}
	if count != t.length {
		return fmt.Errorf("%w: tree holds %d items but reports length %d", ErrInvariant, count, t.length)
	}
	return nil
}

// check validates the subtree rooted at n, whose items must all lie
// strictly between lo and hi. It returns the depth at which the
// subtree's leaves sit, measured from n's own depth.
func (n *node[T]) check(depth int, lo, hi bound[T], count *int) (int, error) {
	t := n.tree
	if t == nil {
		return 0, fmt.Errorf("%w: node at depth %d has no owner", ErrInvariant, depth)
	}
	if len(n.items) > t.maxItems() {
		return 0, fmt.Errorf("%w: node at depth %d holds %d items, max %d", ErrInvariant, depth, len(n.items), t.maxItems())
	}
	if depth > 0 && len(n.items) < t.minItems() {
		return 0, fmt.Errorf("%w: non-root node at depth %d holds %d items, min %d", ErrInvariant, depth, len(n.items), t.minItems())
	}
	if !n.leaf() && len(n.children) != len(n.items)+1 {
		return 0, fmt.Errorf("%w: node at depth %d holds %d items but %d children", ErrInvariant, depth, len(n.items), len(n.children))
	}
	for i := 1; i < len(n.items); i++ {
		if !t.less(n.items[i-1], n.items[i]) {
			return 0, fmt.Errorf("%w: items out of order at depth %d index %d", ErrInvariant, depth, i)
		}
	}
	if len(n.items) > 0 {
		if lo.set && !t.less(lo.item, n.items[0]) {
			return 0, fmt.Errorf("%w: item at depth %d underruns its separator", ErrInvariant, depth)
		}
		if hi.set && !t.less(n.items[len(n.items)-1], hi.item) {
			return 0, fmt.Errorf("%w: item at depth %d overruns its separator", ErrInvariant, depth)
		}
	}
	*count += len(n.items)
	if n.leaf() {
		return 0, nil
	}
	leafDepth := -1
	for i, child := range n.children {
		childLo, childHi := lo, hi
		if i > 0 {
			childLo = include(n.items[i-1])
		}
		if i < len(n.items) {
			childHi = include(n.items[i])
		}
		d, err := child.check(depth+1, childLo, childHi, count)
		if err != nil {
			return 0, err
		}
		if leafDepth == -1 {
			leafDepth = d
		} else if d != leafDepth {
			return 0, fmt.Errorf("%w: leaves at unequal depth below node at depth %d", ErrInvariant, depth)
		}
	}
	return leafDepth + 1, nil
}
