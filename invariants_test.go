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
	"math/rand"
	"testing"
)

func TestCheckEmptyTree(t *testing.T) {
	tr := intTree(t, 2)
	if err := tr.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestCheckAfterEveryMutation(t *testing.T) {
	for _, degree := range []int{2, 3, 8} {
		t.Run(fmt.Sprintf("degree=%d", degree), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(degree)))
			tr := intTree(t, degree)
			live := map[int]bool{}
			const ops = 2000
			for op := 0; op < ops; op++ {
				v := rng.Intn(300)
				if rng.Intn(3) == 0 {
					_, removed := tr.Delete(v)
					if removed != live[v] {
						t.Fatalf("op %d: Delete(%d) removed=%v, want %v", op, v, removed, live[v])
					}
					delete(live, v)
				} else {
					_, replaced := tr.Insert(v)
					if replaced != live[v] {
						t.Fatalf("op %d: Insert(%d) replaced=%v, want %v", op, v, replaced, live[v])
					}
					live[v] = true
				}
				if err := tr.Check(); err != nil {
					t.Fatalf("op %d: %v", op, err)
				}
				if tr.Len() != len(live) {
					t.Fatalf("op %d: tree length %d, reference %d", op, tr.Len(), len(live))
				}
			}
			prev := -1
			tr.Ascend(func(item int) bool {
				if item <= prev {
					t.Fatalf("out of order: %d after %d", item, prev)
				}
				if !live[item] {
					t.Fatalf("tree holds %d which was deleted", item)
				}
				prev = item
				return true
			})
		})
	}
}

func TestCheckDetectsDisorder(t *testing.T) {
	tr := intTree(t, 3)
	for _, v := range rand.Perm(50) {
		tr.Insert(v)
	}
	root := tr.root
	root.items[0], root.items[1] = root.items[1], root.items[0]
	if err := tr.Check(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	root.items[0], root.items[1] = root.items[1], root.items[0]
	if err := tr.Check(); err != nil {
		t.Fatalf("restored tree still fails: %v", err)
	}
}

func TestCheckDetectsBadLength(t *testing.T) {
	tr := intTree(t, 3)
	for _, v := range rand.Perm(50) {
		tr.Insert(v)
	}
	tr.length++
	if err := tr.Check(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	tr.length--
}

func TestCheckDetectsUnderflow(t *testing.T) {
	tr := intTree(t, 3)
	for _, v := range rand.Perm(200) {
		tr.Insert(v)
	}
	// Strip a non-root leaf below its minimum occupancy.
	leaf := tr.root.children[0]
	for !leaf.leaf() {
		leaf = leaf.children[0]
	}
	stolen := make([]int, 0, len(leaf.items))
	for len(leaf.items) >= tr.minItems() {
		stolen = append(stolen, leaf.items.pop())
	}
	if err := tr.Check(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	for i := len(stolen) - 1; i >= 0; i-- {
		leaf.items = append(leaf.items, stolen[i])
	}
	if err := tr.Check(); err != nil {
		t.Fatalf("restored tree still fails: %v", err)
	}
}
