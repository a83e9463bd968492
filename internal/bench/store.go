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

// Package bench runs comparable ordered key-value workloads against this
// module's B-Tree and two reference engines: GoLLRB's red-black tree and
// Pebble's LSM store.
package bench

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/petar/GoLLRB/llrb"

	"github.com/mindeg/btree"
)

// Store is the minimal ordered key-value surface each engine under
// comparison must expose.
type Store interface {
	Name() string
	Set(key int64, value []byte) error
	Get(key int64) ([]byte, bool, error)
	Delete(key int64) error
	// Scan visits all entries with keys in [lo, hi) and returns how many
	// it saw.
	Scan(lo, hi int64) (int, error)
	Close() error
}

type entry struct {
	key   int64
	value []byte
}

// --- B-Tree ---

type btreeStore struct {
	tree *btree.BTree[entry]
}

// NewBTreeStore wraps a tree of the given minimum degree.
func NewBTreeStore(degree int) (Store, error) {
	tr, err := btree.NewWithLess(degree, func(a, b entry) bool { return a.key < b.key })
	if err != nil {
		return nil, err
	}
	return &btreeStore{tree: tr}, nil
}

func (s *btreeStore) Name() string { return "btree" }

func (s *btreeStore) Set(key int64, value []byte) error {
	s.tree.Insert(entry{key: key, value: value})
	return nil
}

func (s *btreeStore) Get(key int64) ([]byte, bool, error) {
	e, ok := s.tree.Get(entry{key: key})
	return e.value, ok, nil
}

func (s *btreeStore) Delete(key int64) error {
	s.tree.Delete(entry{key: key})
	return nil
}

func (s *btreeStore) Scan(lo, hi int64) (int, error) {
	n := 0
	s.tree.AscendRange(entry{key: lo}, entry{key: hi}, func(entry) bool {
		n++
		return true
	})
	return n, nil
}

func (s *btreeStore) Close() error { return nil }

// --- GoLLRB ---

type llrbEntry entry

func (e *llrbEntry) Less(than llrb.Item) bool {
	return e.key < than.(*llrbEntry).key
}

type llrbStore struct {
	tree *llrb.LLRB
}

// NewLLRBStore wraps a left-leaning red-black tree.
func NewLLRBStore() Store {
	return &llrbStore{tree: llrb.New()}
}

func (s *llrbStore) Name() string { return "llrb" }

func (s *llrbStore) Set(key int64, value []byte) error {
	s.tree.ReplaceOrInsert(&llrbEntry{key: key, value: value})
	return nil
}

func (s *llrbStore) Get(key int64) ([]byte, bool, error) {
	item := s.tree.Get(&llrbEntry{key: key})
	if item == nil {
		return nil, false, nil
	}
	return item.(*llrbEntry).value, true, nil
}

func (s *llrbStore) Delete(key int64) error {
	s.tree.Delete(&llrbEntry{key: key})
	return nil
}

func (s *llrbStore) Scan(lo, hi int64) (int, error) {
	n := 0
	s.tree.AscendRange(&llrbEntry{key: lo}, &llrbEntry{key: hi}, func(llrb.Item) bool {
		n++
		return true
	})
	return n, nil
}

func (s *llrbStore) Close() error { return nil }

// --- Pebble ---

type pebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) a Pebble database in dir.
func NewPebbleStore(dir string) (Store, error) {
	opts := &pebble.Options{
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("bench: open pebble: %w", err)
	}
	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) Name() string { return "pebble" }

func (s *pebbleStore) Set(key int64, value []byte) error {
	return s.db.Set(encodeKey(key), value, pebble.NoSync)
}

func (s *pebbleStore) Get(key int64) ([]byte, bool, error) {
	val, closer, err := s.db.Get(encodeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bench: pebble get: %w", err)
	}
	// val is only valid until closer.Close(), so copy it out.
	out := make([]byte, len(val))
	copy(out, val)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *pebbleStore) Delete(key int64) error {
	return s.db.Delete(encodeKey(key), pebble.NoSync)
}

func (s *pebbleStore) Scan(lo, hi int64) (int, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: encodeKey(lo),
		UpperBound: encodeKey(hi),
	})
	if err != nil {
		return 0, fmt.Errorf("bench: pebble scan: %w", err)
	}
	n := 0
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *pebbleStore) Close() error { return s.db.Close() }

// encodeKey encodes an int64 as a big-endian 8-byte slice. Big-endian
// preserves sort order, which Pebble relies on for range scans.
func encodeKey(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k))
	return b
}
