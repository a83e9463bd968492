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

package bench

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"
)

func openStores(t *testing.T) []Store {
	t.Helper()
	bt, err := NewBTreeStore(32)
	if err != nil {
		t.Fatalf("btree store: %v", err)
	}
	pb, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("pebble store: %v", err)
	}
	stores := []Store{bt, NewLLRBStore(), pb}
	t.Cleanup(func() {
		for _, s := range stores {
			if err := s.Close(); err != nil {
				t.Logf("close %s: %v", s.Name(), err)
			}
		}
	})
	return stores
}

func TestStoreParity(t *testing.T) {
	stores := openStores(t)
	keys := rand.New(rand.NewSource(1)).Perm(200)
	for _, s := range stores {
		t.Run(s.Name(), func(t *testing.T) {
			for _, k := range keys {
				if err := s.Set(int64(k), []byte("v")); err != nil {
					t.Fatalf("Set(%d): %v", k, err)
				}
			}
			for _, k := range keys {
				v, ok, err := s.Get(int64(k))
				if err != nil || !ok || string(v) != "v" {
					t.Fatalf("Get(%d) = %q, %v, %v", k, v, ok, err)
				}
			}
			if _, ok, err := s.Get(10_000); ok || err != nil {
				t.Fatalf("Get(absent) = %v, %v", ok, err)
			}
			n, err := s.Scan(50, 150)
			if err != nil || n != 100 {
				t.Fatalf("Scan(50, 150) = %d, %v; want 100", n, err)
			}
			for _, k := range keys[:100] {
				if err := s.Delete(int64(k)); err != nil {
					t.Fatalf("Delete(%d): %v", k, err)
				}
				if _, ok, _ := s.Get(int64(k)); ok {
					t.Fatalf("Get(%d) found deleted key", k)
				}
			}
		})
	}
}

func TestRunWorkloads(t *testing.T) {
	stores := openStores(t)
	rng := rand.New(rand.NewSource(7))
	for _, s := range stores {
		for _, w := range Workloads {
			if _, err := Run(s, w, 500, rng); err != nil {
				t.Fatalf("%s/%s: %v", s.Name(), w, err)
			}
		}
	}
}

func TestRunRejectsUnknownWorkload(t *testing.T) {
	bt, err := NewBTreeStore(8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(bt, Workload("bogus"), 10, rand.New(rand.NewSource(0))); err == nil {
		t.Fatal("want error for unknown workload")
	}
}

func TestWriteCSV(t *testing.T) {
	results := []Result{
		{Store: "btree", Workload: Load, Ops: 1000, Latency: 125 * time.Nanosecond},
		{Store: "llrb", Workload: Load, Ops: 1000, Latency: 210 * time.Nanosecond},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %q", buf.String())
	}
	if lines[0] != "store,workload,ops,ns_per_op" {
		t.Fatalf("header: %q", lines[0])
	}
	if lines[1] != "btree,load,1000,125" {
		t.Fatalf("row: %q", lines[1])
	}
}
