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
	"fmt"
	"math/rand"
	"time"
)

// Workload names a mixed distribution of operations.
type Workload string

const (
	// Load inserts ops sequential keys into an empty store.
	Load Workload = "load"
	// ReadHeavy runs 90% point reads, 10% writes over loaded keys.
	ReadHeavy Workload = "read-heavy"
	// WriteHeavy runs 10% point reads, 90% writes over loaded keys.
	WriteHeavy Workload = "write-heavy"
	// RangeScan runs 100-key range scans at random offsets.
	RangeScan Workload = "range-scan"
	// Churn alternates deletes and reinserts of loaded keys.
	Churn Workload = "churn"
)

// Workloads lists every workload in the order reports present them.
var Workloads = []Workload{Load, ReadHeavy, WriteHeavy, RangeScan, Churn}

var payload = []byte("x")

// Run executes ops operations of the given workload against the store and
// returns the average latency per operation. Load must run first on a
// fresh store; the other workloads address the key space it populated.
func Run(s Store, w Workload, ops int, rng *rand.Rand) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < ops; i++ {
		key := int64(rng.Intn(ops))
		var err error
		switch w {
		case Load:
			err = s.Set(int64(i), payload)
		case ReadHeavy:
			if rng.Intn(100) < 90 {
				_, _, err = s.Get(key)
			} else {
				err = s.Set(key, payload)
			}
		case WriteHeavy:
			if rng.Intn(100) < 10 {
				_, _, err = s.Get(key)
			} else {
				err = s.Set(key, payload)
			}
		case RangeScan:
			_, err = s.Scan(key, key+100)
		case Churn:
			if err = s.Delete(key); err == nil {
				err = s.Set(key, payload)
			}
		default:
			return 0, fmt.Errorf("bench: unknown workload %q", w)
		}
		if err != nil {
			return 0, fmt.Errorf("bench: %s op %d on %s: %w", w, i, s.Name(), err)
		}
	}
	elapsed := time.Since(start)
	return elapsed / time.Duration(ops), nil
}
