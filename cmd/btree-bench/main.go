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

// Command btree-bench runs mixed read/write/scan workloads against this
// module's B-Tree, GoLLRB, and Pebble, and reports per-operation latency
// as CSV and (optionally) a bar chart.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mindeg/btree/internal/bench"
)

func main() {
	ops := flag.Int("ops", 100_000, "Operations per workload.")
	degree := flag.Int("degree", 32, "Minimum degree of the B-Tree under test.")
	seed := flag.Int64("seed", 1, "Seed for the workload key generator.")
	engines := flag.String("engines", "btree,llrb,pebble", "Comma-separated engines to run.")
	csvPath := flag.String("csv", "results.csv", "CSV output path ('-' for stdout).")
	chartPath := flag.String("chart", "", "Optional latency chart output path (.png, .svg, .pdf).")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	var results []bench.Result
	for _, name := range strings.Split(*engines, ",") {
		store, cleanup, err := openStore(strings.TrimSpace(name), *degree)
		if err != nil {
			logger.Fatal("open store", zap.String("engine", name), zap.Error(err))
		}
		rng := rand.New(rand.NewSource(*seed))
		for _, w := range bench.Workloads {
			latency, err := bench.Run(store, w, *ops, rng)
			if err != nil {
				logger.Fatal("workload failed",
					zap.String("engine", store.Name()),
					zap.String("workload", string(w)),
					zap.Error(err))
			}
			logger.Info("workload finished",
				zap.String("engine", store.Name()),
				zap.String("workload", string(w)),
				zap.Int("ops", *ops),
				zap.Duration("per_op", latency))
			results = append(results, bench.Result{
				Store:    store.Name(),
				Workload: w,
				Ops:      *ops,
				Latency:  latency,
			})
		}
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.String("engine", store.Name()), zap.Error(err))
		}
		cleanup()
	}

	if err := writeCSV(*csvPath, results); err != nil {
		logger.Fatal("write csv", zap.String("path", *csvPath), zap.Error(err))
	}
	if *chartPath != "" {
		if err := bench.RenderChart(*chartPath, results); err != nil {
			logger.Fatal("render chart", zap.String("path", *chartPath), zap.Error(err))
		}
		logger.Info("chart written", zap.String("path", *chartPath))
	}
}

func openStore(name string, degree int) (bench.Store, func(), error) {
	switch name {
	case "btree":
		s, err := bench.NewBTreeStore(degree)
		return s, func() {}, err
	case "llrb":
		return bench.NewLLRBStore(), func() {}, nil
	case "pebble":
		dir, err := os.MkdirTemp("", "btree-bench-pebble-")
		if err != nil {
			return nil, nil, err
		}
		s, err := bench.NewPebbleStore(dir)
		if err != nil {
			os.RemoveAll(dir)
			return nil, nil, err
		}
		return s, func() { os.RemoveAll(dir) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q (want btree, llrb, or pebble)", name)
	}
}

func writeCSV(path string, results []bench.Result) error {
	if path == "-" {
		return bench.WriteCSV(os.Stdout, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bench.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
