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

// Command btree-cli is an interactive shell over a string-keyed B-Tree,
// useful for poking at split and merge behavior at small degrees.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-faker/faker/v4"

	"github.com/mindeg/btree"
)

func main() {
	degree := flag.Int("degree", 3, "Minimum degree of the tree.")
	shouldSeed := flag.Bool("seed", false, "Seed the tree with random records before starting.")
	seedNumRecords := flag.Int("records", 100, "Amount of records to seed the tree with.")
	flag.Usage = func() {
		fmt.Println("\nB-Tree CLI\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()

	tree, err := btree.NewWithLess(*degree, func(a, b record) bool { return a.key < b.key })
	if err != nil {
		log.Fatal(err)
	}

	if *shouldSeed {
		seedTreeWithTestRecords(tree, *seedNumRecords)
	}

	scanner := bufio.NewScanner(os.Stdin)
	shell := newShell(scanner, tree)
	shell.start()
}

type record struct {
	key string
	val string
}

func seedTreeWithTestRecords(tree *btree.BTree[record], n int) {
	for i := 0; i < n; i++ {
		tree.Insert(record{
			key: faker.Word() + faker.Word(),
			val: faker.Word(),
		})
	}
}
