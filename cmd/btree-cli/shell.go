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

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mindeg/btree"
)

type shell struct {
	scanner *bufio.Scanner
	tree    *btree.BTree[record]

	ok   *color.Color
	bad  *color.Color
	info *color.Color
}

func newShell(s *bufio.Scanner, t *btree.BTree[record]) *shell {
	return &shell{
		scanner: s,
		tree:    t,
		ok:      color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		info:    color.New(color.FgCyan),
	}
}

func (sh *shell) start() {
	sh.printHelp()
	sh.printPrompt()
	for sh.scanner.Scan() {
		sh.processInput(sh.scanner.Text())
		sh.printPrompt()
	}
}

func (sh *shell) printHelp() {
	fmt.Print(`
B-Tree CLI

Available Commands:
  SET <key> <val>   Insert a key-value pair into the tree
  GET <key>         Retrieve the value for key
  DEL <key>         Remove a key from the tree
  SCAN <lo> <hi>    List keys in [lo, hi)
  KEYS              List every key in order
  DUMP              Print the node structure of the tree
  LEN               Print the number of records
  CHECK             Verify the tree's structural invariants
  EXIT              Terminate this session

`)
}

func (sh *shell) printPrompt() {
	fmt.Print("> ")
}

func (sh *shell) processInput(line string) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return
	}
	command := strings.ToLower(fields[0])
	switch command {
	default:
		sh.bad.Printf("Unknown command %q\n", command)
	case "set":
		sh.processSet(fields[1:])
	case "get":
		sh.processGet(fields[1:])
	case "del":
		sh.processDelete(fields[1:])
	case "scan":
		sh.processScan(fields[1:])
	case "keys":
		sh.processKeys()
	case "dump":
		sh.tree.Dump(os.Stdout)
	case "len":
		sh.info.Println(sh.tree.Len())
	case "check":
		sh.processCheck()
	case "exit":
		os.Exit(0)
	}
}

func (sh *shell) processSet(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: SET <key> <value>")
		return
	}
	if _, replaced := sh.tree.Insert(record{key: args[0], val: args[1]}); replaced {
		sh.ok.Println("OK (replaced)")
		return
	}
	sh.ok.Println("OK")
}

func (sh *shell) processGet(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: GET <key>")
		return
	}
	rec, found := sh.tree.Get(record{key: args[0]})
	if !found {
		sh.bad.Println("Key not found.")
		return
	}
	fmt.Println(rec.val)
}

func (sh *shell) processDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: DEL <key>")
		return
	}
	if _, removed := sh.tree.Delete(record{key: args[0]}); !removed {
		sh.bad.Println("Key not found.")
		return
	}
	sh.ok.Println("OK")
}

func (sh *shell) processScan(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: SCAN <lo> <hi>")
		return
	}
	n := 0
	sh.tree.AscendRange(record{key: args[0]}, record{key: args[1]}, func(rec record) bool {
		fmt.Printf("%s = %s\n", rec.key, rec.val)
		n++
		return true
	})
	sh.info.Printf("%d record(s)\n", n)
}

func (sh *shell) processKeys() {
	sh.tree.Ascend(func(rec record) bool {
		fmt.Println(rec.key)
		return true
	})
}

func (sh *shell) processCheck() {
	if err := sh.tree.Check(); err != nil {
		sh.bad.Println(err)
		return
	}
	sh.ok.Printf("OK: %d record(s), height %d\n", sh.tree.Len(), sh.tree.Height())
}
