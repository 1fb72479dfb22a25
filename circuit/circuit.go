// Copyright 2020 ConsenSys Software Inc.
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

// Package circuit implements the symbolic arithmetic-circuit DAG: a set of
// const/input/add/mul nodes sharing subexpressions by index into a common
// arena, evaluated over the extension field with memoization so that
// sharing never triggers exponential blow-up.
package circuit

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/internal/dag"
)

// Kind tags a circuit node.
type Kind int

const (
	KindConst Kind = iota
	KindInput
	KindAdd
	KindMul
)

// Circuit is an immutable arithmetic-circuit DAG. Nodes are referenced by
// their index in the arena; a node may only reference nodes created before
// it, which both guarantees acyclicity and gives a free topological order.
type Circuit struct {
	kinds    []Kind
	constVal []field.F // valid when kinds[i] == KindConst
	inputIdx []int     // valid when kinds[i] == KindInput
	children [][]int   // valid when kinds[i] in {KindAdd, KindMul}
	root     int

	nbInputs int

	levelsOnce sync.Once
	levels     []dag.Level
}

// NbInputs returns the number of distinct input slots the circuit expects.
func (c *Circuit) NbInputs() int { return c.nbInputs }

// Evaluate computes the circuit's value on the given input vector. Each
// node is evaluated exactly once: independent nodes within a dependency
// level are evaluated concurrently via errgroup, and results are memoized
// by node index so no subexpression is recomputed even though many parents
// may share it.
func (c *Circuit) Evaluate(inputs []field.EF) (field.EF, error) {
	if len(inputs) < c.nbInputs {
		return field.EFZero(), fmt.Errorf("circuit: Evaluate: need %d inputs, got %d", c.nbInputs, len(inputs))
	}

	c.levelsOnce.Do(func() {
		d := dag.New(len(c.kinds))
		for i := range c.kinds {
			d.AddNode()
		}
		for i, ch := range c.children {
			if len(ch) > 0 {
				d.AddEdges(i, ch)
			}
		}
		c.levels = d.Levels()
	})

	vals := make([]field.EF, len(c.kinds))
	one := field.EFOne()

	for _, level := range c.levels {
		nodes := level.Nodes
		if len(nodes) == 1 {
			c.evalNode(nodes[0], inputs, vals, one)
			continue
		}
		var g errgroup.Group
		for _, n := range nodes {
			n := n
			g.Go(func() error {
				c.evalNode(n, inputs, vals, one)
				return nil
			})
		}
		_ = g.Wait() // evalNode never errors; kept for the errgroup idiom
	}

	return vals[c.root], nil
}

func (c *Circuit) evalNode(i int, inputs, vals []field.EF, one field.EF) {
	switch c.kinds[i] {
	case KindConst:
		vals[i] = field.FromBase(c.constVal[i])
	case KindInput:
		vals[i] = inputs[c.inputIdx[i]]
	case KindAdd:
		acc := field.EFZero()
		for _, ch := range c.children[i] {
			acc = acc.Add(vals[ch])
		}
		vals[i] = acc
	case KindMul:
		acc := one
		for _, ch := range c.children[i] {
			acc = acc.Mul(vals[ch])
		}
		vals[i] = acc
	}
}
