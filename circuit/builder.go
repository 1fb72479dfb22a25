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

package circuit

import "github.com/consensys/air-whir-verifier/field"

// Builder constructs a Circuit node by node. Every Add/Mul/Const/Input call
// returns the index of the new node; children passed to Add/Mul must be
// indices already returned by the same Builder, which is what keeps the
// resulting graph a DAG.
type Builder struct {
	c *Circuit
}

// NewBuilder starts an empty circuit.
func NewBuilder() *Builder {
	return &Builder{c: &Circuit{}}
}

func (b *Builder) push(k Kind) int {
	id := len(b.c.kinds)
	b.c.kinds = append(b.c.kinds, k)
	b.c.constVal = append(b.c.constVal, field.F{})
	b.c.inputIdx = append(b.c.inputIdx, 0)
	b.c.children = append(b.c.children, nil)
	return id
}

// Const adds a constant node.
func (b *Builder) Const(v field.F) int {
	id := b.push(KindConst)
	b.c.constVal[id] = v
	return id
}

// Input adds a reference to input slot i, bumping NbInputs if needed.
func (b *Builder) Input(i int) int {
	id := b.push(KindInput)
	b.c.inputIdx[id] = i
	if i+1 > b.c.nbInputs {
		b.c.nbInputs = i + 1
	}
	return id
}

// Add sums the given child node indices.
func (b *Builder) Add(children ...int) int {
	id := b.push(KindAdd)
	b.c.children[id] = append([]int(nil), children...)
	return id
}

// Mul multiplies the given child node indices.
func (b *Builder) Mul(children ...int) int {
	id := b.push(KindMul)
	b.c.children[id] = append([]int(nil), children...)
	return id
}

// Build finalizes the circuit with the given node as its output.
func (b *Builder) Build(root int) *Circuit {
	b.c.root = root
	return b.c
}
