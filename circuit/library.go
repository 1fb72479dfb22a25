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

// EqTensorCircuit builds eq_2n_vars(n): the 2n-variable extension of the
// equality indicator eq(x,y) = Prod_i (x_i*y_i + (1-x_i)(1-y_i)), over
// inputs laid out as x_0..x_{n-1}, y_0..y_{n-1}.
func EqTensorCircuit(n int) *Circuit {
	b := NewBuilder()
	one := b.Const(field.One())
	var terms []int
	for i := 0; i < n; i++ {
		xi := b.Input(i)
		yi := b.Input(n + i)
		notXi := b.Add(one, negate(b, xi))
		notYi := b.Add(one, negate(b, yi))
		terms = append(terms, b.Add(b.Mul(xi, yi), b.Mul(notXi, notYi)))
	}
	root := b.Mul(terms...)
	return b.Build(root)
}

// negate returns a node computing -1*child via a constant multiply, used to
// build "1 - v" as Add(1, negate(v)) without a dedicated Sub opcode.
func negate(b *Builder, child int) int {
	minusOne := b.Const(field.One().Neg())
	return b.Mul(minusOne, child)
}

// oneMinus returns a node computing 1 - v.
func oneMinus(b *Builder, one, v int) int {
	return b.Add(one, negate(b, v))
}

// Next builds next(n): the 2n-variable polynomial whose unique 0/1 roots
// satisfy y = x+1 over n-bit big-endian integers (bit position n-1 is
// least-significant, per the construction's own convention). For each
// carry position k in [0,n): the top k bits of x and y must agree, bit
// k must flip 0 (in x) -> 1 (in y), and the n-k-1 lower bits must be 1
// in x and 0 in y (the trailing ones that a +1 carries through).
func Next(n int) *Circuit {
	b := NewBuilder()
	one := b.Const(field.One())
	x := make([]int, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x[i] = b.Input(i)
		y[i] = b.Input(n + i)
	}

	var carryTerms []int
	for k := 0; k < n; k++ {
		var factors []int
		for i := 0; i < k; i++ {
			notXi := oneMinus(b, one, x[i])
			notYi := oneMinus(b, one, y[i])
			factors = append(factors, b.Add(b.Mul(x[i], y[i]), b.Mul(notXi, notYi)))
		}
		flipPos := k
		factors = append(factors, b.Mul(oneMinus(b, one, x[flipPos]), y[flipPos]))
		for i := flipPos + 1; i < n; i++ {
			factors = append(factors, b.Mul(x[i], oneMinus(b, one, y[i])))
		}
		if len(factors) == 1 {
			carryTerms = append(carryTerms, factors[0])
		} else {
			carryTerms = append(carryTerms, b.Mul(factors...))
		}
	}
	root := b.Add(carryTerms...)
	return b.Build(root)
}

// allOnesIndicator returns a node equal to eq(x, onesVector): the product
// of the first n input variables, which is 1 exactly when they are all 1.
func allOnesIndicator(b *Builder, n int) int {
	vars := make([]int, n)
	for i := 0; i < n; i++ {
		vars[i] = b.Input(i)
	}
	return b.Mul(vars...)
}

// MatrixUpLDE builds matrix_up_lde(n) = eq_2n_vars(n) + eq(x,1)*(1 -
// 2*v_{2n-1}), the row-up shift matrix: 1 when the second coordinate
// equals the first, except the last row (x = 2^n-1) which is held
// constant. At n=0 the trace has a single row, which the up shift maps to
// itself; the circuit degenerates to the constant 1 with no inputs.
func MatrixUpLDE(n int) *Circuit {
	if n == 0 {
		b := NewBuilder()
		return b.Build(b.Const(field.One()))
	}
	b := NewBuilder()
	one := b.Const(field.One())
	two := b.Const(field.NewF(2))

	allOnes := allOnesIndicator(b, n)

	// eq_2n_vars(n) inline: allOnesIndicator already consumed input slots
	// 0..n-1, so the remaining n..2n-1 slots are filled in alongside a
	// fresh read of 0..n-1 to build the equality tensor.
	var eqTerms []int
	for i := 0; i < n; i++ {
		xi := b.Input(i)
		yi := b.Input(n + i)
		notXi := oneMinus(b, one, xi)
		notYi := oneMinus(b, one, yi)
		eqTerms = append(eqTerms, b.Add(b.Mul(xi, yi), b.Mul(notXi, notYi)))
	}
	eqAll := b.Mul(eqTerms...)

	lastVar := b.Input(2*n - 1)
	correction := b.Mul(allOnes, oneMinus(b, one, b.Mul(two, lastVar)))
	// oneMinus(b, one, b.Mul(two, lastVar)) computes 1 - 2*lastVar directly.

	root := b.Add(eqAll, correction)
	return b.Build(root)
}

// MatrixDownLDE builds matrix_down_lde(n) = next(n) + eq(x,1), the
// row-down shift matrix: 1 when y = x+1, or when x = y = 2^n-1. At n=0 the
// trace has a single row, which the down shift also maps to itself; the
// circuit degenerates to the constant 1 with no inputs.
func MatrixDownLDE(n int) *Circuit {
	if n == 0 {
		b := NewBuilder()
		return b.Build(b.Const(field.One()))
	}
	b := NewBuilder()
	one := b.Const(field.One())
	x := make([]int, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x[i] = b.Input(i)
		y[i] = b.Input(n + i)
	}

	var carryTerms []int
	for k := 0; k < n; k++ {
		var factors []int
		for i := 0; i < k; i++ {
			notXi := oneMinus(b, one, x[i])
			notYi := oneMinus(b, one, y[i])
			factors = append(factors, b.Add(b.Mul(x[i], y[i]), b.Mul(notXi, notYi)))
		}
		flipPos := k
		factors = append(factors, b.Mul(oneMinus(b, one, x[flipPos]), y[flipPos]))
		for i := flipPos + 1; i < n; i++ {
			factors = append(factors, b.Mul(x[i], oneMinus(b, one, y[i])))
		}
		if len(factors) == 1 {
			carryTerms = append(carryTerms, factors[0])
		} else {
			carryTerms = append(carryTerms, b.Mul(factors...))
		}
	}
	nextTerm := b.Add(carryTerms...)

	allOnes := b.Mul(x...)
	root := b.Add(nextTerm, allOnes)
	return b.Build(root)
}
