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

// Package poly implements the univariate, multilinear-by-coefficients, and
// multilinear-by-evaluations polynomial types the verifier evaluates
// claims against, plus the eq tensor shared by sumcheck, the PIOP, and
// WHIR.
package poly

import "github.com/consensys/air-whir-verifier/field"

// Univariate is an ordered sequence of extension-field coefficients, index
// i being the coefficient of x^i.
type Univariate struct {
	Coeffs []field.EF
}

// Evaluate computes the polynomial's value at x via Horner's method.
func (p Univariate) Evaluate(x field.EF) field.EF {
	if len(p.Coeffs) == 0 {
		return field.EFZero()
	}
	acc := p.Coeffs[len(p.Coeffs)-1]
	for i := len(p.Coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.Coeffs[i])
	}
	return acc
}
