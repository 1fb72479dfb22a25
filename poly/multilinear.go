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

package poly

import "github.com/consensys/air-whir-verifier/field"

// MultilinearCoeffs is a length-2^n extension-field coefficient sequence,
// indexed by bitstrings of length n in the monomial basis.
type MultilinearCoeffs struct {
	Coeffs []field.EF
}

// Evaluate computes Sum_i c_i * Prod_{j: bit j of i = 1} x_j.
func (m MultilinearCoeffs) Evaluate(x []field.EF) field.EF {
	n := len(x)
	if len(m.Coeffs) != 1<<uint(n) {
		panic("poly: MultilinearCoeffs.Evaluate: coefficient count does not match 2^len(x)")
	}
	acc := field.EFZero()
	for i, c := range m.Coeffs {
		if c.IsZero() {
			continue
		}
		term := c
		for j := 0; j < n; j++ {
			if (i>>uint(j))&1 == 1 {
				term = term.Mul(x[j])
			}
		}
		acc = acc.Add(term)
	}
	return acc
}

// MultilinearEvals is a length-2^n evaluation table over {0,1}^n.
type MultilinearEvals struct {
	Evals []field.EF
}

// Evaluate computes the tensor-product barycentric (multilinear extension)
// formula Sum_i v_i * Prod_j (x_j if bit j of i else 1-x_j).
func (m MultilinearEvals) Evaluate(x []field.EF) field.EF {
	n := len(x)
	if len(m.Evals) != 1<<uint(n) {
		panic("poly: MultilinearEvals.Evaluate: evaluation count does not match 2^len(x)")
	}
	acc := field.EFZero()
	one := field.EFOne()
	for i, v := range m.Evals {
		if v.IsZero() {
			continue
		}
		term := v
		for j := 0; j < n; j++ {
			if (i>>uint(j))&1 == 1 {
				term = term.Mul(x[j])
			} else {
				term = term.Mul(one.Sub(x[j]))
			}
		}
		acc = acc.Add(term)
	}
	return acc
}

// MultilinearFromUnivariate maps a single extension challenge z to the
// multilinear point (z, z^2, z^4, ..., z^(2^(n-1))), the "powers of two
// embedding" used to turn a univariate out-of-domain sample into a
// multilinear evaluation point.
func MultilinearFromUnivariate(z field.EF, n int) []field.EF {
	point := make([]field.EF, n)
	cur := z
	for i := 0; i < n; i++ {
		point[i] = cur
		cur = cur.Mul(cur)
	}
	return point
}
