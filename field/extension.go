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

package field

import "fmt"

// EF is an element of the degree-Deg extension F[x]/(x^Deg - W), stored as
// Deg canonical base-field coefficients, index 0 being the constant term.
type EF struct {
	coeffs [Deg]F
}

// FromBase coerces a base-field element into EF. There is no implicit
// promotion: callers must call this explicitly.
func FromBase(a F) EF {
	var e EF
	e.coeffs[0] = a
	return e
}

// EFZero returns the additive identity of EF.
func EFZero() EF { return EF{} }

// EFOne returns the multiplicative identity of EF.
func EFOne() EF { return FromBase(One()) }

// NewEF builds an EF element from exactly Deg base-field coefficients.
func NewEF(coeffs []F) EF {
	if len(coeffs) != Deg {
		panic(fmt.Sprintf("field: NewEF: expected %d coefficients, got %d", Deg, len(coeffs)))
	}
	var e EF
	copy(e.coeffs[:], coeffs)
	return e
}

// Coeff returns the i-th base-field coordinate.
func (a EF) Coeff(i int) F { return a.coeffs[i] }

// Coeffs returns a copy of the Deg base-field coordinates.
func (a EF) Coeffs() []F {
	out := make([]F, Deg)
	copy(out, a.coeffs[:])
	return out
}

// Equal reports value-based equality.
func (a EF) Equal(b EF) bool {
	for i := 0; i < Deg; i++ {
		if !a.coeffs[i].Equal(b.coeffs[i]) {
			return false
		}
	}
	return true
}

// IsZero reports whether every coordinate is zero.
func (a EF) IsZero() bool {
	for i := 0; i < Deg; i++ {
		if !a.coeffs[i].IsZero() {
			return false
		}
	}
	return true
}

// Add returns a+b, coordinatewise.
func (a EF) Add(b EF) EF {
	var r EF
	for i := 0; i < Deg; i++ {
		r.coeffs[i] = a.coeffs[i].Add(b.coeffs[i])
	}
	return r
}

// Sub returns a-b, coordinatewise.
func (a EF) Sub(b EF) EF {
	var r EF
	for i := 0; i < Deg; i++ {
		r.coeffs[i] = a.coeffs[i].Sub(b.coeffs[i])
	}
	return r
}

// Neg returns -a, coordinatewise.
func (a EF) Neg() EF {
	var r EF
	for i := 0; i < Deg; i++ {
		r.coeffs[i] = a.coeffs[i].Neg()
	}
	return r
}

// Mul returns the schoolbook product reduced modulo x^Deg - W: a term that
// lands at index i+j >= Deg folds back to index i+j-Deg scaled by W.
func (a EF) Mul(b EF) EF {
	var r EF
	w := NewF(W)
	for i := 0; i < Deg; i++ {
		if a.coeffs[i].IsZero() {
			continue
		}
		for j := 0; j < Deg; j++ {
			term := a.coeffs[i].Mul(b.coeffs[j])
			if i+j < Deg {
				r.coeffs[i+j] = r.coeffs[i+j].Add(term)
			} else {
				r.coeffs[i+j-Deg] = r.coeffs[i+j-Deg].Add(term.Mul(w))
			}
		}
	}
	return r
}

// MulBase multiplies by a base-field scalar without promoting through Mul.
func (a EF) MulBase(b F) EF {
	var r EF
	for i := 0; i < Deg; i++ {
		r.coeffs[i] = a.coeffs[i].Mul(b)
	}
	return r
}

// Inverse returns a^-1. It builds the Deg*Deg matrix of multiplication by a
// in the monomial basis and solves M*x = e0 by Gaussian elimination with
// partial pivoting, which needs nothing about the extension beyond a.Mul
// being linear in its second argument. Panics on zero.
func (a EF) Inverse() EF {
	if a.IsZero() {
		panic("field: EF.Inverse: inverse of zero")
	}

	var m [Deg][Deg]F
	for j := 0; j < Deg; j++ {
		var basisVec EF
		basisVec.coeffs[j] = One()
		col := a.Mul(basisVec)
		for i := 0; i < Deg; i++ {
			m[i][j] = col.coeffs[i]
		}
	}
	var rhs [Deg]F
	rhs[0] = One()

	for col := 0; col < Deg; col++ {
		pivot := -1
		for row := col; row < Deg; row++ {
			if !m[row][col].IsZero() {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			panic("field: EF.Inverse: singular multiplication matrix")
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		invPivot := m[col][col].Inverse()
		for k := col; k < Deg; k++ {
			m[col][k] = m[col][k].Mul(invPivot)
		}
		rhs[col] = rhs[col].Mul(invPivot)

		for row := 0; row < Deg; row++ {
			if row == col || m[row][col].IsZero() {
				continue
			}
			factor := m[row][col]
			for k := col; k < Deg; k++ {
				m[row][k] = m[row][k].Sub(m[col][k].Mul(factor))
			}
			rhs[row] = rhs[row].Sub(rhs[col].Mul(factor))
		}
	}

	var out EF
	copy(out.coeffs[:], rhs[:])
	return out
}

// Exp returns a^e by square-and-multiply over EF.
func (a EF) Exp(e uint64) EF {
	result := EFOne()
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// String implements fmt.Stringer.
func (a EF) String() string { return fmt.Sprintf("EF(%v)", a.coeffs) }
