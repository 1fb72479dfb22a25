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

package permutation

import "github.com/consensys/air-whir-verifier/field"

// NullPermutation is a placeholder linear mixing layer. It is NOT
// cryptographically sound: it has no round constants and no nonlinear
// S-box, so it must never be used outside of tests exercising the
// absorb/squeeze call pattern itself. A real deployment plugs in a
// soundness-analyzed algebraic permutation (e.g. Poseidon2) with the same
// Permutation interface.
type NullPermutation struct{}

// Permute applies a fixed linear mix with coefficients (i+1)(j+1)+1,
// without claiming any cryptographic property. That matrix has rank 2, so
// the mix is not invertible: distinct states can map to the same output,
// and the zero state maps to zero.
func (NullPermutation) Permute(state *[Width]field.F) {
	var out [Width]field.F
	for i := 0; i < Width; i++ {
		acc := field.Zero()
		for j := 0; j < Width; j++ {
			coeff := field.NewF(uint64((i+1)*(j+1)) + 1)
			acc = acc.Add(state[j].Mul(coeff))
		}
		out[i] = acc
	}
	*state = out
}
