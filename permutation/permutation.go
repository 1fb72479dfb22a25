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

// Package permutation defines the fixed-width sponge primitive shared by the
// transcript and Merkle layers. Concrete round constants are out of scope
// for the verifier core (they are a prover/verifier-shared deployment
// parameter); this package ships the interface plus two standalone
// instantiations so the rest of the module has something deterministic to
// run against in tests.
package permutation

import "github.com/consensys/air-whir-verifier/field"

// Width is the fixed number of base-field elements in the permutation
// state. DigestLen is half of it, matching the spec's rate/capacity split.
const (
	Width     = 8
	DigestLen = Width / 2
)

// Permutation is a pure, deterministic endomorphism of a Width-element state.
type Permutation interface {
	Permute(state *[Width]field.F)
}

// Absorb feeds data into state DigestLen elements at a time, overwriting
// only the first DigestLen slots per block (the upper half carries capacity
// between absorptions) and calling Permute once per block. The final block
// is zero-padded if data's length is not a multiple of DigestLen. This is
// the one absorption routine shared by the transcript and by Merkle leaf
// hashing, per the spec's requirement that both reuse the same permutation.
func Absorb(p Permutation, state *[Width]field.F, data []field.F) {
	for i := 0; i < len(data); i += DigestLen {
		end := i + DigestLen
		if end > len(data) {
			end = len(data)
		}
		var block [DigestLen]field.F
		copy(block[:], data[i:end])
		copy(state[:DigestLen], block[:])
		p.Permute(state)
	}
}
