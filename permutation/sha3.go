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

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/consensys/air-whir-verifier/field"
)

// Sha3Permutation is a real, standalone instantiation of Permutation used by
// the transcript and Merkle test suites so they exercise genuine
// cryptographic mixing rather than only the NullPermutation stub. It treats
// the Width-element state as an opaque byte string, hashes it with
// SHA3-512, and reinterprets the digest as Width new field elements.
type Sha3Permutation struct{}

// Permute overwrites state with SHA3-512(state), reduced back into F.
func (Sha3Permutation) Permute(state *[Width]field.F) {
	buf := make([]byte, Width*8)
	for i, e := range state {
		binary.LittleEndian.PutUint64(buf[i*8:], e.Uint64())
	}
	digest := sha3.Sum512(buf)
	var out [Width]field.F
	for i := 0; i < Width; i++ {
		out[i] = field.NewF(binary.LittleEndian.Uint64(digest[i*8:]))
	}
	*state = out
}
