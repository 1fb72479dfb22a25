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

// Package merkle verifies index -> leaf inclusion paths against a
// commitment root, reusing the same permutation as the transcript.
package merkle

import (
	"errors"
	"fmt"

	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/permutation"
)

// ErrMerkleMismatch is returned when the recomputed root does not match the
// expected one.
var ErrMerkleMismatch = errors.New("merkle: root mismatch")

// Digest is the first DigestLen elements of a permutation output.
type Digest [permutation.DigestLen]field.F

// HashLeaf absorbs leaf DigestLen elements at a time into a zero state and
// returns the resulting digest, per the spec's leaf-hashing rule.
func HashLeaf(perm permutation.Permutation, leaf []field.F) Digest {
	var state [permutation.Width]field.F
	permutation.Absorb(perm, &state, leaf)
	var d Digest
	copy(d[:], state[:permutation.DigestLen])
	return d
}

// VerifyPath checks that leaf, authenticated by path against index, hashes
// up to root. Bit i of index (little-endian, bottom-up) decides whether
// the current digest at level i sits in the upper or lower half of the
// permutation state: a 1 bit means the current node is the right child.
func VerifyPath(perm permutation.Permutation, root Digest, index uint64, leaf []field.F, path []Digest, height int) error {
	if len(path) != height {
		return fmt.Errorf("merkle: authentication path length %d does not match height %d", len(path), height)
	}

	digest := HashLeaf(perm, leaf)

	for i := 0; i < height; i++ {
		var state [permutation.Width]field.F
		sibling := path[i]
		if (index>>uint(i))&1 == 1 {
			copy(state[permutation.DigestLen:], digest[:])
			copy(state[:permutation.DigestLen], sibling[:])
		} else {
			copy(state[:permutation.DigestLen], digest[:])
			copy(state[permutation.DigestLen:], sibling[:])
		}
		perm.Permute(&state)
		copy(digest[:], state[:permutation.DigestLen])
	}

	if digest != root {
		return ErrMerkleMismatch
	}
	return nil
}
