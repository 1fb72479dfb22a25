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

// Package transcript implements the Fiat-Shamir transcript: a strictly
// sequential reader over a flat sequence of base-field scalars, driving a
// sponge built on the shared permutation primitive.
package transcript

import (
	"errors"
	"fmt"

	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/permutation"
)

// ErrTranscriptExhausted is returned when a read asks for more scalars than
// remain in the buffer.
var ErrTranscriptExhausted = errors.New("transcript: exhausted")

// ErrTrailingData is returned by Finish when the cursor has not consumed
// the entire buffer.
var ErrTrailingData = errors.New("transcript: trailing data")

// ErrPowInvalid is returned by Grind when the nonce does not satisfy the
// required low-bit pattern.
var ErrPowInvalid = errors.New("transcript: grinding nonce invalid")

// Transcript reads base-field scalars left to right while driving a
// Width-element sponge state, initialized to zero.
type Transcript struct {
	buffer []field.F
	cursor int
	state  [permutation.Width]field.F
	perm   permutation.Permutation
}

// New wraps buffer for sequential Fiat-Shamir reading under perm.
func New(perm permutation.Permutation, buffer []field.F) *Transcript {
	return &Transcript{buffer: buffer, perm: perm}
}

// Cursor returns the next-to-read index, exposed for diagnostics.
func (t *Transcript) Cursor() int { return t.cursor }

// Perm returns the permutation driving this transcript's sponge, so that
// callers needing to authenticate Merkle paths against the same
// permutation (as the spec requires) do not need to thread a second copy
// of it through every call site.
func (t *Transcript) Perm() permutation.Permutation { return t.perm }

// Finish rejects any transcript with unconsumed trailing scalars, per the
// spec's determinism requirement.
func (t *Transcript) Finish() error {
	if t.cursor != len(t.buffer) {
		return fmt.Errorf("%w: consumed %d of %d scalars", ErrTrailingData, t.cursor, len(t.buffer))
	}
	return nil
}

// ReceiveBase reads n scalars, absorbs them into the sponge, and returns
// them. Reading zero scalars is a no-op: it does not touch the state.
func (t *Transcript) ReceiveBase(n int) ([]field.F, error) {
	if n == 0 {
		return nil, nil
	}
	if t.cursor+n > len(t.buffer) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrTranscriptExhausted, n, len(t.buffer)-t.cursor)
	}
	scalars := t.buffer[t.cursor : t.cursor+n]
	t.cursor += n
	permutation.Absorb(t.perm, &t.state, scalars)
	return scalars, nil
}

// ReceiveExt reads n*Deg base scalars and reinterprets each consecutive
// Deg-tuple as an extension-field element.
func (t *Transcript) ReceiveExt(n int) ([]field.EF, error) {
	base, err := t.ReceiveBase(n * field.Deg)
	if err != nil {
		return nil, err
	}
	out := make([]field.EF, n)
	for i := 0; i < n; i++ {
		out[i] = field.NewEF(base[i*field.Deg : (i+1)*field.Deg])
	}
	return out, nil
}

// ChallengeExt squeezes one extension-field challenge from the first Deg
// slots of the state, then permutes once.
func (t *Transcript) ChallengeExt() field.EF {
	coeffs := make([]field.F, field.Deg)
	copy(coeffs, t.state[:field.Deg])
	challenge := field.NewEF(coeffs)
	t.perm.Permute(&t.state)
	return challenge
}

// ChallengeBits squeezes one extension challenge and returns its index-0
// base coordinate reduced modulo 2^k. k must be smaller than field.PBits.
func (t *Transcript) ChallengeBits(k int) uint64 {
	if k >= field.PBits {
		panic(fmt.Sprintf("transcript: ChallengeBits: k=%d must be < PBits=%d", k, field.PBits))
	}
	c := t.ChallengeExt()
	if k == 0 {
		return 0
	}
	return c.Coeff(0).Uint64() & ((uint64(1) << uint(k)) - 1)
}

// Grind reads one nonce scalar from the transcript and asserts that it
// drives ChallengeBits(bits) to zero.
func (t *Transcript) Grind(bits int) error {
	if _, err := t.ReceiveBase(1); err != nil {
		return err
	}
	if t.ChallengeBits(bits) != 0 {
		return ErrPowInvalid
	}
	return nil
}
