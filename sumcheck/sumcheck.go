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

// Package sumcheck implements the interactive sumcheck sub-protocol's
// verifier side, in its plain form and with the univariate-skip
// optimization that collapses the first U rounds into one large round.
package sumcheck

import (
	"errors"
	"fmt"

	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/poly"
	"github.com/consensys/air-whir-verifier/transcript"
)

// ErrSumcheckMismatch is returned when a round polynomial fails the
// consistency check p(0) + p(1) == target.
var ErrSumcheckMismatch = errors.New("sumcheck: round consistency check failed")

// VerifyPlain runs the unskipped sumcheck over nVars rounds, each reading a
// degree-bound-d round polynomial (d+1 coefficients), and returns the
// claimed total sum (taken from round 0) alongside the final evaluation
// claim over the squeezed challenges.
func VerifyPlain(nVars, degree int, ts *transcript.Transcript) (field.EF, poly.Evaluation, error) {
	var claimedSum, target field.EF
	challenges := make([]field.EF, 0, nVars)

	for i := 0; i < nVars; i++ {
		g, err := readRoundPoly(ts, degree+1)
		if err != nil {
			return field.EFZero(), poly.Evaluation{}, err
		}
		sum01 := g.Evaluate(field.EFZero()).Add(g.Evaluate(field.EFOne()))
		if i == 0 {
			claimedSum = sum01
		} else if !target.Equal(sum01) {
			return field.EFZero(), poly.Evaluation{}, fmt.Errorf("%w: round %d", ErrSumcheckMismatch, i)
		}

		r := ts.ChallengeExt()
		target = g.Evaluate(r)
		challenges = append(challenges, r)
	}

	return claimedSum, poly.Evaluation{Point: challenges, Value: target}, nil
}

// VerifySkipped runs sumcheck with the first u rounds collapsed into one
// univariate round of degree bound degree*2^u, followed by nVars-u plain
// rounds.
func VerifySkipped(nVars, u, degree int, ts *transcript.Transcript) (field.EF, poly.Evaluation, error) {
	if u <= 0 || u > nVars {
		return field.EFZero(), poly.Evaluation{}, fmt.Errorf("sumcheck: VerifySkipped: invalid skip width u=%d for nVars=%d", u, nVars)
	}

	skipWidth := degree << uint(u)
	g, err := readRoundPoly(ts, skipWidth)
	if err != nil {
		return field.EFZero(), poly.Evaluation{}, err
	}

	claimedSum := field.EFZero()
	for j := 0; j < 1<<uint(u); j++ {
		claimedSum = claimedSum.Add(g.Evaluate(field.FromBase(field.NewF(uint64(j)))))
	}

	r0 := ts.ChallengeExt()
	target := g.Evaluate(r0)
	challenges := make([]field.EF, 0, nVars)
	challenges = append(challenges, r0)

	for i := u; i < nVars; i++ {
		gi, err := readRoundPoly(ts, degree+1)
		if err != nil {
			return field.EFZero(), poly.Evaluation{}, err
		}
		sum01 := gi.Evaluate(field.EFZero()).Add(gi.Evaluate(field.EFOne()))
		if !target.Equal(sum01) {
			return field.EFZero(), poly.Evaluation{}, fmt.Errorf("%w: round %d", ErrSumcheckMismatch, i)
		}
		r := ts.ChallengeExt()
		target = gi.Evaluate(r)
		challenges = append(challenges, r)
	}

	return claimedSum, poly.Evaluation{Point: challenges, Value: target}, nil
}

func readRoundPoly(ts *transcript.Transcript, nCoeffs int) (poly.Univariate, error) {
	coeffs, err := ts.ReceiveExt(nCoeffs)
	if err != nil {
		return poly.Univariate{}, err
	}
	return poly.Univariate{Coeffs: coeffs}, nil
}
