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

// Package air drives the PIOP verifier for one algebraic intermediate
// representation statement: a zerocheck over the batched row constraints,
// an inner sumcheck closing the witness row-shift claims, and a final
// discharge of the combined evaluation claim to WHIR.
package air

import (
	"errors"
	"fmt"

	"github.com/consensys/air-whir-verifier/circuit"
	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/poly"
	"github.com/consensys/air-whir-verifier/sumcheck"
	"github.com/consensys/air-whir-verifier/transcript"
	"github.com/consensys/air-whir-verifier/whir"
)

// ErrZerocheckNonZero is returned when the batched zerocheck's claimed sum
// is not zero.
var ErrZerocheckNonZero = errors.New("air: zerocheck claimed sum is not zero")

// ErrConstraintMismatch is returned when the combined constraint evaluation
// at the global point does not match the zerocheck's delayed value.
var ErrConstraintMismatch = errors.New("air: constraint evaluation does not match zerocheck value")

// ErrInnerMismatch is returned when the inner sumcheck's closing identity
// fails, either at its claimed-sum boundary or its final combination.
var ErrInnerMismatch = errors.New("air: inner sumcheck closing identity failed")

// ErrParamInconsistency is returned for structural mismatches between the
// table's declared shape and data read from the transcript.
var ErrParamInconsistency = errors.New("air: parameter inconsistency")

// AirTable describes one statement: a row-constrained trace plus the WHIR
// parameters committing to its witness columns. Constraints are arithmetic
// circuits each consuming 2*NColumns extension inputs, laid out as
// [current-row column values, next-row column values]; within each half,
// preprocessed columns come first (by index), witness columns after.
//
// A non-empty UnivariateSelectors switches the driver to the
// univariate-skip variant, using SkipWidth as U (see package sumcheck).
type AirTable struct {
	NColumns             int
	LogNRows             int
	Constraints          []*circuit.Circuit
	MaxConstraintDegree  int
	PreprocessedColumns  [][]field.F
	WhirParams           *whir.WhirParams
	UnivariateSelectors  []poly.Univariate
	SkipWidth            int
}

// NWitnessColumns returns n_columns - len(preprocessed_columns).
func (t *AirTable) NWitnessColumns() int {
	return t.NColumns - len(t.PreprocessedColumns)
}

// LogNWitnessColumns returns ceil(log2(NWitnessColumns())).
func (t *AirTable) LogNWitnessColumns() int {
	return ceilLog2(t.NWitnessColumns())
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bits, v := 0, 1
	for v < n {
		v <<= 1
		bits++
	}
	return bits
}

// columnUp replaces a preprocessed column's last entry with a copy of its
// second-to-last, the row-up shift analogue for a concrete column vector.
func columnUp(c []field.F) []field.F {
	n := len(c)
	out := make([]field.F, n)
	copy(out, c)
	if n >= 2 {
		out[n-1] = c[n-2]
	}
	return out
}

// columnDown drops a preprocessed column's first entry and appends a copy
// of its new last, the row-down shift analogue for a concrete column vector.
func columnDown(c []field.F) []field.F {
	n := len(c)
	out := make([]field.F, n)
	if n > 0 {
		copy(out, c[1:])
		out[n-1] = c[n-1]
	}
	return out
}

// safeFrom returns s[i:], clamping to an empty slice instead of panicking
// when i exceeds len(s) (the original implementation's host language slices
// permissively; the stitching formulas below rely on that at n_rows=1).
func safeFrom(s []field.EF, i int) []field.EF {
	if i > len(s) {
		return nil
	}
	return s[i:]
}

func evalAsMultilinearBase(vals []field.F, x []field.EF) field.EF {
	evals := make([]field.EF, len(vals))
	for i, v := range vals {
		evals[i] = field.FromBase(v)
	}
	return poly.MultilinearEvals{Evals: evals}.Evaluate(x)
}

// evaluatePreprocessedShift evaluates a shifted preprocessed column at the
// zerocheck point. In the plain variant this is a direct ME evaluation; in
// the skip variant the column is split into 2^U chunks indexed by the
// skipped block, each chunk evaluated at the point's remaining coordinates
// and recombined by the corresponding univariate selector, mirroring the
// resolved selector construction used for the inner sumcheck's closing
// identity (see DESIGN.md).
func evaluatePreprocessedShift(table *AirTable, vals []field.F, zerocheckPoint []field.EF) field.EF {
	if len(table.UnivariateSelectors) == 0 {
		return evalAsMultilinearBase(vals, zerocheckPoint)
	}
	u := table.SkipWidth
	nChunks := 1 << uint(u)
	chunkSize := len(vals) / nChunks
	rest := safeFrom(zerocheckPoint, 1)
	acc := field.EFZero()
	for j := 0; j < nChunks; j++ {
		chunk := vals[j*chunkSize : (j+1)*chunkSize]
		chunkEval := evalAsMultilinearBase(chunk, rest)
		w := table.UnivariateSelectors[j].Evaluate(zerocheckPoint[0])
		acc = acc.Add(chunkEval.Mul(w))
	}
	return acc
}

// selectorFactor computes step 12's combination weight: eq_tensor of the
// zerocheck sumcheck's first output coordinate against the inner
// sumcheck's first challenge in the plain variant, or the ME over the
// univariate selectors at the same pair's skip-width-wide analogue in
// variant B. A zero-variable zerocheck (a single-row trace) has no first
// coordinate to select against, so the selector degenerates to 1: there is
// only one row, so there is nothing left to select between.
func selectorFactor(table *AirTable, zerocheckPoint, innerChallenges []field.EF) (field.EF, error) {
	if len(zerocheckPoint) == 0 {
		return field.EFOne(), nil
	}
	if len(table.UnivariateSelectors) == 0 {
		return poly.EqTensor(zerocheckPoint[:1], innerChallenges[:1])
	}
	u := table.SkipWidth
	evals := make([]field.EF, 1<<uint(u))
	for j := range evals {
		evals[j] = table.UnivariateSelectors[j].Evaluate(zerocheckPoint[0])
	}
	return poly.MultilinearEvals{Evals: evals}.Evaluate(innerChallenges[:u]), nil
}

// Verify discharges table's statement against ts, returning the final
// evaluation claim handed to WHIR alongside any failure.
func Verify(table *AirTable, ts *transcript.Transcript, opts ...Option) (poly.Evaluation, error) {
	cfg := newSettings(opts)
	skip := len(table.UnivariateSelectors) > 0
	u := table.SkipWidth
	skipPrefix := 1
	if skip {
		skipPrefix = u
	}

	cfg.log.Debug("parse_commitment", map[string]interface{}{"n_rows": 1 << uint(table.LogNRows), "n_columns": table.NColumns})
	commitment, err := whir.ParseCommitment(table.WhirParams, ts)
	if err != nil {
		cfg.log.Warn("parse_commitment", err)
		return poly.Evaluation{}, err
	}

	alpha := ts.ChallengeExt()

	zetaLen := table.LogNRows
	if skip {
		zetaLen = table.LogNRows - u + 1
	}
	zeta := make([]field.EF, zetaLen)
	for i := range zeta {
		zeta[i] = ts.ChallengeExt()
	}

	degree := table.MaxConstraintDegree + 1
	var zerocheckSum field.EF
	var zerocheckEval poly.Evaluation
	if skip {
		zerocheckSum, zerocheckEval, err = sumcheck.VerifySkipped(table.LogNRows, u, degree, ts)
	} else {
		zerocheckSum, zerocheckEval, err = sumcheck.VerifyPlain(table.LogNRows, degree, ts)
	}
	if err != nil {
		cfg.log.Warn("zerocheck", err)
		return poly.Evaluation{}, err
	}
	if !zerocheckSum.IsZero() {
		cfg.log.Warn("zerocheck", ErrZerocheckNonZero)
		return poly.Evaluation{}, ErrZerocheckNonZero
	}
	cfg.log.Debug("zerocheck", map[string]interface{}{"n_vars": table.LogNRows})
	zerocheckPoint := zerocheckEval.Point
	zerocheckValue := zerocheckEval.Value

	nWitness := table.NWitnessColumns()
	witnessEvals, err := ts.ReceiveExt(2 * nWitness)
	if err != nil {
		return poly.Evaluation{}, err
	}
	witnessUp := witnessEvals[:nWitness]
	witnessDown := witnessEvals[nWitness:]

	preUp := make([]field.EF, len(table.PreprocessedColumns))
	preDown := make([]field.EF, len(table.PreprocessedColumns))
	for i, col := range table.PreprocessedColumns {
		preUp[i] = evaluatePreprocessedShift(table, columnUp(col), zerocheckPoint)
		preDown[i] = evaluatePreprocessedShift(table, columnDown(col), zerocheckPoint)
	}

	globalPoint := make([]field.EF, 0, 2*table.NColumns)
	globalPoint = append(globalPoint, preUp...)
	globalPoint = append(globalPoint, witnessUp...)
	globalPoint = append(globalPoint, preDown...)
	globalPoint = append(globalPoint, witnessDown...)

	constraintSum := field.EFZero()
	alphaPow := field.EFOne()
	for _, c := range table.Constraints {
		v, err := c.Evaluate(globalPoint)
		if err != nil {
			return poly.Evaluation{}, fmt.Errorf("%w: constraint evaluation: %v", ErrParamInconsistency, err)
		}
		constraintSum = constraintSum.Add(v.Mul(alphaPow))
		alphaPow = alphaPow.Mul(alpha)
	}

	eqZetaZerocheck, err := poly.EqTensor(zeta, zerocheckPoint)
	if err != nil {
		return poly.Evaluation{}, fmt.Errorf("%w: %v", ErrParamInconsistency, err)
	}
	if !constraintSum.Mul(eqZetaZerocheck).Equal(zerocheckValue) {
		cfg.log.Warn("constraints", ErrConstraintMismatch)
		return poly.Evaluation{}, ErrConstraintMismatch
	}

	beta := ts.ChallengeExt()

	innerNVars := table.LogNRows + 1
	if skip {
		innerNVars = table.LogNRows + u
	}
	innerSum, innerEval, err := sumcheck.VerifyPlain(innerNVars, 3, ts)
	if err != nil {
		cfg.log.Warn("inner_sumcheck", err)
		return poly.Evaluation{}, err
	}

	witnessShifted := make([]field.EF, 0, 2*nWitness)
	witnessShifted = append(witnessShifted, witnessUp...)
	witnessShifted = append(witnessShifted, witnessDown...)
	expectedInnerSum := field.EFZero()
	betaPow := field.EFOne()
	for _, v := range witnessShifted {
		expectedInnerSum = expectedInnerSum.Add(v.Mul(betaPow))
		betaPow = betaPow.Mul(beta)
	}
	if !innerSum.Equal(expectedInnerSum) {
		cfg.log.Warn("inner_sumcheck", ErrInnerMismatch)
		return poly.Evaluation{}, ErrInnerMismatch
	}

	innerChallenges := innerEval.Point
	innerTarget := innerEval.Value

	matrixPoint := make([]field.EF, 0, 2*table.LogNRows)
	matrixPoint = append(matrixPoint, innerChallenges[:skipPrefix]...)
	matrixPoint = append(matrixPoint, safeFrom(zerocheckPoint, 1)...)
	matrixPoint = append(matrixPoint, safeFrom(innerChallenges, skipPrefix)...)

	mUp, err := circuit.MatrixUpLDE(table.LogNRows).Evaluate(matrixPoint)
	if err != nil {
		return poly.Evaluation{}, fmt.Errorf("%w: matrix_up_lde: %v", ErrParamInconsistency, err)
	}
	mDown, err := circuit.MatrixDownLDE(table.LogNRows).Evaluate(matrixPoint)
	if err != nil {
		return poly.Evaluation{}, fmt.Errorf("%w: matrix_down_lde: %v", ErrParamInconsistency, err)
	}

	finalInnerClaims, err := ts.ReceiveExt(nWitness)
	if err != nil {
		return poly.Evaluation{}, err
	}

	betaNWitness := beta.Exp(uint64(nWitness))
	combined := field.EFZero()
	betaPow = field.EFOne()
	for _, claim := range finalInnerClaims {
		coeff := betaPow.Mul(mUp).Add(betaPow.Mul(betaNWitness).Mul(mDown))
		combined = combined.Add(claim.Mul(coeff))
		betaPow = betaPow.Mul(beta)
	}

	selector, err := selectorFactor(table, zerocheckPoint, innerChallenges)
	if err != nil {
		return poly.Evaluation{}, fmt.Errorf("%w: %v", ErrParamInconsistency, err)
	}
	if !combined.Mul(selector).Equal(innerTarget) {
		cfg.log.Warn("inner_closing", ErrInnerMismatch)
		return poly.Evaluation{}, ErrInnerMismatch
	}

	logNWitness := table.LogNWitnessColumns()
	randomScalars := make([]field.EF, logNWitness)
	for i := range randomScalars {
		randomScalars[i] = ts.ChallengeExt()
	}

	finalPoint := make([]field.EF, 0, logNWitness+len(innerChallenges))
	finalPoint = append(finalPoint, randomScalars...)
	finalPoint = append(finalPoint, safeFrom(innerChallenges, skipPrefix)...)

	padded := make([]field.EF, 1<<uint(logNWitness))
	copy(padded, finalInnerClaims)
	for i := len(finalInnerClaims); i < len(padded); i++ {
		padded[i] = field.EFZero()
	}
	packedValue := poly.MultilinearEvals{Evals: padded}.Evaluate(randomScalars)

	claim := poly.Evaluation{Point: finalPoint, Value: packedValue}
	cfg.log.Debug("whir_discharge", map[string]interface{}{"point_len": len(finalPoint)})
	if err := whir.Verify(table.WhirParams, ts, commitment, claim, whir.WithLogger(cfg.log)); err != nil {
		cfg.log.Warn("whir_discharge", err)
		return poly.Evaluation{}, err
	}

	return claim, nil
}
