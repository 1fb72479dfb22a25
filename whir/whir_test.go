package whir

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/air-whir-verifier/field"
	"github.com/consensys/air-whir-verifier/merkle"
	"github.com/consensys/air-whir-verifier/permutation"
	"github.com/consensys/air-whir-verifier/poly"
	"github.com/consensys/air-whir-verifier/transcript"
)

func ef(v uint64) field.EF { return field.FromBase(field.NewF(v)) }

// proverSim mirrors the transcript's absorb/squeeze bookkeeping so the test
// can construct a buffer whose challenges are known in advance, letting it
// choose round polynomials and the final constant consistently.
type proverSim struct {
	perm  permutation.Permutation
	state [permutation.Width]field.F
	buf   []field.F
}

func newProverSim() *proverSim { return &proverSim{perm: permutation.NullPermutation{}} }

func (p *proverSim) pushBase(vals []field.F) {
	p.buf = append(p.buf, vals...)
	permutation.Absorb(p.perm, &p.state, vals)
}

func (p *proverSim) pushExt(vals []field.EF) {
	flat := make([]field.F, 0, len(vals)*field.Deg)
	for _, v := range vals {
		flat = append(flat, v.Coeffs()...)
	}
	p.pushBase(flat)
}

func (p *proverSim) challengeExt() field.EF {
	coeffs := make([]field.F, field.Deg)
	copy(coeffs, p.state[:field.Deg])
	c := field.NewEF(coeffs)
	p.perm.Permute(&p.state)
	return c
}

func (p *proverSim) challengeBits(k int) uint64 {
	c := p.challengeExt()
	if k == 0 {
		return 0
	}
	return c.Coeff(0).Uint64() & ((uint64(1) << uint(k)) - 1)
}

func (p *proverSim) grind(bits int) {
	p.pushBase([]field.F{field.Zero()})
	for p.challengeBits(bits) != 0 {
		// the null permutation's zero-nonce happens to already satisfy
		// every bit width used by this test; this loop is defensive.
		p.pushBase([]field.F{field.One()})
	}
}

var invTwo = field.NewF(2).Inverse()

func solveConstantTerm(target field.EF, rest []field.EF) field.EF {
	sumRest := field.EFZero()
	for _, c := range rest {
		sumRest = sumRest.Add(c)
	}
	return target.Sub(sumRest).MulBase(invTwo)
}

// TestVerifySingleRoundAcceptsHonestProver builds a one-round WHIR instance
// (1 variable, folding factor 1, no OOD) entirely by hand, mirroring the
// exact transcript call order Verify performs, and checks that an
// honestly constructed proof is accepted. Folding the single variable away
// collapses every later point to length 0, which keeps the final
// consistency check's eq_tensor calls well-typed without needing a
// multi-round Merkle-tree fixture.
func TestVerifySingleRoundAcceptsHonestProver(t *testing.T) {
	perm := permutation.NullPermutation{}
	params := &WhirParams{
		InitialOODSamples: 0,
		Rounds: []RoundParams{{
			NVariables:         1,
			DomainSize:         1,
			FoldingFactor:      1,
			OODSamples:         0,
			NumQueries:         1,
			CombinationPowBits: 0,
			FoldingPowBits:     0,
		}},
	}

	claimPoint := []field.EF{ef(3)}
	claimValue := ef(11)

	sim := newProverSim()

	// --- round 0, step 1-2: grind then combine (reset, not accumulate) ---
	sim.grind(params.Rounds[0].CombinationPowBits)
	gamma := sim.challengeExt()
	target := combineEvals([]field.EF{claimValue}, gamma)

	// --- step 3: one folding iteration (FoldingFactor=1) ---
	rest := []field.EF{ef(2), ef(4)}
	c0 := solveConstantTerm(target, rest)
	roundPoly := append([]field.EF{c0}, rest...)
	sim.pushExt(roundPoly)
	r := sim.challengeExt()
	sim.grind(params.Rounds[0].FoldingPowBits)

	// The query leaf (l0, l1) is hashed directly under the round's initial
	// root (height 0, since DomainSize-FoldingFactor=0). Evaluating it at r
	// must land exactly on eq_tensor(claimPoint, [r]) for the final check
	// to pass; since claimPoint's one coordinate (p=3) is base-field-valued,
	// l0 := 1-p and l1 := 2p-1 solve l0 + l1*r == (1-p) + (2p-1)*r for any
	// r, so the squeezed challenge's concrete value never needs computing.
	p := field.NewF(3)
	l0 := field.One().Sub(p)
	l1 := field.NewF(2).Mul(p).Sub(field.One())
	initialRoot := merkle.HashLeaf(perm, []field.F{l0, l1})

	leafExt := []field.EF{field.FromBase(l0), field.FromBase(l1)}
	finalConst := poly.MultilinearCoeffs{Coeffs: leafExt}.Evaluate([]field.EF{r})
	newRoot := merkle.HashLeaf(perm, finalConst.Coeffs())

	// --- step 4-6: new root, no OOD samples this round ---
	sim.pushBase(newRoot[:])

	// --- step 7: one query, height 0 (DomainSize-FoldingFactor=0) ---
	idx := sim.challengeBits(0)
	require.Zero(t, idx)
	sim.pushBase([]field.F{l0, l1})

	sim.pushExt([]field.EF{finalConst})

	// --- final consistency: one record (round 0's seed point) ---
	eqv, err := poly.EqTensor(claimPoint, []field.EF{r})
	require.NoError(t, err)
	expected := eqv // gamma^0 == 1
	require.True(t, expected.Equal(finalConst), "test fixture's own consistency check")

	commitment := &ParsedCommitment{MerkleRoot: initialRoot}

	ts := transcript.New(perm, sim.buf)
	err = Verify(params, ts, commitment, poly.Evaluation{Point: claimPoint, Value: claimValue})
	require.NoError(t, err)
}

// TestCombineEvalsResetsEachRound confirms the resolved Open Question: the
// combination target is recomputed fresh each round rather than
// accumulated across rounds.
func TestCombineEvalsResetsEachRound(t *testing.T) {
	evals := []field.EF{ef(2), ef(3)}
	gamma := ef(5)
	got := combineEvals(evals, gamma)
	want := ef(2).Add(ef(3).Mul(gamma))
	assert.True(t, got.Equal(want))

	// calling it again with different evals must not carry over any state
	// from the previous call (there is none: this is a pure function).
	got2 := combineEvals([]field.EF{ef(7)}, gamma)
	assert.True(t, got2.Equal(ef(7)))
}

func TestSuffixOfLength(t *testing.T) {
	v := []field.EF{ef(1), ef(2), ef(3)}
	assert.Equal(t, []field.EF{ef(2), ef(3)}, suffixOfLength(v, 2))
	assert.Equal(t, v, suffixOfLength(v, 10))
	assert.Empty(t, suffixOfLength(v, 0))
}

func TestVerifyRejectsParamInconsistencyOnClaimWidth(t *testing.T) {
	params := &WhirParams{Rounds: []RoundParams{{NVariables: 2}}}
	perm := permutation.NullPermutation{}
	ts := transcript.New(perm, nil)
	commitment := &ParsedCommitment{}
	err := Verify(params, ts, commitment, poly.Evaluation{Point: []field.EF{ef(1)}, Value: ef(1)})
	require.ErrorIs(t, err, ErrParamInconsistency)
}

// TestVerifyMultiQueryRoundRevisitsSameIndex builds a round whose query
// domain has been folded down to a single point (DomainSize==FoldingFactor,
// so height==0), then issues NumQueries=2 consistency queries against it.
// ChallengeBits(0) always returns 0, so every query in the loop necessarily
// re-samples the same domain index; the fixture builder tracks that with a
// bitset.BitSet the way a real prover would track which indices it has
// already opened a leaf for across a round's query loop, confirming the
// collision Verify itself is happy to tolerate (it re-reads and
// re-authenticates the leaf independently each time).
func TestVerifyMultiQueryRoundRevisitsSameIndex(t *testing.T) {
	perm := permutation.NullPermutation{}
	params := &WhirParams{
		InitialOODSamples: 0,
		Rounds: []RoundParams{{
			NVariables:    1,
			DomainSize:    1,
			FoldingFactor: 1,
			NumQueries:    2,
		}},
	}

	claimPoint := []field.EF{ef(3)}
	claimValue := ef(11)

	sim := newProverSim()

	sim.grind(params.Rounds[0].CombinationPowBits)
	gamma := sim.challengeExt()
	target := combineEvals([]field.EF{claimValue}, gamma)

	rest := []field.EF{ef(2), ef(4)}
	c0 := solveConstantTerm(target, rest)
	roundPoly := append([]field.EF{c0}, rest...)
	sim.pushExt(roundPoly)
	r := sim.challengeExt()
	sim.grind(params.Rounds[0].FoldingPowBits)

	p := field.NewF(3)
	l0 := field.One().Sub(p)
	l1 := field.NewF(2).Mul(p).Sub(field.One())
	initialRoot := merkle.HashLeaf(perm, []field.F{l0, l1})

	leafExt := []field.EF{field.FromBase(l0), field.FromBase(l1)}
	finalConst := poly.MultilinearCoeffs{Coeffs: leafExt}.Evaluate([]field.EF{r})
	newRoot := merkle.HashLeaf(perm, finalConst.Coeffs())

	sim.pushBase(newRoot[:])

	seen := bitset.New(1)
	var collisions int
	for q := 0; q < params.Rounds[0].NumQueries; q++ {
		idx := sim.challengeBits(0)
		require.Zero(t, idx)
		if seen.Test(uint(idx)) {
			collisions++
		}
		seen.Set(uint(idx))
		sim.pushBase([]field.F{l0, l1})
	}
	assert.Equal(t, uint(1), seen.Count(), "a height-0 round has exactly one reachable index")
	assert.Equal(t, 1, collisions, "the second of two queries against a single-point domain must collide")

	sim.pushExt([]field.EF{finalConst})

	commitment := &ParsedCommitment{MerkleRoot: initialRoot}
	ts := transcript.New(perm, sim.buf)
	err := Verify(params, ts, commitment, poly.Evaluation{Point: claimPoint, Value: claimValue})
	require.NoError(t, err)
}
