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

// Package config loads and validates the statement description (AirTable)
// and commitment parameters (WhirParams) that the verifier core consumes,
// surfacing structural mismatches as ParamInconsistency before a transcript
// is ever touched.
package config

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
)

// SupportedProtocolRange is the semver range of protocol_version values
// this build of the verifier understands, mirroring the teacher's pattern
// of gating circuit-system formats by a semver compatibility window.
var SupportedProtocolRange = semver.MustParseRange(">=1.0.0 <2.0.0")

// ValidationError reports a structural config problem, the ambient
// counterpart to the core's ParamInconsistency failure kind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// RoundConfig mirrors whir.RoundParams in a serialization-friendly shape.
type RoundConfig struct {
	NVariables         int `cbor:"n_variables"`
	DomainSize         int `cbor:"domain_size"`
	FoldingFactor      int `cbor:"folding_factor"`
	OODSamples         int `cbor:"ood_samples"`
	NumQueries         int `cbor:"num_queries"`
	CombinationPowBits int `cbor:"combination_pow_bits"`
	FoldingPowBits     int `cbor:"folding_pow_bits"`
}

// WhirConfig mirrors whir.WhirParams in a serialization-friendly shape,
// plus a protocol_version compatibility gate the bare whir.WhirParams
// struct has no room for.
type WhirConfig struct {
	ProtocolVersion string        `cbor:"protocol_version"`
	InitialOODSamples int         `cbor:"initial_ood_samples"`
	Rounds          []RoundConfig `cbor:"rounds"`

	FinalQueries            int `cbor:"final_queries"`
	FinalSumcheckRounds     int `cbor:"final_sumcheck_rounds"`
	FinalCombinationPowBits int `cbor:"final_combination_pow_bits"`
	FinalFoldingPowBits     int `cbor:"final_folding_pow_bits"`
}

// AirConfig mirrors air.AirTable's scalar shape (constraints/preprocessed
// columns are supplied separately in memory by the caller, per spec.md
// §6's "no on-disk format is mandated" for the statement itself — this
// config struct captures only the part worth shipping as a file: sizing
// and the embedded WHIR parameters).
type AirConfig struct {
	NColumns            int        `cbor:"n_columns"`
	LogNRows            int        `cbor:"log_n_rows"`
	MaxConstraintDegree int        `cbor:"max_constraint_degree"`
	SkipWidth           int        `cbor:"skip_width"`
	Whir                WhirConfig `cbor:"whir"`
}

// Decode unmarshals a CBOR-encoded AirConfig, the compact alternative to a
// JSON parameter file the teacher's own cbor dependency motivates.
func Decode(data []byte) (*AirConfig, error) {
	var cfg AirConfig
	if err := cbor.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// Encode marshals an AirConfig to CBOR.
func Encode(cfg *AirConfig) ([]byte, error) {
	data, err := cbor.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return data, nil
}

// Validate checks the structural invariants spec.md §6 states for a WHIR
// instance: round[0].n_variables must equal the claimed point width, and
// each successive round's n_variables must shrink by exactly its
// predecessor's folding factor. claimWidth is the length of the evaluation
// point the statement discharges to WHIR (air.AirTable's LogNWitnessColumns
// + the inner-sumcheck tail, computed by the caller before WHIR ever runs).
func (c *WhirConfig) Validate(claimWidth int) error {
	v, err := semver.Parse(c.ProtocolVersion)
	if err != nil {
		return &ValidationError{Field: "protocol_version", Reason: err.Error()}
	}
	if !SupportedProtocolRange(v) {
		return &ValidationError{Field: "protocol_version", Reason: fmt.Sprintf("%s not in supported range", c.ProtocolVersion)}
	}
	if len(c.Rounds) == 0 {
		return &ValidationError{Field: "rounds", Reason: "must be non-empty"}
	}
	if c.Rounds[0].NVariables != claimWidth {
		return &ValidationError{
			Field:  "rounds[0].n_variables",
			Reason: fmt.Sprintf("%d != claim width %d", c.Rounds[0].NVariables, claimWidth),
		}
	}
	for i := 0; i+1 < len(c.Rounds); i++ {
		want := c.Rounds[i].NVariables - c.Rounds[i].FoldingFactor
		if c.Rounds[i+1].NVariables != want {
			return &ValidationError{
				Field:  fmt.Sprintf("rounds[%d].n_variables", i+1),
				Reason: fmt.Sprintf("got %d, want %d (round[%d].n_variables - folding_factor)", c.Rounds[i+1].NVariables, want, i),
			}
		}
	}
	return nil
}

// Validate checks AirConfig's own structural invariants (n_columns must be
// positive, max_constraint_degree must be at least 1 for any real
// constraint to exist) plus its embedded WHIR parameters.
func (c *AirConfig) Validate(witnessClaimWidth int) error {
	if c.NColumns <= 0 {
		return &ValidationError{Field: "n_columns", Reason: "must be positive"}
	}
	if c.MaxConstraintDegree < 1 {
		return &ValidationError{Field: "max_constraint_degree", Reason: "must be at least 1"}
	}
	return c.Whir.Validate(witnessClaimWidth)
}
