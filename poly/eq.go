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

package poly

import (
	"fmt"

	"github.com/consensys/air-whir-verifier/field"
)

// EqTensor computes Prod_i (s1_i*s2_i + (1-s1_i)(1-s2_i)) and returns 1 on
// empty input.
func EqTensor(s1, s2 []field.EF) (field.EF, error) {
	if len(s1) != len(s2) {
		return field.EFZero(), fmt.Errorf("poly: EqTensor: length mismatch %d != %d", len(s1), len(s2))
	}
	one := field.EFOne()
	acc := one
	for i := range s1 {
		acc = acc.Mul(s1[i].Mul(s2[i]).Add(one.Sub(s1[i]).Mul(one.Sub(s2[i]))))
	}
	return acc, nil
}

// Evaluation is a (point, value) multilinear evaluation claim.
type Evaluation struct {
	Point []field.EF
	Value field.EF
}
