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

package field

// P is the base-field modulus: a 31-bit prime with a large two-adic
// subgroup, the same shape as the field the verifier core was distilled
// against (P = 2^31 - 2^24 + 1).
const P uint64 = 2130706433

// PBits is ceil(log2(P)).
const PBits = 31

// TwoAdicity is the largest k such that 2^k divides P-1.
const TwoAdicity = 24

// TwoAdicGeneratorValue has multiplicative order 2^TwoAdicity in F.
const TwoAdicGeneratorValue uint64 = 1791270792

// Deg is the algebraic extension degree: EF = F[x]/(x^Deg - W).
const Deg = 4

// W is chosen so that x^Deg - W is irreducible over F.
const W uint64 = 3
