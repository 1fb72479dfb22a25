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

package whir

import "github.com/consensys/air-whir-verifier/internal/logging"

// Option configures optional, ambient behavior of Verify (currently just
// logging) without perturbing its transcript-reading semantics.
type Option func(*settings)

type settings struct {
	log logging.Logger
}

func newSettings(opts []Option) settings {
	s := settings{log: logging.Nop{}}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// WithLogger injects a Logger that Verify reports per-round progress to.
// Omitting it (the default) logs nothing.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) { s.log = l }
}
