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

//go:build profiling

// Package profiling provides github.com/google/pprof/profile helpers,
// matching the teacher's use of pprof for prover/verifier benchmarking.
// cmd/verify does not import it and has no -cpuprofile flag. Built only
// under the "profiling" tag, so the default build carries no pprof
// dependency at all.
package profiling

import (
	"fmt"
	"os"
	"runtime/pprof"

	googlepprof "github.com/google/pprof/profile"
)

// Start begins CPU profiling to path via the runtime's own pprof writer,
// returning a Stop func the caller defers.
func Start(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return func() {}, fmt.Errorf("profiling: start: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return func() {}, fmt.Errorf("profiling: start: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

// Summarize reopens a profile written by Start and reports its sample
// count and total duration using google/pprof's profile.Parse, so
// cmd/verify can print a one-line summary of where a slow verification
// spent its time without shelling out to `go tool pprof`.
func Summarize(path string) (samples int, durationNanos int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("profiling: summarize: %w", err)
	}
	defer f.Close()

	prof, err := googlepprof.Parse(f)
	if err != nil {
		return 0, 0, fmt.Errorf("profiling: summarize: %w", err)
	}
	return len(prof.Sample), prof.DurationNanos, nil
}
