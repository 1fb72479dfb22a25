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

// Package logging wraps zerolog behind a small injected interface so the
// verifier core's phase-level diagnostics never depend on a package-level
// global logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal surface the verifier packages log through. It is
// satisfied by *zerolog.Logger via the Wrap helper below, and by Nop for
// callers who want no output at all.
type Logger interface {
	Debug(phase string, fields map[string]interface{})
	Warn(phase string, err error)
}

// Wrap adapts a zerolog.Logger to Logger.
func Wrap(l zerolog.Logger) Logger { return zerologLogger{l} }

// New builds a zerolog.Logger writing JSON lines with timestamps to w
// (os.Stderr if nil) at the given level, then wraps it.
func New(w io.Writer, level zerolog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return Wrap(l)
}

type zerologLogger struct{ l zerolog.Logger }

func (z zerologLogger) Debug(phase string, fields map[string]interface{}) {
	ev := z.l.Debug().Str("phase", phase)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("verify phase")
}

func (z zerologLogger) Warn(phase string, err error) {
	z.l.Warn().Str("phase", phase).Err(err).Msg("verify phase failed")
}

// Nop discards every call. It is the default when no Logger is injected.
type Nop struct{}

func (Nop) Debug(string, map[string]interface{}) {}
func (Nop) Warn(string, error)                   {}
