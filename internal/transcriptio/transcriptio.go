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

// Package transcriptio loads and saves test/CLI transcript fixtures: a flat
// sequence of canonical base-field scalars, compressed on disk. Transcript
// byte-serialization is explicitly out of scope for the verifier core
// (spec.md §1), so this package lives alongside it as a fixture loader, not
// as part of the protocol itself.
package transcriptio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/consensys/compress/lzss"
	"github.com/icza/bitio"
	"github.com/ronanh/intcomp"

	"github.com/consensys/air-whir-verifier/field"
)

// Save converts scalars to uint32 canonical representatives (P < 2^32),
// packs the resulting integer stream with intcomp (the teacher's dependency for
// compressing long integer sequences, such as witness/constraint streams),
// then wraps the packed bytes with lzss (the teacher's general-purpose
// compression dependency), mirroring how the teacher layers an
// integer-aware compressor underneath a byte-oriented one.
func Save(scalars []field.F) ([]byte, error) {
	raw := make([]uint32, len(scalars))
	for i, s := range scalars {
		raw[i] = uint32(s.Uint64())
	}
	packed := intcomp.CompressUint32(raw, nil)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(scalars))); err != nil {
		return nil, fmt.Errorf("transcriptio: save: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(packed))); err != nil {
		return nil, fmt.Errorf("transcriptio: save: %w", err)
	}
	for _, w := range packed {
		if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
			return nil, fmt.Errorf("transcriptio: save: %w", err)
		}
	}

	compressor, err := lzss.NewCompressor(nil)
	if err != nil {
		return nil, fmt.Errorf("transcriptio: save: %w", err)
	}
	compressed, err := compressor.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("transcriptio: save: %w", err)
	}
	return compressed, nil
}

// Load reverses Save, reconstructing the scalar sequence and reducing each
// recovered integer back into F (rejecting any that are non-canonical, per
// spec.md §7's FieldDecode failure kind — a fixture that round-trips a
// non-canonical scalar is itself malformed).
func Load(data []byte) ([]field.F, error) {
	decompressed, err := lzss.Decompress(data, nil)
	if err != nil {
		return nil, fmt.Errorf("transcriptio: load: %w", err)
	}

	r := bytes.NewReader(decompressed)
	var n, packedLen uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("transcriptio: load: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &packedLen); err != nil {
		return nil, fmt.Errorf("transcriptio: load: %w", err)
	}
	packed := make([]uint32, packedLen)
	for i := range packed {
		if err := binary.Read(r, binary.LittleEndian, &packed[i]); err != nil {
			return nil, fmt.Errorf("transcriptio: load: %w", err)
		}
	}

	raw := intcomp.UncompressUint32(packed, nil)
	if uint64(len(raw)) < n {
		return nil, fmt.Errorf("transcriptio: load: decompressed %d scalars, expected %d", len(raw), n)
	}

	out := make([]field.F, n)
	for i := range out {
		v := uint64(raw[i])
		if v >= field.P {
			return nil, fmt.Errorf("transcriptio: load: scalar %d (%w)", i, ErrFieldDecode)
		}
		out[i] = field.NewF(v)
	}
	return out, nil
}

// ErrFieldDecode reports a transcript scalar that is not a canonical
// representative in [0, P), the fixture-loading counterpart of spec.md
// §7's FieldDecode failure kind.
var ErrFieldDecode = fmt.Errorf("transcriptio: scalar is not canonical")

// GrindingNonceBits reads the low bits-count bits of a nonce's bit stream
// using bitio, the same bit-level reading role it plays in the teacher's
// uint8/bit packing code, used by fixture builders that need to hand-craft
// a nonce satisfying Grind(bits) without brute-forcing ChallengeBits.
func GrindingNonceBits(nonce field.F, bits int) uint64 {
	// bitio reads most-significant bits first, so encode big-endian and
	// skip the high 64-bits bits to reach the low ones.
	r := bitio.NewReader(bytes.NewReader(encodeBE(nonce.Uint64())))
	if _, err := r.ReadBits(uint8(64 - bits)); err != nil {
		return 0
	}
	v, _ := r.ReadBits(uint8(bits))
	return v
}

func encodeBE(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
