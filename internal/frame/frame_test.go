// Copyright 2026 The Digidex Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "overflow handling",
			data: []byte{0xFF, 0x01},
			want: 0x00,
		},
		{
			name: "command payload",
			data: []byte{0xD4, 0x02},
			want: 0xD6,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestBuildKnownFrame(t *testing.T) {
	t.Parallel()

	// GetFirmwareVersion command frame from the PN532 manual
	got, err := Build([]byte{0xD4, 0x02})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Build() = % X, want % X", got, want)
	}
}

func TestBuildLengthLimits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload []byte
		wantErr bool
	}{
		{
			name:    "empty payload",
			payload: nil,
			wantErr: true,
		},
		{
			name:    "single byte",
			payload: []byte{0xD4},
			wantErr: false,
		},
		{
			name:    "max length",
			payload: make([]byte, 255),
			wantErr: false,
		},
		{
			name:    "over max length",
			payload: make([]byte, 256),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidLength) {
				t.Errorf("Build() error = %v, want ErrInvalidLength", err)
			}
		})
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	t.Parallel()

	for size := 1; size <= 255; size++ {
		payload := make([]byte, size)
		payload[0] = HostToDevice
		for i := 1; i < size; i++ {
			payload[i] = byte(i * 7)
		}

		frm, err := Build(payload)
		if err != nil {
			t.Fatalf("Build(size=%d) error = %v", size, err)
		}

		got, err := Parse(frm)
		if err != nil {
			t.Fatalf("Parse(size=%d) error = %v", size, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("Parse(size=%d) = % X, want % X", size, got, payload)
		}
	}
}

func TestParseLeadingPadding(t *testing.T) {
	t.Parallel()

	frm, err := Build([]byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// I2C and SPI reads commonly deliver extra leading zeros
	padded := append([]byte{0x00, 0x00, 0x00}, frm...)
	got, err := Parse(padded)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07}) {
		t.Errorf("Parse() = % X", got)
	}
}

func TestParseRejectsCorruption(t *testing.T) {
	t.Parallel()

	base, err := Build([]byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func([]byte)
		wantErr error
	}{
		{
			name:    "flipped data byte breaks data checksum",
			mutate:  func(b []byte) { b[6] ^= 0x01 },
			wantErr: ErrDataChecksum,
		},
		{
			name:    "flipped length byte breaks length checksum",
			mutate:  func(b []byte) { b[3]++ },
			wantErr: ErrLengthChecksum,
		},
		{
			name:    "flipped checksum byte",
			mutate:  func(b []byte) { b[len(b)-2] ^= 0xFF },
			wantErr: ErrDataChecksum,
		},
		{
			name:    "missing start code",
			mutate:  func(b []byte) { b[2] = 0x00 },
			wantErr: ErrNoStartCode,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frm := make([]byte, len(base))
			copy(frm, base)
			tt.mutate(frm)

			if _, err := Parse(frm); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseBareStartByte(t *testing.T) {
	t.Parallel()

	frm, err := Build([]byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// The start code is the two-byte 00 FF sequence. A stream that opens
	// directly on 0xFF lost its zero and must not parse as a frame.
	if _, err := Parse(frm[2:]); !errors.Is(err, ErrNoStartCode) {
		t.Errorf("Parse() error = %v, want ErrNoStartCode", err)
	}
}

func TestParseTruncated(t *testing.T) {
	t.Parallel()

	frm, err := Build([]byte{0xD4, 0x02})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for cut := 1; cut < len(frm)-1; cut++ {
		if _, err := Parse(frm[:cut]); err == nil {
			t.Errorf("Parse(truncated at %d) expected error", cut)
		}
	}
}

func TestIsAck(t *testing.T) {
	t.Parallel()

	if !IsAck([]byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}) {
		t.Error("IsAck() = false for canonical ACK")
	}
	if IsAck(NackFrame) {
		t.Error("IsAck() = true for NACK")
	}

	// every single-bit corruption of the ACK must be rejected
	for i := range AckFrame {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(AckFrame))
			copy(mutated, AckFrame)
			mutated[i] ^= 1 << bit
			if IsAck(mutated) {
				t.Errorf("IsAck() = true with byte %d bit %d flipped", i, bit)
			}
		}
	}
}

func TestIsNack(t *testing.T) {
	t.Parallel()

	if !IsNack([]byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}) {
		t.Error("IsNack() = false for canonical NACK")
	}
	if IsNack(AckFrame) {
		t.Error("IsNack() = true for ACK")
	}
	if IsNack([]byte{0x00, 0x00}) {
		t.Error("IsNack() = true for short input")
	}
}
