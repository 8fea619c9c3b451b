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

// Package frame implements the PN532 wire frame format: building and
// parsing normal information frames and recognizing the fixed ACK/NACK
// sequences. All functions are pure byte transformations with no I/O.
package frame

import (
	"bytes"
	"errors"
	"fmt"
)

// Frame direction identifiers (TFI byte).
const (
	HostToDevice = 0xD4 // Commands from host to PN532
	DeviceToHost = 0xD5 // Responses from PN532 to host
)

// Frame markers and control bytes.
const (
	Preamble   = 0x00
	StartCode1 = 0x00
	StartCode2 = 0xFF
	Postamble  = 0x00
)

// Frame size limits for normal (non-extended) information frames.
const (
	MinPayloadLength = 1   // At least the TFI byte
	MaxPayloadLength = 255 // LEN is a single byte
	Overhead         = 7   // preamble + startcode(2) + len + lcs + dcs + postamble
)

// ACK and NACK frames used for flow control.
var (
	AckFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
)

// Frame codec errors.
var (
	// ErrInvalidLength is returned when a payload does not fit a normal frame.
	ErrInvalidLength = errors.New("frame: payload length out of range")
	// ErrNoStartCode is returned when the 00 FF start marker is not found.
	ErrNoStartCode = errors.New("frame: start code not found")
	// ErrTruncated is returned when the input ends before the frame does.
	ErrTruncated = errors.New("frame: truncated input")
	// ErrLengthChecksum is returned when LEN+LCS does not sum to zero.
	ErrLengthChecksum = errors.New("frame: length checksum mismatch")
	// ErrDataChecksum is returned when the payload checksum fails.
	ErrDataChecksum = errors.New("frame: data checksum mismatch")
)

// Checksum computes the modular sum of all bytes in data. The wire
// format requires sum(DATA)+DCS == 0 (mod 256).
func Checksum(data []byte) byte {
	chk := byte(0)
	for _, b := range data {
		chk += b
	}
	return chk
}

// Build wraps payload in a complete PN532 information frame:
// PREAMBLE STARTCODE LEN LCS payload DCS POSTAMBLE.
// The payload must include the TFI byte and be 1-255 bytes long.
func Build(payload []byte) ([]byte, error) {
	if len(payload) < MinPayloadLength || len(payload) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(payload))
	}

	length := byte(len(payload))
	frm := make([]byte, 0, len(payload)+Overhead)
	frm = append(frm, Preamble, StartCode1, StartCode2)
	frm = append(frm, length, ^length+1)
	frm = append(frm, payload...)
	frm = append(frm, ^Checksum(payload)+1, Postamble)
	return frm, nil
}

// Parse locates and validates an information frame in raw and returns
// its payload (TFI included, framing and checksum bytes stripped).
// Leading zero bytes before the 00 FF start code are skipped, which
// tolerates the variable-length preamble some transports produce. The
// start code is the two-byte 00 FF sequence; a bare 0xFF first byte is
// not a frame.
func Parse(raw []byte) ([]byte, error) {
	off := 0
	for off < len(raw) && raw[off] == 0x00 {
		off++
	}
	if off == 0 || off >= len(raw) || raw[off] != StartCode2 {
		return nil, ErrNoStartCode
	}
	off++

	if off+2 > len(raw) {
		return nil, ErrTruncated
	}
	length := int(raw[off])
	lcs := raw[off+1]
	if (length+int(lcs))&0xFF != 0 {
		return nil, fmt.Errorf("%w: len=0x%02X lcs=0x%02X", ErrLengthChecksum, length, lcs)
	}
	off += 2

	if off+length+1 > len(raw) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, length+1, len(raw)-off)
	}
	if Checksum(raw[off:off+length+1]) != 0 {
		return nil, ErrDataChecksum
	}

	return raw[off : off+length], nil
}

// IsAck reports whether raw begins with the fixed 6-byte ACK sequence.
func IsAck(raw []byte) bool {
	return len(raw) >= len(AckFrame) && bytes.Equal(raw[:len(AckFrame)], AckFrame)
}

// IsNack reports whether raw begins with the fixed 6-byte NACK sequence.
func IsNack(raw []byte) bool {
	return len(raw) >= len(NackFrame) && bytes.Equal(raw[:len(NackFrame)], NackFrame)
}
