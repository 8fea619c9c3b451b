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

package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TLV type constants per NFC Forum Type 2 Tag specification.
const (
	TLVTypeNull          = 0x00 // padding byte, no length field
	TLVTypeLockControl   = 0x01 // defines lock bit positions
	TLVTypeMemoryControl = 0x02 // defines reserved memory
	TLVTypeNDEF          = 0x03 // contains NDEF message data
	TLVTypeTerminator    = 0xFE // end of data area, no length field
)

// tlvLongFormThreshold is the record-set size at which the TLV length
// switches to the 3-byte form (0xFF marker is reserved in the 1-byte form).
const tlvLongFormThreshold = 255

// TLV errors.
var (
	// ErrMalformedMessage is returned when tag data lacks the NDEF TLV
	// tag or the terminator, or a length field runs past the data.
	ErrMalformedMessage = errors.New("ndef: malformed TLV message")
	// ErrMessageTooLarge is returned when a record set exceeds the
	// 16-bit TLV length limit.
	ErrMessageTooLarge = errors.New("ndef: message too large for TLV")
)

// EncodeMessage serializes msg and wraps it in an NDEF Message TLV:
// 0x03, length, records, 0xFE. The length field is a single byte for
// record sets shorter than 255 bytes, otherwise 0xFF followed by a
// 2-byte big-endian length.
func EncodeMessage(msg *Message) ([]byte, error) {
	records, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	return WrapTLV(records)
}

// WrapTLV wraps an already-serialized record set in the NDEF Message TLV.
func WrapTLV(records []byte) ([]byte, error) {
	length := len(records)
	if length > 0xFFFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	var out []byte
	if length < tlvLongFormThreshold {
		out = make([]byte, 0, length+3)
		out = append(out, TLVTypeNDEF, byte(length))
	} else {
		out = make([]byte, 0, length+5)
		out = append(out, TLVTypeNDEF, 0xFF)
		out = binary.BigEndian.AppendUint16(out, uint16(length))
	}
	out = append(out, records...)
	out = append(out, TLVTypeTerminator)
	return out, nil
}

// DecodeMessage locates the NDEF Message TLV in raw tag memory,
// verifies the terminator, and parses the contained records. NULL,
// Lock Control, Memory Control and proprietary TLVs before the NDEF
// TLV are skipped per the Type 2 Tag specification.
func DecodeMessage(data []byte) (*Message, error) {
	records, err := UnwrapTLV(data)
	if err != nil {
		return nil, err
	}

	msg := &Message{}
	if _, err := msg.Unmarshal(records); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnwrapTLV extracts the serialized record set from TLV-encoded tag
// data. It fails with ErrMalformedMessage when no NDEF TLV is present
// or no terminator TLV follows it.
func UnwrapTLV(data []byte) ([]byte, error) {
	offset := 0
	for offset < len(data) {
		switch data[offset] {
		case TLVTypeNull:
			offset++

		case TLVTypeTerminator:
			return nil, fmt.Errorf("%w: terminator before NDEF TLV", ErrMalformedMessage)

		case TLVTypeNDEF:
			valueOff, length, err := parseTLVLength(data, offset)
			if err != nil {
				return nil, err
			}
			if valueOff+length > len(data) {
				return nil, fmt.Errorf("%w: NDEF length %d exceeds data", ErrMalformedMessage, length)
			}
			if err := requireTerminator(data, valueOff+length); err != nil {
				return nil, err
			}
			return data[valueOff : valueOff+length], nil

		default:
			// Lock Control, Memory Control and proprietary TLVs carry
			// a length field and are skipped.
			valueOff, length, err := parseTLVLength(data, offset)
			if err != nil {
				return nil, err
			}
			offset = valueOff + length
		}
	}
	return nil, fmt.Errorf("%w: NDEF TLV not found", ErrMalformedMessage)
}

// parseTLVLength decodes the 1-or-3-byte length field of the TLV at
// offset and returns the value offset and length.
func parseTLVLength(data []byte, offset int) (valueOff, length int, err error) {
	if offset+1 >= len(data) {
		return 0, 0, fmt.Errorf("%w: truncated TLV header", ErrMalformedMessage)
	}
	if data[offset+1] != 0xFF {
		return offset + 2, int(data[offset+1]), nil
	}
	if offset+3 >= len(data) {
		return 0, 0, fmt.Errorf("%w: truncated long TLV length", ErrMalformedMessage)
	}
	return offset + 4, int(binary.BigEndian.Uint16(data[offset+2 : offset+4])), nil
}

// requireTerminator verifies a terminator TLV follows the NDEF value,
// allowing NULL padding in between.
func requireTerminator(data []byte, offset int) error {
	for offset < len(data) {
		switch data[offset] {
		case TLVTypeTerminator:
			return nil
		case TLVTypeNull:
			offset++
		default:
			return fmt.Errorf("%w: no terminator after NDEF TLV", ErrMalformedMessage)
		}
	}
	return fmt.Errorf("%w: no terminator after NDEF TLV", ErrMalformedMessage)
}
