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

// Package ndef implements the NFC Data Exchange Format record and
// message encoding used on NFC Forum Type 2 tags.
package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TNF (Type Name Format) values as defined by NFC Forum.
const (
	TNFEmpty       byte = 0x00 // Empty record
	TNFWellKnown   byte = 0x01 // NFC Forum well-known type
	TNFMedia       byte = 0x02 // Media-type (RFC 2046)
	TNFAbsoluteURI byte = 0x03 // Absolute URI (RFC 3986)
	TNFExternal    byte = 0x04 // NFC Forum external type
	TNFUnknown     byte = 0x05 // Unknown
	TNFUnchanged   byte = 0x06 // Unchanged (for chunked records)
	TNFReserved    byte = 0x07 // Reserved

	tnfMask           byte = 0x07
	flagMB            byte = 0x80
	flagME            byte = 0x40
	flagCF            byte = 0x20
	flagSR            byte = 0x10
	flagIL            byte = 0x08
	shortRecordMaxLen      = 255
)

// Position places a record within a multi-record message and controls
// the MB/ME flags of its header.
type Position int

const (
	// Only marks a record as both first and last in its message.
	Only Position = iota
	// First marks the opening record of a multi-record message.
	First
	// Middle marks a record that neither opens nor closes its message.
	Middle
	// Last marks the closing record of a multi-record message.
	Last
)

// Common errors.
var (
	ErrEmptyMessage    = errors.New("ndef: empty message")
	ErrTruncatedRecord = errors.New("ndef: truncated record data")
	ErrInvalidTNF      = errors.New("ndef: invalid TNF value")
	ErrChunkedRecord   = errors.New("ndef: chunked records not supported")
)

// Record represents a single NDEF record.
type Record struct {
	Type    string
	ID      string
	Payload []byte
	TNF     byte
}

// Marshal serializes the record with the flag bits implied by pos.
// SR is set when the payload is shorter than 256 bytes, IL when an ID
// is present.
func (r *Record) Marshal(pos Position) ([]byte, error) {
	if r.TNF > TNFReserved {
		return nil, ErrInvalidTNF
	}

	typeBytes := []byte(r.Type)
	idBytes := []byte(r.ID)
	payloadLen := len(r.Payload)

	flags := r.TNF & tnfMask
	if pos == Only || pos == First {
		flags |= flagMB
	}
	if pos == Only || pos == Last {
		flags |= flagME
	}
	if payloadLen <= shortRecordMaxLen {
		flags |= flagSR
	}
	if len(idBytes) > 0 {
		flags |= flagIL
	}

	header := []byte{flags, byte(len(typeBytes))}
	if payloadLen <= shortRecordMaxLen {
		header = append(header, byte(payloadLen))
	} else {
		lenBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBytes, uint32(payloadLen)) //nolint:gosec // len() is non-negative
		header = append(header, lenBytes...)
	}
	if len(idBytes) > 0 {
		header = append(header, byte(len(idBytes)))
	}

	result := make([]byte, 0, len(header)+len(typeBytes)+len(idBytes)+payloadLen)
	result = append(result, header...)
	result = append(result, typeBytes...)
	result = append(result, idBytes...)
	result = append(result, r.Payload...)
	return result, nil
}

// parsedRecord carries the flag state alongside the decoded record.
type parsedRecord struct {
	rec Record
	mb  bool
	me  bool
}

// unmarshalRecord parses one record starting at data[0] and returns the
// number of bytes consumed.
func unmarshalRecord(data []byte) (*parsedRecord, int, error) {
	if len(data) < 3 {
		return nil, 0, ErrTruncatedRecord
	}

	flags := data[0]
	if flags&flagCF != 0 {
		return nil, 0, ErrChunkedRecord
	}
	tnf := flags & tnfMask
	if tnf > TNFUnchanged {
		return nil, 0, ErrInvalidTNF
	}

	isShort := flags&flagSR != 0
	hasID := flags&flagIL != 0
	typeLen := int(data[1])
	offset := 2

	var payloadLen int
	if isShort {
		if offset >= len(data) {
			return nil, 0, ErrTruncatedRecord
		}
		payloadLen = int(data[offset])
		offset++
	} else {
		if offset+4 > len(data) {
			return nil, 0, ErrTruncatedRecord
		}
		payloadLen = int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}

	var idLen int
	if hasID {
		if offset >= len(data) {
			return nil, 0, ErrTruncatedRecord
		}
		idLen = int(data[offset])
		offset++
	}

	if offset+typeLen+idLen+payloadLen > len(data) {
		return nil, 0, ErrTruncatedRecord
	}

	p := &parsedRecord{
		rec: Record{TNF: tnf},
		mb:  flags&flagMB != 0,
		me:  flags&flagME != 0,
	}
	if typeLen > 0 {
		p.rec.Type = string(data[offset : offset+typeLen])
		offset += typeLen
	}
	if idLen > 0 {
		p.rec.ID = string(data[offset : offset+idLen])
		offset += idLen
	}
	if payloadLen > 0 {
		p.rec.Payload = make([]byte, payloadLen)
		copy(p.rec.Payload, data[offset:offset+payloadLen])
		offset += payloadLen
	}
	return p, offset, nil
}

// Message represents an NDEF message containing one or more records.
type Message struct {
	Records []Record
}

// Marshal serializes all records, assigning positions from record order.
func (m *Message) Marshal() ([]byte, error) {
	if len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}

	var result []byte
	for i := range m.Records {
		pos := Middle
		switch {
		case len(m.Records) == 1:
			pos = Only
		case i == 0:
			pos = First
		case i == len(m.Records)-1:
			pos = Last
		}
		data, err := m.Records[i].Marshal(pos)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		result = append(result, data...)
	}
	return result, nil
}

// Unmarshal parses a serialized record set and returns the number of
// bytes consumed. Parsing stops after the record carrying the ME flag.
func (m *Message) Unmarshal(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyMessage
	}

	m.Records = nil
	offset := 0
	for offset < len(data) {
		p, n, err := unmarshalRecord(data[offset:])
		if err != nil {
			return offset, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		m.Records = append(m.Records, p.rec)
		offset += n
		if p.me {
			break
		}
	}

	if len(m.Records) == 0 {
		return 0, ErrEmptyMessage
	}
	return offset, nil
}
