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

package pn532test

// TagMemory emulates the paged memory of an NTAG21x behind the
// simulator's InDataExchange handler.
type TagMemory struct {
	// Pages is the full tag memory, 4 bytes per page
	Pages [][4]byte

	// FailPages maps page numbers to a PN532 status code returned when
	// the page is read. Used to exercise partial dump behavior.
	FailPages map[uint8]byte

	// Password and PACK for PWD_AUTH emulation
	Password [4]byte
	PACK     [2]byte

	// DisableFastRead answers FAST_READ with "command not supported",
	// like readers that refuse to relay it
	DisableFastRead bool

	// Writes records every page write as (page, data)
	Writes []PageWrite
}

// PageWrite is one recorded WRITE command
type PageWrite struct {
	Page uint8
	Data [4]byte
}

// NewTagMemory creates tag memory of the given page count with the
// capability container set for the given size byte (page 3, byte 2).
func NewTagMemory(pages int, ccSize byte) *TagMemory {
	m := &TagMemory{
		Pages:     make([][4]byte, pages),
		FailPages: make(map[uint8]byte),
	}
	if pages > 3 {
		m.Pages[3] = [4]byte{0xE1, 0x10, ccSize, 0x00}
	}
	return m
}

// NewNTAG213Memory creates a blank NTAG213-shaped tag
func NewNTAG213Memory() *TagMemory { return NewTagMemory(45, 0x12) }

// NewNTAG215Memory creates a blank NTAG215-shaped tag
func NewNTAG215Memory() *TagMemory { return NewTagMemory(135, 0x3E) }

// NewNTAG216Memory creates a blank NTAG216-shaped tag
func NewNTAG216Memory() *TagMemory { return NewTagMemory(231, 0x6D) }

// SetBytes writes raw bytes into memory starting at the given page
func (m *TagMemory) SetBytes(page uint8, data []byte) {
	for i, b := range data {
		p := int(page) + i/4
		if p >= len(m.Pages) {
			return
		}
		m.Pages[p][i%4] = b
	}
}

// Bytes returns the flattened memory of an inclusive page range
func (m *TagMemory) Bytes(start, end uint8) []byte {
	out := make([]byte, 0, (int(end)-int(start)+1)*4)
	for p := int(start); p <= int(end) && p < len(m.Pages); p++ {
		out = append(out, m.Pages[p][:]...)
	}
	return out
}

// statusOK prefixes a tag response with a zero InDataExchange status
func statusOK(data []byte) []byte {
	return append([]byte{0x00}, data...)
}

// statusErr builds an InDataExchange response with a failure status
func statusErr(code byte) []byte {
	return []byte{code}
}

// InstallTag wires tag memory into the simulator's InDataExchange
// handler, emulating the NTAG READ, WRITE, FAST_READ, PWD_AUTH and
// GET_VERSION commands.
func (s *Simulator) InstallTag(m *TagMemory) {
	s.Handle(0x40, func(params []byte) ([]byte, bool) {
		// params[0] is the logical target number
		if len(params) < 2 {
			return statusErr(0x27), true
		}
		return m.execute(params[1:]), true
	})
}

func (m *TagMemory) execute(cmd []byte) []byte {
	switch cmd[0] {
	case 0x30: // READ: four pages, wrapping at the end of memory
		if len(cmd) < 2 {
			return statusErr(0x27)
		}
		page := cmd[1]
		if int(page) >= len(m.Pages) {
			return statusErr(0x01)
		}
		if code, fail := m.FailPages[page]; fail {
			return statusErr(code)
		}
		out := make([]byte, 0, 16)
		for i := 0; i < 4; i++ {
			p := (int(page) + i) % len(m.Pages)
			out = append(out, m.Pages[p][:]...)
		}
		return statusOK(out)

	case 0xA2: // WRITE
		if len(cmd) < 6 {
			return statusErr(0x27)
		}
		page := cmd[1]
		if int(page) >= len(m.Pages) {
			return statusErr(0x01)
		}
		var data [4]byte
		copy(data[:], cmd[2:6])
		m.Pages[page] = data
		m.Writes = append(m.Writes, PageWrite{Page: page, Data: data})
		return statusOK(nil)

	case 0x3A: // FAST_READ
		if m.DisableFastRead {
			return statusErr(0x81)
		}
		if len(cmd) < 3 {
			return statusErr(0x27)
		}
		start, end := cmd[1], cmd[2]
		if start > end || int(end) >= len(m.Pages) {
			return statusErr(0x01)
		}
		for p := start; p <= end; p++ {
			if code, fail := m.FailPages[p]; fail {
				return statusErr(code)
			}
		}
		return statusOK(m.Bytes(start, end))

	case 0x1B: // PWD_AUTH
		if len(cmd) < 5 {
			return statusErr(0x27)
		}
		var pwd [4]byte
		copy(pwd[:], cmd[1:5])
		if pwd != m.Password {
			return statusErr(0x14)
		}
		return statusOK(m.PACK[:])

	case 0x60: // GET_VERSION for an NTAG215
		return statusOK([]byte{0x00, 0x04, 0x04, 0x02, 0x01, 0x00, 0x11, 0x03})

	default:
		return statusErr(0x81)
	}
}
