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

package pn532_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pn532 "github.com/digidex-tech/go-pn532"
	"github.com/digidex-tech/go-pn532/internal/pn532test"
)

var testUID = []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}

func newTestNTAG(t *testing.T, mem *pn532test.TagMemory) (*pn532.NTAG, *pn532test.Simulator) {
	t.Helper()
	device, sim := newTestDevice(t)
	sim.InstallTag(mem)
	return pn532.NewNTAG(device, testUID), sim
}

func TestNTAGDetectType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		mem           *pn532test.TagMemory
		wantType      pn532.NTAGType
		wantTotal     int
		wantUserStart uint8
		wantUserEnd   uint8
		wantCfgStart  uint8
		wantCfgEnd    uint8
	}{
		{
			name:          "NTAG213",
			mem:           pn532test.NewNTAG213Memory(),
			wantType:      pn532.NTAGType213,
			wantTotal:     45,
			wantUserStart: 4, wantUserEnd: 39,
			wantCfgStart: 41, wantCfgEnd: 44,
		},
		{
			name:          "NTAG215",
			mem:           pn532test.NewNTAG215Memory(),
			wantType:      pn532.NTAGType215,
			wantTotal:     135,
			wantUserStart: 4, wantUserEnd: 129,
			wantCfgStart: 131, wantCfgEnd: 134,
		},
		{
			name:          "NTAG216",
			mem:           pn532test.NewNTAG216Memory(),
			wantType:      pn532.NTAGType216,
			wantTotal:     231,
			wantUserStart: 4, wantUserEnd: 225,
			wantCfgStart: 227, wantCfgEnd: 230,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tag, _ := newTestNTAG(t, tt.mem)

			typ, err := tag.DetectType(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantType.String(), tt.name)
			assert.Equal(t, tt.wantTotal, tag.TotalPages())

			start, end, ok := tag.UserMemoryRange()
			require.True(t, ok)
			assert.Equal(t, tt.wantUserStart, start)
			assert.Equal(t, tt.wantUserEnd, end)

			start, end, ok = tag.ConfigPagesRange()
			require.True(t, ok)
			assert.Equal(t, tt.wantCfgStart, start)
			assert.Equal(t, tt.wantCfgEnd, end)
		})
	}
}

func TestNTAGDetectTypeUnknown(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewTagMemory(16, 0x42)
	tag, _ := newTestNTAG(t, mem)

	typ, err := tag.DetectType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pn532.NTAGTypeUnknown, typ)
	assert.Equal(t, "Unknown", typ.String())
	assert.Equal(t, 0, tag.TotalPages())

	_, _, ok := tag.UserMemoryRange()
	assert.False(t, ok)
	_, _, ok = tag.ConfigPagesRange()
	assert.False(t, ok)
}

func TestNTAGCapabilityContainerCached(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewNTAG213Memory()
	tag, sim := newTestNTAG(t, mem)

	cc, err := tag.CapabilityContainer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE1, 0x10, 0x12, 0x00}, cc)

	exchanges := len(sim.Commands)
	_, err = tag.CapabilityContainer(context.Background())
	require.NoError(t, err)
	assert.Len(t, sim.Commands, exchanges, "second read must come from the cache")
}

func TestNTAGReadPageReturnsSinglePage(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewNTAG213Memory()
	mem.SetBytes(5, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	mem.SetBytes(6, []byte{0x11, 0x22, 0x33, 0x44})
	tag, _ := newTestNTAG(t, mem)

	// the READ command returns a 16-byte window; only page 5 is kept
	data, err := tag.ReadPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, data)
}

func TestNTAGPageBounds(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())
	_, err := tag.DetectType(context.Background())
	require.NoError(t, err)

	_, err = tag.ReadPage(context.Background(), 45)
	assert.ErrorIs(t, err, pn532.ErrPageRange)

	err = tag.WritePage(context.Background(), 45, make([]byte, 4))
	assert.ErrorIs(t, err, pn532.ErrPageRange)

	// last valid page is fine
	_, err = tag.ReadPage(context.Background(), 44)
	assert.NoError(t, err)
}

func TestNTAGWritePageLength(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())

	err := tag.WritePage(context.Background(), 4, []byte{0x01, 0x02})
	assert.ErrorIs(t, err, pn532.ErrInvalidLength)

	err = tag.WritePage(context.Background(), 4, make([]byte, 5))
	assert.ErrorIs(t, err, pn532.ErrInvalidLength)
}

func TestNTAGWritePage(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewNTAG213Memory()
	tag, _ := newTestNTAG(t, mem)

	require.NoError(t, tag.WritePage(context.Background(), 4, []byte{0xDE, 0xAD, 0xBE, 0xEF}))
	require.Len(t, mem.Writes, 1)
	assert.Equal(t, uint8(4), mem.Writes[0].Page)
	assert.Equal(t, [4]byte{0xDE, 0xAD, 0xBE, 0xEF}, mem.Writes[0].Data)
}

func TestNTAGDumpPartialResult(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewNTAG213Memory()
	for p := uint8(0); p < 20; p++ {
		mem.SetBytes(p, []byte{p, p, p, p})
	}
	mem.FailPages[10] = 0x01
	tag, _ := newTestNTAG(t, mem)

	pages, err := tag.Dump(context.Background(), 0, 20)
	require.Error(t, err)
	require.Len(t, pages, 10, "pages before the failure must be returned")
	assert.Equal(t, []byte{9, 9, 9, 9}, pages[9])
}

func TestNTAGDumpPagesEarlyStop(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())

	var visited []uint8
	err := tag.DumpPages(context.Background(), 0, 10, func(page uint8, _ []byte) bool {
		visited = append(visited, page)
		return page < 3
	})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2, 3, 4}, visited)
}

func TestNTAGFastRead(t *testing.T) {
	t.Parallel()

	mem := pn532test.NewNTAG215Memory()
	mem.SetBytes(4, []byte("abcdefgh"))
	tag, sim := newTestNTAG(t, mem)
	_, err := tag.DetectType(context.Background())
	require.NoError(t, err)

	before := countByte(sim.Commands, 0x40)
	data, err := tag.FastRead(context.Background(), 4, 129)
	require.NoError(t, err)
	assert.Len(t, data, 126*4)
	assert.Equal(t, []byte("abcdefgh"), data[:8])

	// 126 pages split into chunks of at most 58
	assert.Equal(t, 3, countByte(sim.Commands, 0x40)-before)
}

func TestNTAGFastReadBadRange(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())

	_, err := tag.FastRead(context.Background(), 10, 5)
	assert.ErrorIs(t, err, pn532.ErrInvalidParameter)
}

func TestNTAGGetVersion(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG215Memory())

	v, err := tag.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), v.Vendor)
	assert.Equal(t, byte(0x11), v.StorageSize)
}

func TestNTAGUID(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())
	assert.Equal(t, "04123456789abc", tag.UID())
	assert.Equal(t, testUID, tag.UIDBytes())
}

func countByte(haystack []byte, needle byte) int {
	n := 0
	for _, b := range haystack {
		if b == needle {
			n++
		}
	}
	return n
}
