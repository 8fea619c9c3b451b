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

package pn532

import (
	"context"
	"encoding/hex"
	"fmt"
)

// NTAG native commands, relayed through InDataExchange
const (
	ntagCmdRead       = 0x30
	ntagCmdFastRead   = 0x3A
	ntagCmdWrite      = 0xA2
	ntagCmdPwdAuth    = 0x1B
	ntagCmdGetVersion = 0x60
)

// NTAG memory layout constants
const (
	// PageSize is the number of bytes per NTAG page
	PageSize = 4
	// ccPage holds the NFC Forum capability container
	ccPage = 3

	// A READ returns a 4-page window; only the addressed page is kept.
	readWindowSize = 16

	// FAST_READ page span that fits the 255-byte frame payload limit.
	maxFastReadPages = 58
)

// NTAGType represents the specific NTAG chip variant
type NTAGType int

const (
	// NTAGTypeUnknown is a Type 2 tag whose CC did not match a known variant
	NTAGTypeUnknown NTAGType = iota
	// NTAGType213 is an NTAG213 (144 bytes user memory)
	NTAGType213
	// NTAGType215 is an NTAG215 (504 bytes user memory)
	NTAGType215
	// NTAGType216 is an NTAG216 (888 bytes user memory)
	NTAGType216
)

func (t NTAGType) String() string {
	switch t {
	case NTAGType213:
		return "NTAG213"
	case NTAGType215:
		return "NTAG215"
	case NTAGType216:
		return "NTAG216"
	default:
		return "Unknown"
	}
}

// ntagGeometry describes a variant's page layout. Page indexes are
// inclusive on both ends.
type ntagGeometry struct {
	totalPages  int
	userStart   uint8
	userEnd     uint8
	configStart uint8
	configEnd   uint8
}

// ntagGeometries maps the capability container size byte (CC byte 2,
// total data area / 8) to the chip variant.
var ntagGeometries = map[byte]struct {
	typ NTAGType
	geo ntagGeometry
}{
	0x12: {NTAGType213, ntagGeometry{totalPages: 45, userStart: 4, userEnd: 39, configStart: 41, configEnd: 44}},
	0x3E: {NTAGType215, ntagGeometry{totalPages: 135, userStart: 4, userEnd: 129, configStart: 131, configEnd: 134}},
	0x6D: {NTAGType216, ntagGeometry{totalPages: 231, userStart: 4, userEnd: 225, configStart: 227, configEnd: 230}},
}

// NTAG provides page-level access to an NTAG21x tag through a Device.
// Methods are not safe for concurrent use; the underlying Device
// serializes the wire exchanges.
type NTAG struct {
	device *Device
	uid    []byte

	typ NTAGType
	geo ntagGeometry
	cc  []byte
}

// NewNTAG creates an NTAG handle for a detected tag. Call DetectType
// before operations that need the memory geometry.
func NewNTAG(device *Device, uid []byte) *NTAG {
	u := make([]byte, len(uid))
	copy(u, uid)
	return &NTAG{device: device, uid: u}
}

// UID returns the tag UID in hex
func (t *NTAG) UID() string {
	return hex.EncodeToString(t.uid)
}

// UIDBytes returns the raw tag UID
func (t *NTAG) UIDBytes() []byte {
	return t.uid
}

// Type returns the variant established by DetectType
func (t *NTAG) Type() NTAGType {
	return t.typ
}

// TotalPages returns the page count, or 0 when the variant is unknown
func (t *NTAG) TotalPages() int {
	return t.geo.totalPages
}

// UserMemoryRange returns the inclusive user page range. ok is false when
// the variant is unknown.
func (t *NTAG) UserMemoryRange() (start, end uint8, ok bool) {
	if t.geo.totalPages == 0 {
		return 0, 0, false
	}
	return t.geo.userStart, t.geo.userEnd, true
}

// ConfigPagesRange returns the inclusive configuration page range. ok is
// false when the variant is unknown.
func (t *NTAG) ConfigPagesRange() (start, end uint8, ok bool) {
	if t.geo.totalPages == 0 {
		return 0, 0, false
	}
	return t.geo.configStart, t.geo.configEnd, true
}

// CapabilityContainer reads page 3 and caches it. The CC is factory
// programmed and read-only on NTAG21x, so one read per handle is enough.
func (t *NTAG) CapabilityContainer(ctx context.Context) ([]byte, error) {
	if t.cc != nil {
		return t.cc, nil
	}

	cc, err := t.readPage(ctx, ccPage)
	if err != nil {
		return nil, fmt.Errorf("reading capability container: %w", err)
	}
	t.cc = cc
	return cc, nil
}

// DetectType derives the chip variant from the capability container size
// byte. An unrecognized value yields NTAGTypeUnknown with zero geometry;
// page operations then run without bounds checks.
func (t *NTAG) DetectType(ctx context.Context) (NTAGType, error) {
	cc, err := t.CapabilityContainer(ctx)
	if err != nil {
		return NTAGTypeUnknown, err
	}

	entry, ok := ntagGeometries[cc[2]]
	if !ok {
		t.typ = NTAGTypeUnknown
		t.geo = ntagGeometry{}
		return NTAGTypeUnknown, nil
	}

	t.typ = entry.typ
	t.geo = entry.geo
	return t.typ, nil
}

// checkPage validates a page index against the known geometry. Unknown
// geometry (DetectType not called, or unrecognized variant) skips the
// check so that raw access stays possible.
func (t *NTAG) checkPage(page uint8) error {
	if t.geo.totalPages > 0 && int(page) >= t.geo.totalPages {
		return fmt.Errorf("%w: page %d, tag has %d pages", ErrPageRange, page, t.geo.totalPages)
	}
	return nil
}

// ReadPage reads a single 4-byte page
func (t *NTAG) ReadPage(ctx context.Context, page uint8) ([]byte, error) {
	if err := t.checkPage(page); err != nil {
		return nil, err
	}
	return t.readPage(ctx, page)
}

func (t *NTAG) readPage(ctx context.Context, page uint8) ([]byte, error) {
	resp, err := t.device.SendDataExchange(ctx, []byte{ntagCmdRead, page}, readWindowSize)
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w", page, err)
	}
	if len(resp) < PageSize {
		return nil, fmt.Errorf("reading page %d: %w: got %d bytes", page, ErrInvalidLength, len(resp))
	}

	data := make([]byte, PageSize)
	copy(data, resp[:PageSize])
	return data, nil
}

// WritePage writes a single 4-byte page
func (t *NTAG) WritePage(ctx context.Context, page uint8, data []byte) error {
	if len(data) != PageSize {
		return fmt.Errorf("%w: page writes take exactly %d bytes, got %d", ErrInvalidLength, PageSize, len(data))
	}
	if err := t.checkPage(page); err != nil {
		return err
	}

	params := make([]byte, 0, 2+PageSize)
	params = append(params, ntagCmdWrite, page)
	params = append(params, data...)

	if _, err := t.device.SendDataExchange(ctx, params, 0); err != nil {
		return fmt.Errorf("writing page %d: %w", page, err)
	}
	return nil
}

// FastRead reads the inclusive page range [start, end] with FAST_READ,
// splitting into chunks that fit the PN532 frame limit. Not all readers
// relay FAST_READ; callers should fall back to per-page reads on error.
func (t *NTAG) FastRead(ctx context.Context, start, end uint8) ([]byte, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d after end %d", ErrInvalidParameter, start, end)
	}
	if err := t.checkPage(end); err != nil {
		return nil, err
	}

	data := make([]byte, 0, (int(end)-int(start)+1)*PageSize)
	for first := int(start); first <= int(end); first += maxFastReadPages {
		last := first + maxFastReadPages - 1
		if last > int(end) {
			last = int(end)
		}

		n := (last - first + 1) * PageSize
		resp, err := t.device.SendDataExchange(ctx, []byte{ntagCmdFastRead, uint8(first), uint8(last)}, n)
		if err != nil {
			return nil, fmt.Errorf("fast read pages %d-%d: %w", first, last, err)
		}
		if len(resp) < n {
			return nil, fmt.Errorf("fast read pages %d-%d: %w: got %d bytes", first, last, ErrInvalidLength, len(resp))
		}
		data = append(data, resp[:n]...)
	}

	return data, nil
}

// Dump reads the inclusive page range [start, end] page by page. On a
// read failure it returns the pages read so far together with the error,
// so partially readable tags still yield data.
func (t *NTAG) Dump(ctx context.Context, start, end uint8) ([][]byte, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d after end %d", ErrInvalidParameter, start, end)
	}
	if err := t.checkPage(end); err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, int(end)-int(start)+1)
	for page := int(start); page <= int(end); page++ {
		data, err := t.readPage(ctx, uint8(page))
		if err != nil {
			return pages, err
		}
		pages = append(pages, data)
	}

	return pages, nil
}

// DumpPages streams pages in [start, end] to fn. Returning false from fn
// stops the dump early without error.
func (t *NTAG) DumpPages(ctx context.Context, start, end uint8, fn func(page uint8, data []byte) bool) error {
	if start > end {
		return fmt.Errorf("%w: start %d after end %d", ErrInvalidParameter, start, end)
	}
	if err := t.checkPage(end); err != nil {
		return err
	}

	for page := int(start); page <= int(end); page++ {
		data, err := t.readPage(ctx, uint8(page))
		if err != nil {
			return err
		}
		if !fn(uint8(page), data) {
			return nil
		}
	}

	return nil
}

// NTAGVersion is the GET_VERSION response, identifying the exact silicon
type NTAGVersion struct {
	Vendor      byte
	ProductType byte
	Subtype     byte
	Major       byte
	Minor       byte
	StorageSize byte
	Protocol    byte
}

// GetVersion issues the NTAG GET_VERSION command
func (t *NTAG) GetVersion(ctx context.Context) (*NTAGVersion, error) {
	resp, err := t.device.SendDataExchange(ctx, []byte{ntagCmdGetVersion}, 8)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	if len(resp) < 8 {
		return nil, fmt.Errorf("get version: %w: got %d bytes", ErrInvalidLength, len(resp))
	}

	return &NTAGVersion{
		Vendor:      resp[1],
		ProductType: resp[2],
		Subtype:     resp[3],
		Major:       resp[4],
		Minor:       resp[5],
		StorageSize: resp[6],
		Protocol:    resp[7],
	}, nil
}
