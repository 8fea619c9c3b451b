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
	"fmt"

	"github.com/digidex-tech/go-pn532/pkg/ndef"
)

// WriteNDEF TLV-wraps the message and writes it to user memory starting
// at the first user page.
func (t *NTAG) WriteNDEF(ctx context.Context, msg *ndef.Message) error {
	if err := t.requireGeometry(); err != nil {
		return err
	}
	return t.WriteNDEFAt(ctx, msg, t.geo.userStart)
}

// WriteNDEFAt TLV-wraps the message and writes it page by page starting
// at startPage. The final page is zero padded.
func (t *NTAG) WriteNDEFAt(ctx context.Context, msg *ndef.Message, startPage uint8) error {
	raw, err := ndef.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	return t.writeUserBytes(ctx, raw, startPage)
}

// writeUserBytes writes raw bytes into user memory, checking that they fit
// between startPage and the end of the user area. Writes are sequential;
// a failure aborts and leaves earlier pages written.
func (t *NTAG) writeUserBytes(ctx context.Context, raw []byte, startPage uint8) error {
	if err := t.requireGeometry(); err != nil {
		return err
	}
	if startPage < t.geo.userStart || startPage > t.geo.userEnd {
		return fmt.Errorf("%w: page %d outside user memory %d-%d",
			ErrPageRange, startPage, t.geo.userStart, t.geo.userEnd)
	}

	capacity := (int(t.geo.userEnd) - int(startPage) + 1) * PageSize
	if len(raw) > capacity {
		return fmt.Errorf("%w: %d bytes, %d available from page %d",
			ErrOutOfSpace, len(raw), capacity, startPage)
	}

	for off := 0; off < len(raw); off += PageSize {
		chunk := make([]byte, PageSize)
		copy(chunk, raw[off:])

		page := startPage + uint8(off/PageSize)
		if err := t.WritePage(ctx, page, chunk); err != nil {
			return err
		}
	}

	return nil
}

// ReadNDEF reads user memory and decodes the NDEF message from its TLV
// envelope. FAST_READ is tried first; readers that do not relay it fall
// back to page-by-page reads.
func (t *NTAG) ReadNDEF(ctx context.Context) (*ndef.Message, error) {
	raw, err := t.ReadUserMemory(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := ndef.DecodeMessage(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return msg, nil
}

// ReadUserMemory returns the full user memory area
func (t *NTAG) ReadUserMemory(ctx context.Context) ([]byte, error) {
	if err := t.requireGeometry(); err != nil {
		return nil, err
	}

	raw, err := t.FastRead(ctx, t.geo.userStart, t.geo.userEnd)
	if err == nil {
		return raw, nil
	}
	Debugf("fast read failed, falling back to page reads: %v", err)

	pages, err := t.Dump(ctx, t.geo.userStart, t.geo.userEnd)
	if err != nil {
		return nil, err
	}

	raw = make([]byte, 0, len(pages)*PageSize)
	for _, p := range pages {
		raw = append(raw, p...)
	}
	return raw, nil
}
