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
	"github.com/digidex-tech/go-pn532/pkg/ndef"
)

func TestWriteNDEFPagination(t *testing.T) {
	t.Parallel()

	tag, mem := newDetectedNTAG213(t)

	// "tel:12" encodes to a 10-byte TLV envelope
	msg := &ndef.Message{Records: []ndef.Record{ndef.NewURIRecord("tel:12")}}
	require.NoError(t, tag.WriteNDEFAt(context.Background(), msg, 5))

	require.Len(t, mem.Writes, 3, "10 bytes must take exactly 3 page writes")
	assert.Equal(t, uint8(5), mem.Writes[0].Page)
	assert.Equal(t, uint8(6), mem.Writes[1].Page)
	assert.Equal(t, uint8(7), mem.Writes[2].Page)

	// TLV header lands at the start, terminator zero-padded at the end
	assert.Equal(t, [4]byte{0x03, 0x07, 0xD1, 0x01}, mem.Writes[0].Data)
	assert.Equal(t, byte(0xFE), mem.Writes[2].Data[1])
	assert.Equal(t, [2]byte{0x00, 0x00}, [2]byte{mem.Writes[2].Data[2], mem.Writes[2].Data[3]})
}

func TestWriteNDEFBounds(t *testing.T) {
	t.Parallel()

	tag, _ := newDetectedNTAG213(t)
	msg := &ndef.Message{Records: []ndef.Record{ndef.NewURIRecord("tel:12")}}

	err := tag.WriteNDEFAt(context.Background(), msg, 3)
	assert.ErrorIs(t, err, pn532.ErrPageRange)

	err = tag.WriteNDEFAt(context.Background(), msg, 40)
	assert.ErrorIs(t, err, pn532.ErrPageRange)

	// 10 bytes do not fit in the last two user pages
	err = tag.WriteNDEFAt(context.Background(), msg, 38)
	assert.ErrorIs(t, err, pn532.ErrOutOfSpace)
}

func TestWriteNDEFRequiresKnownType(t *testing.T) {
	t.Parallel()

	tag, _ := newTestNTAG(t, pn532test.NewNTAG213Memory())
	msg := &ndef.Message{Records: []ndef.Record{ndef.NewURIRecord("tel:12")}}

	err := tag.WriteNDEF(context.Background(), msg)
	assert.ErrorIs(t, err, pn532.ErrUnknownTagType)
}

func TestWriteThenReadNDEF(t *testing.T) {
	t.Parallel()

	tag, _ := newDetectedNTAG213(t)

	msg := &ndef.Message{Records: []ndef.Record{
		ndef.NewURIRecord("https://example.com"),
		ndef.NewTextRecord("hello", "en"),
	}}
	require.NoError(t, tag.WriteNDEF(context.Background(), msg))

	got, err := tag.ReadNDEF(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 2)

	uri, err := ndef.DecodeURIPayload(got.Records[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", uri)

	text, err := ndef.DecodeTextPayload(got.Records[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", text.Text)
}

func TestReadNDEFFallsBackToPageReads(t *testing.T) {
	t.Parallel()

	tag, mem := newDetectedNTAG213(t)
	mem.DisableFastRead = true

	msg := &ndef.Message{Records: []ndef.Record{ndef.NewTextRecord("fallback", "en")}}
	require.NoError(t, tag.WriteNDEF(context.Background(), msg))

	got, err := tag.ReadNDEF(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 1)

	text, err := ndef.DecodeTextPayload(got.Records[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "fallback", text.Text)
}

func TestReadNDEFEmptyTag(t *testing.T) {
	t.Parallel()

	tag, _ := newDetectedNTAG213(t)

	_, err := tag.ReadNDEF(context.Background())
	assert.ErrorIs(t, err, ndef.ErrMalformedMessage)
}
