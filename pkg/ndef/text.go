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
	"errors"
	"fmt"
)

// TextRecordType is the well-known type field of a Text record.
const TextRecordType = "T"

const (
	textUTF16Flag     = 0x80
	textLangCodeMask  = 0x3F
	maxLanguageLength = 63 // status byte reserves 6 bits for the length
)

// Text record errors.
var (
	ErrTextPayloadTooShort  = errors.New("ndef: text payload too short")
	ErrTextLanguageTooLong  = errors.New("ndef: language code too long")
	ErrTextPayloadTruncated = errors.New("ndef: text payload truncated")
)

// TextRecord represents decoded text record data.
type TextRecord struct {
	Text     string
	Language string
	UTF16    bool // true if UTF-16 encoded (rare)
}

// NewTextRecord creates an NDEF Text record. The language parameter is
// an IANA language code (e.g. "en", "en-US"); empty defaults to "en".
func NewTextRecord(text, language string) Record {
	payload, _ := EncodeTextPayload(text, truncateLanguage(language))
	return Record{
		TNF:     TNFWellKnown,
		Type:    TextRecordType,
		Payload: payload,
	}
}

func truncateLanguage(language string) string {
	if len(language) > maxLanguageLength {
		return language[:maxLanguageLength]
	}
	return language
}

// EncodeTextPayload builds a text record payload: status byte, language
// code, then UTF-8 text.
func EncodeTextPayload(text, language string) ([]byte, error) {
	if len(language) > maxLanguageLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrTextLanguageTooLong, len(language))
	}
	if language == "" {
		language = "en"
	}

	payload := make([]byte, 1+len(language)+len(text))
	payload[0] = byte(len(language))
	copy(payload[1:], language)
	copy(payload[1+len(language):], text)
	return payload, nil
}

// DecodeTextPayload extracts the text content from a Text record payload.
func DecodeTextPayload(payload []byte) (*TextRecord, error) {
	if len(payload) < 1 {
		return nil, ErrTextPayloadTooShort
	}

	status := payload[0]
	langLen := int(status & textLangCodeMask)
	if len(payload) < 1+langLen {
		return nil, ErrTextPayloadTruncated
	}

	return &TextRecord{
		Text:     string(payload[1+langLen:]),
		Language: string(payload[1 : 1+langLen]),
		UTF16:    status&textUTF16Flag != 0,
	}, nil
}
