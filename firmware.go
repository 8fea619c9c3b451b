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

import "fmt"

// Firmware support flags (GetFirmwareVersion response, Support byte)
const (
	supportISO14443A = 0x01
	supportISO14443B = 0x02
	supportISO18092  = 0x04
)

// FirmwareVersion describes the PN532 IC and firmware revision
type FirmwareVersion struct {
	// Version is the firmware revision, e.g. "1.6"
	Version string
	// IC is the chip identifier, 0x32 for the PN532
	IC byte
	// SupportISO14443A indicates ISO/IEC 14443 Type A support
	SupportISO14443A bool
	// SupportISO14443B indicates ISO/IEC 14443 Type B support
	SupportISO14443B bool
	// SupportISO18092 indicates ISO/IEC 18092 (NFC) support
	SupportISO18092 bool
}

func (v *FirmwareVersion) String() string {
	return fmt.Sprintf("PN5%02X v%s", v.IC, v.Version)
}

// parseFirmwareVersion decodes a GetFirmwareVersion response payload
// (IC, Ver, Rev, Support).
func parseFirmwareVersion(resp []byte) (*FirmwareVersion, error) {
	if len(resp) < 4 {
		return nil, fmt.Errorf("GetFirmwareVersion: %w: short response", ErrFrameCorrupted)
	}

	return &FirmwareVersion{
		IC:               resp[0],
		Version:          fmt.Sprintf("%d.%d", resp[1], resp[2]),
		SupportISO14443A: resp[3]&supportISO14443A != 0,
		SupportISO14443B: resp[3]&supportISO14443B != 0,
		SupportISO18092:  resp[3]&supportISO18092 != 0,
	}, nil
}
