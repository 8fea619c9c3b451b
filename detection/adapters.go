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

package detection

import (
	"strings"

	"go.bug.st/serial/enumerator"
)

// knownAdapters lists USB VID:PID pairs of serial adapter chips that
// PN532 breakout boards commonly ship with.
var knownAdapters = []string{
	"067B:2303", // Prolific PL2303
	"0403:6001", // FTDI FT232
	"10C4:EA60", // Silicon Labs CP210x
	"1A86:7523", // QinHeng CH340
}

// adapterKeywords match product/manufacturer strings of NFC readers
var adapterKeywords = []string{"pn532", "nfc", "rfid", "13.56"}

// isLikelyAdapter checks if a serial port plausibly hosts a PN532
func isLikelyAdapter(port *enumerator.PortDetails) bool {
	vidpid := strings.ToUpper(portVIDPID(port))
	for _, known := range knownAdapters {
		if vidpid == known {
			return true
		}
	}

	product := strings.ToLower(port.Product)
	for _, keyword := range adapterKeywords {
		if strings.Contains(product, keyword) {
			return true
		}
	}

	return false
}

// DefaultBlocklist returns a list of known problematic USB devices
// that should not be probed during detection.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		// Known problematic devices go here as they are discovered.
	}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))

	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}
