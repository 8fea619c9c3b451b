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

import "time"

// DetectedTag describes a passive target reported by InListPassiveTarget
type DetectedTag struct {
	// DetectedAt is when the tag was detected
	DetectedAt time.Time
	// UID is the tag's unique identifier in hex
	UID string
	// UIDBytes is the raw UID
	UIDBytes []byte
	// ATQ is the answer-to-request (SENS_RES)
	ATQ []byte
	// SAK is the select acknowledge (SEL_RES)
	SAK byte
	// TargetNumber is the logical target assigned by the PN532
	TargetNumber byte
}

// IsNTAG reports whether the SAK marks the target as a Type 2 tag
// (NTAG/Ultralight family answer SAK 0x00).
func (t *DetectedTag) IsNTAG() bool {
	return t.SAK == 0x00
}
