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

// PN532 command codes (PN532 User Manual section 7)
const (
	cmdDiagnose                 = 0x00
	cmdGetFirmwareVersion       = 0x02
	cmdGetGeneralStatus         = 0x04
	cmdReadRegister             = 0x06
	cmdWriteRegister            = 0x08
	cmdSAMConfiguration         = 0x14
	cmdPowerDown                = 0x16
	cmdRFConfiguration          = 0x32
	cmdInDataExchange           = 0x40
	cmdInCommunicateThru        = 0x42
	cmdInListPassiveTarget      = 0x4A
	cmdInRelease                = 0x52
	cmdInSelect                 = 0x54
)

// RFConfiguration items
const (
	rfItemMaxRetries = 0x05
)

// Baud rate / modulation selectors for InListPassiveTarget
const (
	// BaudISO14443A selects 106 kbps type A targets (MIFARE, NTAG).
	BaudISO14443A byte = 0x00
	// BaudFeliCa212 selects 212 kbps FeliCa targets.
	BaudFeliCa212 byte = 0x01
	// BaudFeliCa424 selects 424 kbps FeliCa targets.
	BaudFeliCa424 byte = 0x02
	// BaudISO14443B selects 106 kbps type B targets.
	BaudISO14443B byte = 0x03
)

// commandName maps command codes to names for error messages and tracing.
func commandName(cmd byte) string {
	switch cmd {
	case cmdDiagnose:
		return "Diagnose"
	case cmdGetFirmwareVersion:
		return "GetFirmwareVersion"
	case cmdGetGeneralStatus:
		return "GetGeneralStatus"
	case cmdReadRegister:
		return "ReadRegister"
	case cmdWriteRegister:
		return "WriteRegister"
	case cmdSAMConfiguration:
		return "SAMConfiguration"
	case cmdPowerDown:
		return "PowerDown"
	case cmdRFConfiguration:
		return "RFConfiguration"
	case cmdInDataExchange:
		return "InDataExchange"
	case cmdInCommunicateThru:
		return "InCommunicateThru"
	case cmdInListPassiveTarget:
		return "InListPassiveTarget"
	case cmdInRelease:
		return "InRelease"
	case cmdInSelect:
		return "InSelect"
	default:
		return "Unknown"
	}
}
