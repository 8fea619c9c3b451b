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

// Transport moves raw bytes to and from a PN532 over a physical bus.
// Implementations handle only bus-specific concerns (byte framing quirks,
// ready polling, wakeup sequences); frame construction, checksums and
// command sequencing live in Device and are shared by all transports.
type Transport interface {
	// WriteData writes a fully built frame to the device.
	WriteData(data []byte) error

	// ReadData reads up to n bytes from the device. Transports with a
	// bus-level status prefix (I2C ready byte, SPI data-read preamble)
	// strip it before returning.
	ReadData(n int) ([]byte, error)

	// WaitReady blocks until the device signals it has data to send,
	// or the timeout elapses.
	WaitReady(timeout time.Duration) error

	// Wakeup brings the device out of low-power mode. Called once
	// before the first command; a no-op on buses that wake implicitly.
	Wakeup() error

	// Reset performs a transport-level reset if the bus supports one.
	Reset() error

	// SetTimeout sets the default I/O timeout for the transport
	SetTimeout(timeout time.Duration) error

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)
