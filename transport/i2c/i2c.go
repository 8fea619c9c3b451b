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

// Package i2c implements the pn532.Transport interface over an I2C bus
// using periph.io. Every read from the PN532 is prefixed with a ready
// status byte which this package strips.
package i2c

import (
	"fmt"
	"strings"
	"time"

	"github.com/digidex-tech/go-pn532"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// pn532Addr is the fixed 7-bit I2C address of the PN532
	// (datasheet gives 0x48 in 8-bit form: 0x48 >> 1 = 0x24).
	pn532Addr = 0x24

	// readyByte prefixes every I2C read when the device has data
	readyByte = 0x01

	pollInterval = 5 * time.Millisecond
)

// Transport implements the pn532.Transport interface for I2C communication
type Transport struct {
	bus     i2c.BusCloser
	dev     *i2c.Dev
	busName string
	closed  bool
}

// parseBusName accepts "/dev/i2c-1:0x24" (detection format) or a bare
// bus name. The address suffix is ignored; the PN532 address is fixed.
func parseBusName(name string) string {
	if idx := strings.LastIndex(name, ":"); idx > 0 {
		return name[:idx]
	}
	return name
}

// New creates a new I2C transport on the given bus
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(parseBusName(busName))
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	return &Transport{
		bus:     bus,
		dev:     &i2c.Dev{Addr: pn532Addr, Bus: bus},
		busName: busName,
	}, nil
}

// WriteData writes a frame to the device
func (t *Transport) WriteData(data []byte) error {
	if t.closed {
		return pn532.NewTransportError("i2c.WriteData", t.busName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	if err := t.dev.Tx(data, nil); err != nil {
		return pn532.NewTransportError("i2c.WriteData", t.busName, err, pn532.ErrorTypeTransient)
	}
	return nil
}

// WaitReady polls the ready status byte until the device has data
func (t *Transport) WaitReady(timeout time.Duration) error {
	if t.closed {
		return pn532.NewTransportError("i2c.WaitReady", t.busName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	deadline := time.Now().Add(timeout)
	status := make([]byte, 1)
	for {
		// A NACK while the chip is busy surfaces as an error on some
		// adapters; treat it like "not ready" and keep polling.
		if err := t.dev.Tx(nil, status); err == nil && status[0] == readyByte {
			return nil
		}
		if time.Now().After(deadline) {
			return pn532.NewTimeoutError("i2c.WaitReady", t.busName)
		}
		time.Sleep(pollInterval)
	}
}

// ReadData reads n payload bytes. The bus delivers a leading ready
// status byte first, which is validated and stripped.
func (t *Transport) ReadData(n int) ([]byte, error) {
	if t.closed {
		return nil, pn532.NewTransportError("i2c.ReadData", t.busName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	buf := make([]byte, n+1)
	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, pn532.NewTransportError("i2c.ReadData", t.busName, err, pn532.ErrorTypeTransient)
	}
	if buf[0] != readyByte {
		return nil, pn532.NewTransportNotReadyError("i2c.ReadData", t.busName)
	}
	return buf[1:], nil
}

// Wakeup is a no-op: an addressed I2C transaction wakes the PN532.
func (*Transport) Wakeup() error {
	return nil
}

// Reset is a no-op; the I2C link exposes no reset mechanism
func (*Transport) Reset() error {
	return nil
}

// SetTimeout validates the requested timeout. I2C reads complete in a
// single bus transaction once WaitReady reports the chip ready, so the
// value itself has nothing to bound; waiting is governed by the timeout
// passed to WaitReady.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return pn532.NewTransportError("i2c.SetTimeout", t.busName,
			pn532.ErrInvalidParameter, pn532.ErrorTypePermanent)
	}
	return nil
}

// Close closes the I2C bus
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.bus.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}
