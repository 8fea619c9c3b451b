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

// Package uart implements the pn532.Transport interface over a serial
// port, typically a USB-to-UART adapter at 115200 baud.
package uart

import (
	"fmt"
	"runtime"
	"time"

	"github.com/digidex-tech/go-pn532"
	"go.bug.st/serial"
)

const (
	baudRate = 115200

	// pollInterval is how long each poll for incoming bytes blocks.
	pollInterval = 10 * time.Millisecond
)

// wakeupSequence is the long preamble that brings the PN532 out of
// low-power mode on HSU. The trailing zeros satisfy the chip's wakeup
// timing before the next real frame.
var wakeupSequence = []byte{
	0x55, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Transport implements the pn532.Transport interface for UART communication
type Transport struct {
	port     serial.Port
	portName string
	timeout  time.Duration
	closed   bool

	// pending holds bytes consumed by WaitReady ahead of ReadData
	pending []byte
}

// readTimeout returns the per-poll read timeout. Windows serial drivers
// need a larger value to avoid spurious empty reads.
func readTimeout() time.Duration {
	if runtime.GOOS == "windows" {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// New creates a new UART transport on the given serial port
func New(portName string) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(readTimeout()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	return &Transport{
		port:     port,
		portName: portName,
		timeout:  time.Second,
	}, nil
}

// WriteData writes a frame to the serial port after dropping any stale
// bytes left over from a previous exchange.
func (t *Transport) WriteData(data []byte) error {
	if t.closed {
		return pn532.NewTransportError("uart.WriteData", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	t.pending = nil
	if err := t.port.ResetInputBuffer(); err != nil {
		return pn532.NewTransportError("uart.WriteData", t.portName, err, pn532.ErrorTypeTransient)
	}

	n, err := t.port.Write(data)
	if err != nil {
		return pn532.NewTransportError("uart.WriteData", t.portName, err, pn532.ErrorTypeTransient)
	}
	if n != len(data) {
		return pn532.NewTransportWriteError("uart.WriteData", t.portName)
	}
	return nil
}

// WaitReady polls for the first byte of the device's reply. The byte is
// buffered and handed back by the next ReadData.
func (t *Transport) WaitReady(timeout time.Duration) error {
	if t.closed {
		return pn532.NewTransportError("uart.WaitReady", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}
	if len(t.pending) > 0 {
		return nil
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return pn532.NewTransportError("uart.WaitReady", t.portName, err, pn532.ErrorTypeTransient)
		}
		if n > 0 {
			t.pending = append(t.pending, buf[:n]...)
			return nil
		}
		if time.Now().After(deadline) {
			return pn532.NewTimeoutError("uart.WaitReady", t.portName)
		}
		time.Sleep(pollInterval)
	}
}

// ReadData reads up to n bytes, serving bytes buffered by WaitReady
// first. Returns short data when the device sends less than requested
// within the timeout; the caller's frame parser knows the real length.
func (t *Transport) ReadData(n int) ([]byte, error) {
	if t.closed {
		return nil, pn532.NewTransportError("uart.ReadData", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	out := make([]byte, 0, n)
	if len(t.pending) > 0 {
		take := len(t.pending)
		if take > n {
			take = n
		}
		out = append(out, t.pending[:take]...)
		t.pending = t.pending[take:]
	}

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, n)
	for len(out) < n {
		got, err := t.port.Read(buf[:n-len(out)])
		if err != nil {
			return nil, pn532.NewTransportError("uart.ReadData", t.portName, err, pn532.ErrorTypeTransient)
		}
		if got > 0 {
			out = append(out, buf[:got]...)
			continue
		}
		// Read timed out with no data. If we have something, the
		// device is done sending; otherwise keep polling.
		if len(out) > 0 || time.Now().After(deadline) {
			break
		}
	}

	if len(out) == 0 {
		return nil, pn532.NewTransportReadError("uart.ReadData", t.portName)
	}
	return out, nil
}

// Wakeup sends the HSU wakeup preamble
func (t *Transport) Wakeup() error {
	if t.closed {
		return pn532.NewTransportError("uart.Wakeup", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	if _, err := t.port.Write(wakeupSequence); err != nil {
		return pn532.NewTransportError("uart.Wakeup", t.portName, err, pn532.ErrorTypeTransient)
	}
	// Give the chip time to stabilize before the first frame
	time.Sleep(2 * time.Millisecond)
	return t.port.ResetInputBuffer()
}

// Reset clears the serial buffers. The HSU link has no hardware reset.
func (t *Transport) Reset() error {
	if t.closed {
		return pn532.NewTransportError("uart.Reset", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}
	t.pending = nil
	if err := t.port.ResetInputBuffer(); err != nil {
		return pn532.NewTransportError("uart.Reset", t.portName, err, pn532.ErrorTypeTransient)
	}
	return t.port.ResetOutputBuffer()
}

// SetTimeout sets the overall read timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return pn532.NewTransportError("uart.SetTimeout", t.portName,
			pn532.ErrInvalidParameter, pn532.ErrorTypePermanent)
	}
	t.timeout = timeout
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close UART port: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportUART
}
