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

// Package spi implements the pn532.Transport interface over an SPI bus
// using periph.io. The PN532 talks LSB-first on SPI while controllers
// are MSB-first, so every byte crosses a bit reversal on the way in
// and out.
package spi

import (
	"fmt"
	"time"

	"github.com/digidex-tech/go-pn532"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// SPI protocol prefixes (already bit-reversed on the wire)
	spiStatRead  = 0x02
	spiDataWrite = 0x01
	spiDataRead  = 0x03
	spiReady     = 0x01

	defaultFreq = 1 * physic.MegaHertz
	mode        = spi.Mode0 // CPOL=0, CPHA=0; LSB first handled by bit reversal

	pollInterval = 5 * time.Millisecond
)

// Transport implements the pn532.Transport interface for SPI communication
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	portName string
	closed   bool
}

// New creates a new SPI transport on the given port
func New(portName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(defaultFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	return &Transport{
		port:     port,
		conn:     conn,
		portName: portName,
	}, nil
}

// reverseBit reverses the bits in a byte (LSB <-> MSB)
func reverseBit(b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		result <<= 1
		result |= b & 1
		b >>= 1
	}
	return result
}

// reverseBytes returns a new slice with the bits of every byte reversed
func reverseBytes(data []byte) []byte {
	reversed := make([]byte, len(data))
	for i, b := range data {
		reversed[i] = reverseBit(b)
	}
	return reversed
}

// WriteData writes a frame prefixed with the DATAWRITE marker
func (t *Transport) WriteData(data []byte) error {
	if t.closed {
		return pn532.NewTransportError("spi.WriteData", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	tx := make([]byte, 0, len(data)+1)
	tx = append(tx, reverseBit(spiDataWrite))
	tx = append(tx, reverseBytes(data)...)

	if err := t.conn.Tx(tx, nil); err != nil {
		return pn532.NewTransportError("spi.WriteData", t.portName, err, pn532.ErrorTypeTransient)
	}
	return nil
}

// WaitReady polls the status register until the ready bit is set
func (t *Transport) WaitReady(timeout time.Duration) error {
	if t.closed {
		return pn532.NewTransportError("spi.WaitReady", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	deadline := time.Now().Add(timeout)
	tx := []byte{reverseBit(spiStatRead), 0x00}
	rx := make([]byte, 2)
	for {
		if err := t.conn.Tx(tx, rx); err != nil {
			return pn532.NewTransportError("spi.WaitReady", t.portName, err, pn532.ErrorTypeTransient)
		}
		if reverseBit(rx[1])&spiReady == spiReady {
			return nil
		}
		if time.Now().After(deadline) {
			return pn532.NewTimeoutError("spi.WaitReady", t.portName)
		}
		time.Sleep(pollInterval)
	}
}

// ReadData clocks in n bytes after a DATAREAD marker
func (t *Transport) ReadData(n int) ([]byte, error) {
	if t.closed {
		return nil, pn532.NewTransportError("spi.ReadData", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	tx := make([]byte, n+1)
	tx[0] = reverseBit(spiDataRead)
	rx := make([]byte, n+1)

	if err := t.conn.Tx(tx, rx); err != nil {
		return nil, pn532.NewTransportError("spi.ReadData", t.portName, err, pn532.ErrorTypeTransient)
	}

	return reverseBytes(rx[1:]), nil
}

// Wakeup clocks a dummy byte with chip select asserted, which brings
// the PN532 out of low-power mode on SPI.
func (t *Transport) Wakeup() error {
	if t.closed {
		return pn532.NewTransportError("spi.Wakeup", t.portName,
			pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	time.Sleep(1 * time.Millisecond)
	_ = t.conn.Tx([]byte{0x00}, nil)
	time.Sleep(1 * time.Millisecond)
	return nil
}

// Reset is a no-op; the SPI link exposes no reset mechanism
func (*Transport) Reset() error {
	return nil
}

// SetTimeout validates the requested timeout. SPI reads complete in a
// single bus transaction once WaitReady reports the chip ready, so the
// value itself has nothing to bound; waiting is governed by the timeout
// passed to WaitReady.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return pn532.NewTransportError("spi.SetTimeout", t.portName,
			pn532.ErrInvalidParameter, pn532.ErrorTypePermanent)
	}
	return nil
}

// Close closes the SPI port
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportSPI
}
