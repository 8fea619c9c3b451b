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

// Package pn532test provides a scripted PN532 wire simulator for tests.
// It implements the pn532.Transport interface and answers commands the
// way a real chip does: an ACK frame first, then a checksummed response
// frame, so the full codec and sequencing paths are exercised.
package pn532test

import (
	"errors"
	"fmt"
	"time"

	"github.com/digidex-tech/go-pn532"
	"github.com/digidex-tech/go-pn532/internal/frame"
)

// Handler produces the response payload for a command. The returned
// bytes follow the response code on the wire (the simulator adds the
// direction byte and code). Returning ok=false acknowledges the command
// but sends no response frame, the way a real chip goes quiet when a
// poll finds no target.
type Handler func(params []byte) (resp []byte, ok bool)

// Simulator is an in-memory PN532 behind the Transport interface.
// Not safe for concurrent use; the device engine serializes access.
type Simulator struct {
	handlers map[byte]Handler

	// queue holds wire segments to be served by ReadData in order
	queue [][]byte

	// Commands records every command byte received, in order
	Commands []byte

	// SilentCommands suppresses any reply for the listed commands
	SilentCommands map[byte]bool

	// DropACKOnce suppresses the next ACK but still sends the response
	DropACKOnce bool

	// NACKOnce answers the next command with a NACK instead of an ACK
	NACKOnce bool

	// CorruptChecksumOnce flips a data byte in the next response frame
	// without fixing its checksum
	CorruptChecksumOnce bool

	// WrongCodeOnce answers the next command with a mismatched
	// response code
	WrongCodeOnce bool

	// FailFirstN makes the first n commands silent, then behaves
	// normally. Used to exercise handshake retries.
	FailFirstN int

	closed bool
}

// NewSimulator creates a simulator with standard handlers for
// GetFirmwareVersion and SAMConfiguration installed.
func NewSimulator() *Simulator {
	s := &Simulator{
		handlers:       make(map[byte]Handler),
		SilentCommands: make(map[byte]bool),
	}

	// PN532 v1.6, ISO14443A+B and ISO18092 support
	s.Handle(0x02, func(_ []byte) ([]byte, bool) {
		return []byte{0x32, 0x01, 0x06, 0x07}, true
	})
	s.Handle(0x14, func(_ []byte) ([]byte, bool) {
		return nil, true
	})

	return s
}

// Handle installs a handler for a command byte
func (s *Simulator) Handle(cmd byte, h Handler) {
	s.handlers[cmd] = h
}

// HandleStatic installs a handler that always returns the same payload
func (s *Simulator) HandleStatic(cmd byte, resp []byte) {
	s.Handle(cmd, func(_ []byte) ([]byte, bool) {
		return resp, true
	})
}

// PresentTarget answers InListPassiveTarget with a single ISO14443A
// target carrying the given UID.
func (s *Simulator) PresentTarget(uid []byte) {
	resp := []byte{0x01, 0x01, 0x00, 0x44, 0x00, byte(len(uid))}
	resp = append(resp, uid...)
	s.HandleStatic(0x4A, resp)
}

// NoTarget answers InListPassiveTarget with an empty target list
func (s *Simulator) NoTarget() {
	s.HandleStatic(0x4A, []byte{0x00})
}

// WriteData parses the incoming frame and queues the scripted reply
func (s *Simulator) WriteData(data []byte) error {
	if s.closed {
		return errors.New("simulator closed")
	}

	payload, err := frame.Parse(data)
	if err != nil {
		return fmt.Errorf("simulator received bad frame: %w", err)
	}
	if len(payload) < 2 || payload[0] != frame.HostToDevice {
		return fmt.Errorf("simulator received non-command payload: % X", payload)
	}

	cmd := payload[1]
	params := payload[2:]
	s.Commands = append(s.Commands, cmd)

	if s.FailFirstN > 0 {
		s.FailFirstN--
		return nil
	}
	if s.SilentCommands[cmd] {
		return nil
	}

	if s.NACKOnce {
		s.NACKOnce = false
		s.queue = append(s.queue, frame.NackFrame)
		return nil
	}

	h, found := s.handlers[cmd]
	if !found {
		return nil
	}
	resp, ok := h(params)

	if !s.DropACKOnce {
		s.queue = append(s.queue, frame.AckFrame)
	}
	s.DropACKOnce = false

	if !ok {
		return nil
	}

	code := cmd + 1
	if s.WrongCodeOnce {
		s.WrongCodeOnce = false
		code = cmd + 2
	}

	respPayload := make([]byte, 0, 2+len(resp))
	respPayload = append(respPayload, frame.DeviceToHost, code)
	respPayload = append(respPayload, resp...)

	frm, err := frame.Build(respPayload)
	if err != nil {
		return fmt.Errorf("simulator could not build response: %w", err)
	}

	if s.CorruptChecksumOnce {
		s.CorruptChecksumOnce = false
		frm[5] ^= 0xFF // first payload byte, checksum left stale
	}

	s.queue = append(s.queue, frm)
	return nil
}

// WaitReady reports readiness based on queued reply segments. An empty
// queue stands in for a chip that never raises its ready signal, so it
// fails the way a real transport does: with a readiness timeout.
func (s *Simulator) WaitReady(_ time.Duration) error {
	if s.closed {
		return errors.New("simulator closed")
	}
	if len(s.queue) == 0 {
		return pn532.NewTimeoutError("simulator.WaitReady", "sim")
	}
	return nil
}

// ReadData serves the next queued wire segment. Short segments are
// returned as-is; the frame parser reads the real length from the
// frame itself.
func (s *Simulator) ReadData(n int) ([]byte, error) {
	if s.closed {
		return nil, errors.New("simulator closed")
	}
	if len(s.queue) == 0 {
		return nil, errors.New("simulator has no data")
	}

	seg := s.queue[0]
	s.queue = s.queue[1:]
	if len(seg) > n {
		seg = seg[:n]
	}
	return seg, nil
}

// Wakeup is a no-op
func (*Simulator) Wakeup() error { return nil }

// Reset drops any queued replies
func (s *Simulator) Reset() error {
	s.queue = nil
	return nil
}

// SetTimeout is a no-op
func (*Simulator) SetTimeout(_ time.Duration) error { return nil }

// Close marks the simulator closed
func (s *Simulator) Close() error {
	s.closed = true
	return nil
}

// Type returns the mock transport type
func (*Simulator) Type() pn532.TransportType { return pn532.TransportMock }
