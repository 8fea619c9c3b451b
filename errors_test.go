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

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transport timeout",
			err:  ErrTransportTimeout,
			want: true,
		},
		{
			name: "wrapped no ACK",
			err:  fmt.Errorf("GetFirmwareVersion: %w", ErrNoACK),
			want: true,
		},
		{
			name: "NACK received",
			err:  ErrNACKReceived,
			want: true,
		},
		{
			name: "frame corrupted",
			err:  ErrFrameCorrupted,
			want: true,
		},
		{
			name: "response mismatch is permanent",
			err:  ErrResponseMismatch,
			want: false,
		},
		{
			name: "invalid parameter is permanent",
			err:  ErrInvalidParameter,
			want: false,
		},
		{
			name: "transient transport error",
			err:  NewTransportWriteError("uart.WriteData", "/dev/ttyUSB0"),
			want: true,
		},
		{
			name: "permanent transport error",
			err:  NewTransportError("uart.WriteData", "/dev/ttyUSB0", ErrDataTooLarge, ErrorTypePermanent),
			want: false,
		},
		{
			name: "device timeout status",
			err:  &DeviceError{Op: "InDataExchange", Code: 0x01},
			want: true,
		},
		{
			name: "device auth failure status",
			err:  &DeviceError{Op: "InDataExchange", Code: 0x14},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transport closed",
			err:  ErrTransportClosed,
			want: true,
		},
		{
			name: "device not found",
			err:  ErrDeviceNotFound,
			want: true,
		},
		{
			name: "EOF means device gone",
			err:  io.EOF,
			want: true,
		},
		{
			name: "timeout is not fatal",
			err:  ErrTransportTimeout,
			want: false,
		},
		{
			name: "permanent transport error",
			err:  NewTransportError("i2c.ReadData", "/dev/i2c-1", ErrInvalidParameter, ErrorTypePermanent),
			want: true,
		},
		{
			name: "transient transport error",
			err:  NewTransportReadError("uart.ReadData", "/dev/ttyUSB0"),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestDeviceErrorMessage(t *testing.T) {
	t.Parallel()

	err := &DeviceError{Op: "InDataExchange", Code: 0x14}
	assert.Contains(t, err.Error(), "InDataExchange")
	assert.Contains(t, err.Error(), "0x14")
	assert.Contains(t, err.Error(), "authentication")
	assert.True(t, err.IsAuthenticationError())
	assert.False(t, err.IsTimeoutError())

	unknown := &DeviceError{Op: "InRelease", Code: 0x77}
	assert.Contains(t, unknown.Error(), "unknown error")

	notSupported := &DeviceError{Op: "InDataExchange", Code: 0x81}
	assert.True(t, notSupported.IsCommandNotSupported())
}

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	te := NewTimeoutError("uart.WaitReady", "/dev/ttyUSB0")
	assert.ErrorIs(t, te, ErrTransportTimeout)
	assert.Contains(t, te.Error(), "/dev/ttyUSB0")
	assert.True(t, te.Retryable)

	var unwrapped *TransportError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", te), &unwrapped))
}
