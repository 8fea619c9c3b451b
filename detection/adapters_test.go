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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.bug.st/serial/enumerator"
)

func TestIsLikelyAdapter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		port *enumerator.PortDetails
		want bool
	}{
		{
			name: "CH340 adapter",
			port: &enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
			want: true,
		},
		{
			name: "FTDI adapter",
			port: &enumerator.PortDetails{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"},
			want: true,
		},
		{
			name: "CP210x adapter",
			port: &enumerator.PortDetails{Name: "COM3", IsUSB: true, VID: "10C4", PID: "EA60"},
			want: true,
		},
		{
			name: "PL2303 adapter",
			port: &enumerator.PortDetails{Name: "COM4", IsUSB: true, VID: "067B", PID: "2303"},
			want: true,
		},
		{
			name: "product string mentions NFC",
			port: &enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "dead", PID: "beef", Product: "NFC Reader Module"},
			want: true,
		},
		{
			name: "unrelated USB device",
			port: &enumerator.PortDetails{Name: "/dev/ttyACM1", IsUSB: true, VID: "dead", PID: "beef", Product: "GPS Receiver"},
			want: false,
		},
		{
			name: "non-USB port",
			port: &enumerator.PortDetails{Name: "/dev/ttyS0"},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isLikelyAdapter(tt.port))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"1234:5678", " abcd:ef01 "}

	assert.True(t, IsBlocked("1234:5678", blocklist))
	assert.True(t, IsBlocked("ABCD:EF01", blocklist))
	assert.False(t, IsBlocked("1a86:7523", blocklist))
	assert.False(t, IsBlocked("", blocklist))
}

func TestIsIgnoredPath(t *testing.T) {
	t.Parallel()

	assert.True(t, isIgnoredPath("/dev/ttyUSB0", []string{"/dev/ttyUSB0"}))
	assert.False(t, isIgnoredPath("/dev/ttyUSB1", []string{"/dev/ttyUSB0"}))
	assert.False(t, isIgnoredPath("/dev/ttyUSB0", nil))
}

func TestDeviceInfoString(t *testing.T) {
	t.Parallel()

	info := DeviceInfo{Path: "/dev/ttyUSB0", Confidence: High}
	assert.Equal(t, "uart device at /dev/ttyUSB0 (confidence: high)", info.String())

	info.Confidence = Low
	assert.Equal(t, "uart device at /dev/ttyUSB0 (confidence: low)", info.String())
}
