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

package uart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/digidex-tech/go-pn532"
)

// fakePort implements serial.Port against in-memory buffers
type fakePort struct {
	readBuf  []byte
	written  []byte
	closed   bool
	readTime time.Duration
}

func (*fakePort) SetMode(_ *serial.Mode) error { return nil }

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.readBuf) == 0 {
		// emulate a read timeout with no data
		return 0, nil
	}
	n := copy(p, f.readBuf)
	f.readBuf = f.readBuf[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (*fakePort) Drain() error             { return nil }
func (*fakePort) ResetInputBuffer() error  { return nil }
func (*fakePort) ResetOutputBuffer() error { return nil }
func (*fakePort) SetDTR(_ bool) error      { return nil }
func (*fakePort) SetRTS(_ bool) error      { return nil }

func (*fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.readTime = t
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (*fakePort) Break(_ time.Duration) error { return nil }

var _ serial.Port = (*fakePort)(nil)

func newFakeTransport() (*Transport, *fakePort) {
	port := &fakePort{}
	return &Transport{
		port:     port,
		portName: "/dev/ttyFake0",
		timeout:  50 * time.Millisecond,
	}, port
}

func TestWriteData(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	frame := []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}
	require.NoError(t, tr.WriteData(frame))
	assert.Equal(t, frame, port.written)
}

func TestWaitReadyBuffersFirstByte(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	port.readBuf = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}

	require.NoError(t, tr.WaitReady(20*time.Millisecond))

	// the byte consumed by WaitReady must come back from ReadData
	data, err := tr.ReadData(6)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}, data)
}

func TestWaitReadyTimeout(t *testing.T) {
	t.Parallel()

	tr, _ := newFakeTransport()
	err := tr.WaitReady(20 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, pn532.ErrTransportTimeout)
}

func TestReadDataShortDelivery(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	port.readBuf = []byte{0x01, 0x02, 0x03}

	// requesting more than the device sends returns what arrived
	data, err := tr.ReadData(32)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, data)
}

func TestReadDataNoData(t *testing.T) {
	t.Parallel()

	tr, _ := newFakeTransport()
	_, err := tr.ReadData(4)
	require.Error(t, err)
	assert.ErrorIs(t, err, pn532.ErrTransportRead)
}

func TestWakeupSendsPreamble(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	require.NoError(t, tr.Wakeup())

	require.GreaterOrEqual(t, len(port.written), 16)
	assert.Equal(t, byte(0x55), port.written[0])
	for _, b := range port.written[1:16] {
		assert.Equal(t, byte(0x00), b)
	}
}

func TestWriteDataDropsStaleBytes(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	port.readBuf = []byte{0xAA}
	require.NoError(t, tr.WaitReady(20*time.Millisecond))

	require.NoError(t, tr.WriteData([]byte{0x01}))

	// the stale pre-write byte must not leak into the next read
	port.readBuf = []byte{0xBB}
	data, err := tr.ReadData(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBB}, data)
}

func TestClosedTransport(t *testing.T) {
	t.Parallel()

	tr, port := newFakeTransport()
	require.NoError(t, tr.Close())
	assert.True(t, port.closed)

	assert.ErrorIs(t, tr.WriteData([]byte{0x00}), pn532.ErrTransportClosed)
	_, err := tr.ReadData(1)
	assert.ErrorIs(t, err, pn532.ErrTransportClosed)
	assert.ErrorIs(t, tr.WaitReady(time.Millisecond), pn532.ErrTransportClosed)

	// closing twice is fine
	assert.NoError(t, tr.Close())
}

func TestSetTimeout(t *testing.T) {
	t.Parallel()

	tr, _ := newFakeTransport()
	require.NoError(t, tr.SetTimeout(time.Second))
	assert.Equal(t, time.Second, tr.timeout)

	assert.Error(t, tr.SetTimeout(0))
}

func TestType(t *testing.T) {
	t.Parallel()

	tr, _ := newFakeTransport()
	assert.Equal(t, pn532.TransportUART, tr.Type())
}
