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
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/digidex-tech/go-pn532/internal/frame"
	"github.com/digidex-tech/go-pn532/internal/syncutil"
)

const (
	// defaultTimeout bounds the wait for a command response frame.
	defaultTimeout = 1 * time.Second
	// defaultAckTimeout bounds the wait for the ACK that follows a command.
	defaultAckTimeout = 100 * time.Millisecond

	ackFrameLength = 6
)

// DeviceConfig holds configuration options for the device
type DeviceConfig struct {
	// Timeout for command responses
	Timeout time.Duration
	// AckTimeout for command acknowledgements
	AckTimeout time.Duration
	// SkipHandshake disables the firmware handshake during New.
	// Intended for tests and recovery tooling.
	SkipHandshake bool
}

// DefaultDeviceConfig returns the default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:    defaultTimeout,
		AckTimeout: defaultAckTimeout,
	}
}

// Option configures a Device during New
type Option func(*Device) error

// WithTimeout sets the command response timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithAckTimeout sets the acknowledgement timeout
func WithAckTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
		}
		d.config.AckTimeout = timeout
		return nil
	}
}

// WithMonitor installs a command monitor callback
func WithMonitor(m Monitor) Option {
	return func(d *Device) error {
		d.monitor = m
		return nil
	}
}

// WithoutHandshake skips the firmware handshake during New
func WithoutHandshake() Option {
	return func(d *Device) error {
		d.config.SkipHandshake = true
		return nil
	}
}

// Device drives a PN532 over any Transport. It owns frame construction,
// ACK handling and response matching; transports only move bytes.
type Device struct {
	transport Transport
	config    *DeviceConfig
	monitor   Monitor
	firmware  *FirmwareVersion

	mu syncutil.Mutex
}

// New creates a Device on the given transport, wakes the chip and verifies
// communication with a firmware handshake. The handshake is retried once:
// a PN532 coming out of power-down commonly swallows the first command.
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is nil", ErrInvalidParameter)
	}

	d := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.config.SkipHandshake {
		return d, nil
	}

	if err := transport.Wakeup(); err != nil {
		return nil, fmt.Errorf("wakeup failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout*2)
	defer cancel()

	fw, err := d.GetFirmwareVersion(ctx)
	if err != nil {
		Debugf("firmware handshake failed, retrying once: %v", err)
		fw, err = d.GetFirmwareVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("firmware handshake failed: %w", err)
		}
	}
	d.firmware = fw

	return d, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// FirmwareVersion returns the version read during the handshake, or nil
// when the handshake was skipped.
func (d *Device) FirmwareVersion() *FirmwareVersion {
	return d.firmware
}

// Close closes the device and its transport
func (d *Device) Close() error {
	return d.transport.Close()
}

// SendCommand sends a command and returns the response payload that follows
// the response code. respLen is the expected length of that payload; the
// transport may deliver trailing padding beyond it, which is ignored.
//
// The exchange is strictly sequenced: write frame, wait for ACK, wait for
// the response frame, validate checksums, match the response code against
// the command. Concurrent callers are serialized.
func (d *Device) SendCommand(ctx context.Context, cmd byte, params []byte, respLen int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	resp, err := d.exchange(ctx, cmd, params, respLen)
	if d.monitor != nil {
		d.monitor(CommandEvent{
			Command:  cmd,
			Name:     commandName(cmd),
			Params:   params,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return resp, err
}

func (d *Device) exchange(ctx context.Context, cmd byte, params []byte, respLen int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := make([]byte, 0, 2+len(params))
	payload = append(payload, frame.HostToDevice, cmd)
	payload = append(payload, params...)

	frm, err := frame.Build(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", commandName(cmd), err)
	}

	Debugf("TX %s: % X", commandName(cmd), frm)
	if err := d.transport.WriteData(frm); err != nil {
		return nil, fmt.Errorf("%s: %w", commandName(cmd), err)
	}

	if err := d.readAck(ctx, cmd); err != nil {
		return nil, err
	}

	return d.readResponse(ctx, cmd, respLen)
}

// readAck waits for and validates the ACK frame that the PN532 sends
// immediately after receiving a well-formed command.
func (d *Device) readAck(ctx context.Context, cmd byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.transport.WaitReady(d.config.AckTimeout); err != nil {
		return fmt.Errorf("%s: %w: %w", commandName(cmd), ErrNoACK, err)
	}

	raw, err := d.transport.ReadData(ackFrameLength)
	if err != nil {
		return fmt.Errorf("%s: reading ACK: %w", commandName(cmd), err)
	}

	switch {
	case frame.IsAck(raw):
		return nil
	case frame.IsNack(raw):
		return fmt.Errorf("%s: %w", commandName(cmd), ErrNACKReceived)
	default:
		return fmt.Errorf("%s: %w: got % X", commandName(cmd), ErrNoACK, raw)
	}
}

// readResponse waits for the response frame and returns its payload with
// the direction byte and response code stripped.
func (d *Device) readResponse(ctx context.Context, cmd byte, respLen int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := d.transport.WaitReady(d.config.Timeout); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", commandName(cmd), ErrTransportNotReady, err)
	}

	raw, err := d.transport.ReadData(respLen + 2 + frame.Overhead)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", commandName(cmd), err)
	}
	Debugf("RX %s: % X", commandName(cmd), raw)

	payload, err := frame.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", commandName(cmd), err)
	}

	if len(payload) < 2 || payload[0] != frame.DeviceToHost || payload[1] != cmd+1 {
		return nil, fmt.Errorf("%s: %w: got % X", commandName(cmd), ErrResponseMismatch, payload)
	}

	return payload[2:], nil
}

// GetFirmwareVersion queries the PN532 IC type, firmware revision and
// supported protocols.
func (d *Device) GetFirmwareVersion(ctx context.Context) (*FirmwareVersion, error) {
	resp, err := d.SendCommand(ctx, cmdGetFirmwareVersion, nil, 4)
	if err != nil {
		return nil, err
	}
	return parseFirmwareVersion(resp)
}

// SAMConfiguration configures the Secure Access Module in normal mode,
// which releases the PN532 for direct host control. Must be called before
// tag operations on boards with a SAM companion.
func (d *Device) SAMConfiguration(ctx context.Context) error {
	// normal mode, 50ms virtual card timeout, IRQ pin enabled
	_, err := d.SendCommand(ctx, cmdSAMConfiguration, []byte{0x01, 0x14, 0x01}, 0)
	if err != nil {
		return fmt.Errorf("SAM configuration failed: %w", err)
	}
	return nil
}

// ListPassiveTarget polls once for a single passive target at the given
// baud/modulation. Returns (nil, nil) when no tag is in the field: an
// absent tag is a normal condition, not an error.
func (d *Device) ListPassiveTarget(ctx context.Context, baud byte) (*DetectedTag, error) {
	resp, err := d.SendCommand(ctx, cmdInListPassiveTarget, []byte{0x01, baud}, 19)
	if err != nil {
		if isResponseTimeout(err) {
			return nil, nil
		}
		return nil, err
	}

	return parsePassiveTarget(resp)
}

// isResponseTimeout reports whether err is a response readiness timeout,
// which is how an empty field manifests: the PN532 acknowledges the poll
// and then stays silent past its retry window. Write, read and ACK
// failures mean the reader itself is in trouble and are surfaced.
func isResponseTimeout(err error) bool {
	if errors.Is(err, ErrNoACK) || !errors.Is(err, ErrTransportNotReady) {
		return false
	}
	var te *TransportError
	return errors.As(err, &te) && te.Type == ErrorTypeTimeout
}

// parsePassiveTarget decodes an InListPassiveTarget response for a single
// 106 kbps type A target.
func parsePassiveTarget(resp []byte) (*DetectedTag, error) {
	if len(resp) < 1 {
		return nil, fmt.Errorf("%w: empty target list", ErrFrameCorrupted)
	}
	if resp[0] == 0 {
		return nil, nil
	}
	if resp[0] > 1 {
		return nil, ErrMultipleTargets
	}
	if len(resp) < 6 {
		return nil, fmt.Errorf("%w: truncated target data", ErrFrameCorrupted)
	}

	uidLen := int(resp[5])
	if uidLen > 7 {
		return nil, ErrUIDLength
	}
	if len(resp) < 6+uidLen {
		return nil, fmt.Errorf("%w: truncated UID", ErrFrameCorrupted)
	}

	uid := make([]byte, uidLen)
	copy(uid, resp[6:6+uidLen])

	atq := make([]byte, 2)
	copy(atq, resp[2:4])

	return &DetectedTag{
		UID:          hex.EncodeToString(uid),
		UIDBytes:     uid,
		ATQ:          atq,
		SAK:          resp[4],
		TargetNumber: resp[1],
		DetectedAt:   time.Now(),
	}, nil
}

// DetectTag polls once for an ISO14443A tag (MIFARE, NTAG).
// Returns (nil, nil) when no tag is present.
func (d *Device) DetectTag(ctx context.Context) (*DetectedTag, error) {
	return d.ListPassiveTarget(ctx, BaudISO14443A)
}

// WaitForTag polls for a tag until one appears or the context is done.
func (d *Device) WaitForTag(ctx context.Context, pollInterval time.Duration) (*DetectedTag, error) {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		tag, err := d.DetectTag(ctx)
		if err != nil {
			return nil, err
		}
		if tag != nil {
			return tag, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// SendDataExchange relays data to the selected target via InDataExchange
// and strips the leading status byte from the response. respLen is the
// expected length of the tag-level response, excluding the status byte.
func (d *Device) SendDataExchange(ctx context.Context, data []byte, respLen int) ([]byte, error) {
	params := make([]byte, 0, 1+len(data))
	params = append(params, 0x01) // logical target number
	params = append(params, data...)

	resp, err := d.SendCommand(ctx, cmdInDataExchange, params, respLen+1)
	if err != nil {
		return nil, err
	}
	if len(resp) < 1 {
		return nil, fmt.Errorf("InDataExchange: %w: missing status byte", ErrFrameCorrupted)
	}

	if status := resp[0] & 0x3F; status != 0 {
		return nil, &DeviceError{Op: "InDataExchange", Code: status}
	}

	return resp[1:], nil
}

// InCommunicateThru sends raw data to the target without the PN532's
// protocol handling. Needed for vendor commands the InDataExchange state
// machine rejects.
func (d *Device) InCommunicateThru(ctx context.Context, data []byte, respLen int) ([]byte, error) {
	resp, err := d.SendCommand(ctx, cmdInCommunicateThru, data, respLen+1)
	if err != nil {
		return nil, err
	}
	if len(resp) < 1 {
		return nil, fmt.Errorf("InCommunicateThru: %w: missing status byte", ErrFrameCorrupted)
	}

	if status := resp[0] & 0x3F; status != 0 {
		return nil, &DeviceError{Op: "InCommunicateThru", Code: status}
	}

	return resp[1:], nil
}

// GeneralStatus reports the last error, RF field state and number of
// currently tracked targets.
type GeneralStatus struct {
	LastError    byte
	FieldPresent bool
	Targets      int
}

// GetGeneralStatus queries the device status
func (d *Device) GetGeneralStatus(ctx context.Context) (*GeneralStatus, error) {
	resp, err := d.SendCommand(ctx, cmdGetGeneralStatus, nil, 4)
	if err != nil {
		return nil, err
	}
	if len(resp) < 3 {
		return nil, fmt.Errorf("GetGeneralStatus: %w: short response", ErrFrameCorrupted)
	}

	return &GeneralStatus{
		LastError:    resp[0],
		FieldPresent: resp[1] != 0,
		Targets:      int(resp[2]),
	}, nil
}

// SetPassiveActivationRetries sets how many times the PN532 retries target
// activation during InListPassiveTarget. 0xFF means retry forever; small
// values make single polls return quickly when no tag is present.
func (d *Device) SetPassiveActivationRetries(ctx context.Context, maxRetries byte) error {
	params := []byte{rfItemMaxRetries, 0xFF, 0x01, maxRetries}
	if _, err := d.SendCommand(ctx, cmdRFConfiguration, params, 0); err != nil {
		return fmt.Errorf("setting activation retries: %w", err)
	}
	return nil
}

// InRelease releases the selected target. Target 0 releases all.
func (d *Device) InRelease(ctx context.Context, target byte) error {
	resp, err := d.SendCommand(ctx, cmdInRelease, []byte{target}, 1)
	if err != nil {
		return err
	}
	if len(resp) >= 1 {
		if status := resp[0] & 0x3F; status != 0 {
			return &DeviceError{Op: "InRelease", Code: status}
		}
	}
	return nil
}

// PowerDown puts the PN532 into low-power mode. wakeupEnable is a bitmask
// of wakeup sources (PN532 User Manual section 7.2.11); 0x80 enables I2C,
// 0x20 SPI, 0x10 HSU. The transport's Wakeup must be called before the
// next command.
func (d *Device) PowerDown(ctx context.Context, wakeupEnable byte) error {
	resp, err := d.SendCommand(ctx, cmdPowerDown, []byte{wakeupEnable}, 1)
	if err != nil {
		return err
	}
	if len(resp) >= 1 && resp[0] != 0 {
		return &DeviceError{Op: "PowerDown", Code: resp[0]}
	}
	return nil
}
