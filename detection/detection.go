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

// Package detection finds PN532 readers attached over USB serial
// adapters by enumerating ports and optionally probing candidates with
// a firmware handshake.
package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/digidex-tech/go-pn532"
	"github.com/digidex-tech/go-pn532/transport/uart"
)

// Mode represents the level of invasiveness for device detection
type Mode int

const (
	// Passive mode only checks port descriptors without any communication
	Passive Mode = iota
	// Safe mode probes candidates with a GetFirmwareVersion handshake
	Safe
)

// Confidence represents the confidence level of device detection
type Confidence int

const (
	// Low confidence - descriptor matches a known adapter chip
	Low Confidence = iota
	// High confidence - device answered the firmware handshake
	High
)

// DeviceInfo represents a detected PN532 device
type DeviceInfo struct {
	// Path is the connection path (e.g., "/dev/ttyUSB0", "COM3")
	Path string
	// Name is a human-readable device name
	Name string
	// VIDPID is the USB vendor:product pair, when available
	VIDPID string
	// Confidence is the detection confidence level
	Confidence Confidence
}

func (d DeviceInfo) String() string {
	confidence := "low"
	if d.Confidence == High {
		confidence = "high"
	}
	return fmt.Sprintf("uart device at %s (confidence: %s)", d.Path, confidence)
}

// Options configures the detection behavior
type Options struct {
	// Blocklist lists USB VID:PID pairs to skip
	Blocklist []string
	// IgnorePaths lists device paths to explicitly ignore
	IgnorePaths []string
	// ProbeTimeout bounds each handshake probe
	ProbeTimeout time.Duration
	// Mode is the detection invasiveness level
	Mode Mode
}

// DefaultOptions returns sensible default detection options
func DefaultOptions() Options {
	return Options{
		Mode:         Safe,
		ProbeTimeout: 2 * time.Second,
		Blocklist:    DefaultBlocklist(),
	}
}

// ErrNoDevicesFound indicates no PN532 devices were detected
var ErrNoDevicesFound = errors.New("no PN532 devices found")

// Detect enumerates serial ports and returns likely PN532 devices.
// In Safe mode each candidate is opened and probed; only responders are
// returned. In Passive mode descriptor matches are returned unprobed.
func Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	var devices []DeviceInfo
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		if isIgnoredPath(port.Name, opts.IgnorePaths) {
			continue
		}

		vidpid := portVIDPID(port)
		if vidpid != "" && IsBlocked(vidpid, opts.Blocklist) {
			continue
		}
		if !isLikelyAdapter(port) {
			continue
		}

		info := DeviceInfo{
			Path:       port.Name,
			Name:       port.Product,
			VIDPID:     vidpid,
			Confidence: Low,
		}

		if opts.Mode == Safe {
			if !probeDevice(ctx, port.Name, opts.ProbeTimeout) {
				continue
			}
			info.Confidence = High
		}

		devices = append(devices, info)
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return devices, nil
}

// DetectFirst returns the first detected device
func DetectFirst(ctx context.Context, opts *Options) (*DeviceInfo, error) {
	devices, err := Detect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &devices[0], nil
}

func isIgnoredPath(path string, ignorePaths []string) bool {
	for _, p := range ignorePaths {
		if p == path {
			return true
		}
	}
	return false
}

func portVIDPID(port *enumerator.PortDetails) string {
	if !port.IsUSB || port.VID == "" {
		return ""
	}
	return port.VID + ":" + port.PID
}

// probeDevice opens the port and attempts a firmware handshake.
//
// Single attempt only: retrying failed connections during auto-detection
// could stress devices that are not actually PN532 readers and slows the
// scan down. Retries belong at the device level for known paths.
func probeDevice(ctx context.Context, path string, timeout time.Duration) bool {
	transport, err := uart.New(path)
	if err != nil {
		return false
	}
	defer func() { _ = transport.Close() }()

	device, err := pn532.New(transport, pn532.WithoutHandshake())
	if err != nil {
		return false
	}
	if err := transport.Wakeup(); err != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = device.GetFirmwareVersion(probeCtx)
	return err == nil
}
