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
	"errors"
	"fmt"
)

// MirrorMode selects what the tag mirrors into user memory as ASCII
type MirrorMode byte

const (
	// MirrorNone disables ASCII mirroring
	MirrorNone MirrorMode = 0x0
	// MirrorUID mirrors the 7-byte UID (14 ASCII chars)
	MirrorUID MirrorMode = 0x1
	// MirrorCounter mirrors the 24-bit NFC counter (6 ASCII chars)
	MirrorCounter MirrorMode = 0x2
	// MirrorBoth mirrors UID and counter separated by "x"
	MirrorBoth MirrorMode = 0x3
)

// MirrorConfig describes the ASCII mirror placement in user memory
type MirrorConfig struct {
	// Mode selects what is mirrored
	Mode MirrorMode
	// Page is the user memory page where the mirror starts
	Page uint8
	// ByteOffset is the starting byte within the page (0-3)
	ByteOffset uint8
}

// Config page 0 bit layout (NTAG21x datasheet section 8.5.7)
const (
	mirrorConfShift = 6
	mirrorByteShift = 4
	mirrorByteMask  = 0x3
)

// requireGeometry fails operations that need the config page addresses
// when the variant has not been established.
func (t *NTAG) requireGeometry() error {
	if t.geo.totalPages == 0 {
		return fmt.Errorf("%w: call DetectType first", ErrUnknownTagType)
	}
	return nil
}

// ReadMirrorConfig reads the ASCII mirror settings from the first
// configuration page.
func (t *NTAG) ReadMirrorConfig(ctx context.Context) (*MirrorConfig, error) {
	if err := t.requireGeometry(); err != nil {
		return nil, err
	}

	cfg, err := t.readPage(ctx, t.geo.configStart)
	if err != nil {
		return nil, fmt.Errorf("reading mirror config: %w", err)
	}

	return &MirrorConfig{
		Mode:       MirrorMode(cfg[0] >> mirrorConfShift),
		ByteOffset: (cfg[0] >> mirrorByteShift) & mirrorByteMask,
		Page:       cfg[2],
	}, nil
}

// WriteMirrorConfig updates the ASCII mirror settings, preserving the
// unrelated bits of the configuration page.
func (t *NTAG) WriteMirrorConfig(ctx context.Context, mc *MirrorConfig) error {
	if err := t.requireGeometry(); err != nil {
		return err
	}
	if mc.Mode > MirrorBoth {
		return fmt.Errorf("%w: mirror mode %d", ErrInvalidParameter, mc.Mode)
	}
	if mc.ByteOffset > mirrorByteMask {
		return fmt.Errorf("%w: mirror byte offset %d", ErrInvalidParameter, mc.ByteOffset)
	}
	if mc.Mode != MirrorNone {
		if mc.Page < t.geo.userStart || mc.Page > t.geo.userEnd {
			return fmt.Errorf("%w: mirror page %d outside user memory", ErrPageRange, mc.Page)
		}
	}

	cfg, err := t.readPage(ctx, t.geo.configStart)
	if err != nil {
		return fmt.Errorf("reading mirror config: %w", err)
	}

	cfg[0] &^= (0x3 << mirrorConfShift) | (mirrorByteMask << mirrorByteShift)
	cfg[0] |= byte(mc.Mode)<<mirrorConfShift | mc.ByteOffset<<mirrorByteShift
	cfg[2] = mc.Page

	if err := t.WritePage(ctx, t.geo.configStart, cfg); err != nil {
		return fmt.Errorf("writing mirror config: %w", err)
	}
	return nil
}

// SetAuth0 sets the first page that requires password authentication.
// Pages before auth0 stay freely accessible; 0xFF disables protection.
func (t *NTAG) SetAuth0(ctx context.Context, auth0 uint8) error {
	if err := t.requireGeometry(); err != nil {
		return err
	}

	cfg, err := t.readPage(ctx, t.geo.configStart)
	if err != nil {
		return fmt.Errorf("reading auth config: %w", err)
	}

	cfg[3] = auth0
	if err := t.WritePage(ctx, t.geo.configStart, cfg); err != nil {
		return fmt.Errorf("writing auth config: %w", err)
	}
	return nil
}

// SetPassword programs the 4-byte password and 2-byte acknowledge into
// the PWD and PACK configuration pages. Protection only takes effect once
// SetAuth0 points inside the tag.
func (t *NTAG) SetPassword(ctx context.Context, password [4]byte, pack [2]byte) error {
	if err := t.requireGeometry(); err != nil {
		return err
	}

	pwdPage := t.geo.configStart + 2
	packPage := t.geo.configStart + 3

	if err := t.WritePage(ctx, pwdPage, password[:]); err != nil {
		return fmt.Errorf("writing password: %w", err)
	}
	if err := t.WritePage(ctx, packPage, []byte{pack[0], pack[1], 0x00, 0x00}); err != nil {
		return fmt.Errorf("writing pack: %w", err)
	}
	return nil
}

// Authenticate performs PWD_AUTH and returns the tag's 2-byte password
// acknowledge. Callers should compare it against the PACK they programmed
// to detect a cloned or misconfigured tag.
func (t *NTAG) Authenticate(ctx context.Context, password [4]byte) ([2]byte, error) {
	var pack [2]byte

	params := append([]byte{ntagCmdPwdAuth}, password[:]...)
	resp, err := t.device.SendDataExchange(ctx, params, 2)
	if err != nil {
		var de *DeviceError
		if errors.As(err, &de) && de.IsAuthenticationError() {
			return pack, fmt.Errorf("%w: %w", ErrTagAuthFailed, err)
		}
		return pack, fmt.Errorf("password auth: %w", err)
	}
	if len(resp) < 2 {
		return pack, fmt.Errorf("password auth: %w: got %d bytes", ErrInvalidLength, len(resp))
	}

	pack[0], pack[1] = resp[0], resp[1]
	return pack, nil
}
