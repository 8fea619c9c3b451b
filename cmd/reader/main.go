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

// reader is a small CLI that detects a PN532, waits for an NTAG tag and
// reads or writes its NDEF content.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pn532 "github.com/digidex-tech/go-pn532"
	"github.com/digidex-tech/go-pn532/detection"
	"github.com/digidex-tech/go-pn532/pkg/ndef"
	"github.com/digidex-tech/go-pn532/transport/i2c"
	"github.com/digidex-tech/go-pn532/transport/spi"
	"github.com/digidex-tech/go-pn532/transport/uart"
)

var (
	flagDevicePath = flag.String("device", "", "Device path (auto-detect if empty)")
	flagTransport  = flag.String("transport", "uart", "Transport type: uart, i2c or spi")
	flagWriteText  = flag.String("write-text", "", "Text to write to the next scanned tag")
	flagWriteURI   = flag.String("write-uri", "", "URI to write to the next scanned tag")
	flagDump       = flag.Bool("dump", false, "Dump all tag pages instead of decoding NDEF")
	flagDebug      = flag.Bool("debug", false, "Enable debug output")
)

func main() {
	flag.Parse()
	if *flagDebug {
		pn532.SetDebugEnabled(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	transport, err := openTransport(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = transport.Close() }()

	device, err := pn532.New(transport)
	if err != nil {
		return err
	}
	fmt.Printf("Connected: %s\n", device.FirmwareVersion())

	if err := device.SAMConfiguration(ctx); err != nil {
		return err
	}
	if err := device.SetPassiveActivationRetries(ctx, 0x01); err != nil {
		return err
	}

	fmt.Println("Waiting for tag...")
	detected, err := device.WaitForTag(ctx, 250*time.Millisecond)
	if err != nil {
		return err
	}
	fmt.Printf("Tag detected: UID %s\n", detected.UID)

	tag := pn532.NewNTAG(device, detected.UIDBytes)
	typ, err := tag.DetectType(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Tag type: %s\n", typ)

	switch {
	case *flagWriteText != "":
		return writeMessage(ctx, tag, ndef.NewTextRecord(*flagWriteText, "en"))
	case *flagWriteURI != "":
		return writeMessage(ctx, tag, ndef.NewURIRecord(*flagWriteURI))
	case *flagDump:
		return dumpTag(ctx, tag)
	default:
		return readTag(ctx, tag)
	}
}

// openTransport opens the configured transport, auto-detecting a UART
// device when no path is given.
func openTransport(ctx context.Context) (pn532.Transport, error) {
	path := *flagDevicePath
	if path == "" {
		info, err := detection.DetectFirst(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("auto-detection failed: %w", err)
		}
		fmt.Printf("Detected %s\n", info)
		path = info.Path
	}

	switch strings.ToLower(*flagTransport) {
	case "uart":
		return uart.New(path)
	case "i2c":
		return i2c.New(path)
	case "spi":
		return spi.New(path)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", *flagTransport)
	}
}

func readTag(ctx context.Context, tag *pn532.NTAG) error {
	msg, err := tag.ReadNDEF(ctx)
	if err != nil {
		return fmt.Errorf("reading NDEF: %w", err)
	}

	for i, rec := range msg.Records {
		switch rec.Type {
		case ndef.TextRecordType:
			text, err := ndef.DecodeTextPayload(rec.Payload)
			if err != nil {
				return err
			}
			fmt.Printf("Record %d: text %q (lang %s)\n", i, text.Text, text.Language)
		case ndef.URIRecordType:
			uri, err := ndef.DecodeURIPayload(rec.Payload)
			if err != nil {
				return err
			}
			fmt.Printf("Record %d: uri %s\n", i, uri)
		default:
			fmt.Printf("Record %d: type %q, % X\n", i, rec.Type, rec.Payload)
		}
	}
	return nil
}

func writeMessage(ctx context.Context, tag *pn532.NTAG, rec ndef.Record) error {
	msg := &ndef.Message{Records: []ndef.Record{rec}}
	if err := tag.WriteNDEF(ctx, msg); err != nil {
		return fmt.Errorf("writing NDEF: %w", err)
	}
	fmt.Println("Write complete")
	return nil
}

// dumpTag prints every readable page. A read failure partway through
// still prints what was read.
func dumpTag(ctx context.Context, tag *pn532.NTAG) error {
	total := tag.TotalPages()
	if total == 0 {
		return errors.New("unknown tag type, cannot dump")
	}

	err := tag.DumpPages(ctx, 0, uint8(total-1), func(page uint8, data []byte) bool {
		fmt.Printf("page %3d: % X\n", page, data)
		return true
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump stopped: %v\n", err)
	}
	return nil
}
