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
	"fmt"
	"os"

	"github.com/digidex-tech/go-pn532/internal/syncutil"
)

// debugEnabled controls whether debug logging is active. Guarded by
// debugMu so SetDebugEnabled is safe to call while a device is running.
var (
	debugMu      syncutil.RWMutex
	debugEnabled = false
)

func init() {
	// Enable debug logging if DEBUG environment variable is set
	if os.Getenv("PN532_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

func debugOn() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugEnabled
}

// Debugf prints debug information when debug mode is enabled
func Debugf(format string, args ...any) {
	if debugOn() {
		_, _ = fmt.Printf("DEBUG: "+format+"\n", args...)
	}
}

// Debugln prints debug information when debug mode is enabled
func Debugln(args ...any) {
	if debugOn() {
		_, _ = fmt.Print("DEBUG: ")
		_, _ = fmt.Println(args...)
	}
}

// SetDebugEnabled allows programmatic control of debug logging
// Useful for testing or application-controlled debug modes
func SetDebugEnabled(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
}
