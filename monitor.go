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

import "time"

// CommandEvent describes one completed command exchange, successful or not.
type CommandEvent struct {
	Command  byte
	Name     string
	Params   []byte
	Duration time.Duration
	Err      error
}

// Monitor receives a CommandEvent after every command exchange. Install one
// with WithMonitor to trace wire activity or collect timing metrics. The
// callback runs on the calling goroutine while the device lock is held, so
// it must not call back into the Device.
type Monitor func(CommandEvent)
