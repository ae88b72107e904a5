// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rest

import (
	"time"

	"github.com/launchman/launchman"
)

const (
	mimeJson = "application/json; charset=UTF-8"

	// PollEtagHeader carries the Etag the client already has.  Together
	// with PollTimeHeader it asks the server to hold the request until the
	// resource changes, or the time (in seconds) runs out.
	PollEtagHeader = "X-Launchman-Poll-Etag"
	PollTimeHeader = "X-Launchman-Poll-Time"

	// MaxPollTime caps how long a long poll may be held.
	MaxPollTime = 300 * time.Second
)

// AppInfo is an App along with its current liveness.
type AppInfo struct {
	launchman.App
	Running bool `json:"running"`
}

// ActionReply answers start and stop requests.
type ActionReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Running bool   `json:"running"`
}

type StatusReply struct {
	Running bool `json:"running"`
}

type ManagerInfo struct {
	Name       string    `json:"name"`
	Serial     int64     `json:"serial,string"`
	Tracked    int       `json:"tracked"`
	CreateTime time.Time `json:"created"`
	UpdateTime time.Time `json:"updated"`
	etag       string
}

type LogRecord = launchman.LogRecord

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
