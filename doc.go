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

// Package launchman supervises locally hosted applications on behalf of a
// single-operator dashboard.  Each application is registered with a working
// directory, a shell command and a runtime classification (python, node,
// static or docker), and optionally a TCP port on which it listens.
//
// The Supervisor starts applications in their own process groups, so that
// a stop reaches every child the command forked, and keeps a table of the
// processes it launched.  Liveness is judged from that table first, and
// then by probing the application's port on the loopback interface, so
// that an application started by someone else (or by a previous instance
// of the daemon) is still reported, and can still be stopped.
//
// Application metadata lives in a Registry, backed by a Store (normally a
// JSON file).  The Registry assigns ports with AllocatePort, so that no two
// applications share a listening port.
//
// The rest package exposes all of this over HTTP; the launchmand command
// is the daemon, and the launchman command is its client.
package launchman
