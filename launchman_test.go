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

package launchman

import (
	"log"
	"strings"
	"sync"
	"testing"
)

type testLog struct {
	t *testing.T
}

func (tl *testLog) Write(p []byte) (n int, err error) {
	tl.t.Log(strings.Trim(string(p), "\n"))
	return len(p), nil
}

// SetTestLogger routes the supervisor's log into the test's log.
func SetTestLogger(t *testing.T, s *Supervisor) {
	s.SetLogger(log.New(&testLog{t}, "", 0))
}

// memStore is a Store that lives in memory.
type memStore struct {
	apps []App
	mx   sync.Mutex
}

func (m *memStore) Load() []App {
	m.mx.Lock()
	defer m.mx.Unlock()
	return append([]App{}, m.apps...)
}

func (m *memStore) Save(apps []App) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.apps = append([]App{}, apps...)
	return nil
}
