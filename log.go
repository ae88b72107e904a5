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
	"strings"
	"sync"
	"time"
)

const (
	MaxLogRecords = 1000
)

type LogRecord struct {
	Id   int64     `json:"id,string"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Log keeps the most recent lines written to it in a ring.  It implements
// io.Writer, so that a log.Logger can write into it.  Each line gets an id
// one larger than the last; the newest id doubles as an Etag for clients
// polling the log.
type Log struct {
	ring  []LogRecord
	count int // lines written; may exceed len(ring)
	id    int64
	cv    *sync.Cond
	mx    sync.Mutex
}

func (l *Log) Write(b []byte) (int, error) {
	now := time.Now()
	l.mx.Lock()
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		l.id++
		l.ring[l.count%len(l.ring)] = LogRecord{Id: l.id, Time: now, Text: line}
		l.count++
	}
	l.cv.Broadcast()
	l.mx.Unlock()
	return len(b), nil
}

// Records returns the retained records, oldest first, and the id of the
// newest record.  If last is already the newest id, nothing has changed
// and nil is returned along with last.
func (l *Log) Records(last int64) ([]LogRecord, int64) {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.id == last {
		return nil, last
	}
	n := l.count
	if n > len(l.ring) {
		n = len(l.ring)
	}
	recs := make([]LogRecord, 0, n)
	for i := l.count - n; i < l.count; i++ {
		recs = append(recs, l.ring[i%len(l.ring)])
	}
	return recs, l.id
}

// Watch blocks until a record newer than last is written, or until expire
// has elapsed, and returns the newest id.  An expire of zero just polls.
func (l *Log) Watch(last int64, expire time.Duration) int64 {
	l.mx.Lock()
	defer l.mx.Unlock()
	if expire <= 0 || l.id != last {
		return l.id
	}
	expired := false
	timer := time.AfterFunc(expire, func() {
		l.mx.Lock()
		expired = true
		l.cv.Broadcast()
		l.mx.Unlock()
	})
	defer timer.Stop()
	for l.id == last && !expired {
		l.cv.Wait()
	}
	return l.id
}

// NewLog returns a Log retaining up to size records, or MaxLogRecords if
// size is not positive.  Ids start at the current time in nanoseconds, so
// that a client holding an id from a previous daemon sees a change.
func NewLog(size int) *Log {
	if size <= 0 {
		size = MaxLogRecords
	}
	l := &Log{
		ring: make([]LogRecord, size),
		id:   time.Now().UnixNano(),
	}
	l.cv = sync.NewCond(&l.mx)
	return l
}
