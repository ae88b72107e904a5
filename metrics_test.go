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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrometheusMetrics(t *testing.T) {
	Convey("Given prometheus metrics", t, func() {
		pm := NewPrometheusMetrics("")

		Convey("Events are counted", func() {
			pm.Launch("a1", "started")
			pm.Launch("a1", "started")
			pm.Launch("a1", "spawn_failed")
			pm.Stop("a1", "port")
			pm.ForcedKill("a1")
			pm.LivenessCheck("down")
			pm.Tracked(3)
			pm.TerminationDuration("a1", 150*time.Millisecond)

			So(testutil.ToFloat64(pm.launches.WithLabelValues("a1", "started")), ShouldEqual, 2)
			So(testutil.ToFloat64(pm.launches.WithLabelValues("a1", "spawn_failed")), ShouldEqual, 1)
			So(testutil.ToFloat64(pm.stops.WithLabelValues("a1", "port")), ShouldEqual, 1)
			So(testutil.ToFloat64(pm.forced.WithLabelValues("a1")), ShouldEqual, 1)
			So(testutil.ToFloat64(pm.liveness.WithLabelValues("down")), ShouldEqual, 1)
			So(testutil.ToFloat64(pm.tracked), ShouldEqual, 3)
			So(testutil.CollectAndCount(pm.termination), ShouldEqual, 1)
		})

		Convey("Everything is on the private registry", func() {
			pm.Tracked(1)
			expected := `
# HELP launchman_tracked_processes Processes currently tracked by the supervisor
# TYPE launchman_tracked_processes gauge
launchman_tracked_processes 1
`
			e := testutil.GatherAndCompare(pm.Registry(),
				strings.NewReader(expected), "launchman_tracked_processes")
			So(e, ShouldBeNil)
		})
	})

	Convey("The supervisor reports liveness checks", t, func() {
		pm := NewPrometheusMetrics("test")
		s := NewSupervisor("metrics", NewRegistry(&memStore{}))
		SetTestLogger(t, s)
		s.SetMetrics(pm)

		So(s.IsRunning("none", 0), ShouldBeFalse)
		So(testutil.ToFloat64(pm.liveness.WithLabelValues("down")), ShouldEqual, 1)
	})
}
