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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAllocatePort(t *testing.T) {
	Convey("Allocating ports", t, func() {
		Convey("A free preferred port is kept", func() {
			So(AllocatePort(nil, 3000), ShouldEqual, 3000)
			So(AllocatePort([]int{3001, 5000}, 3000), ShouldEqual, 3000)
		})
		Convey("The dashboard port is always reserved", func() {
			So(AllocatePort(nil, DashboardPort), ShouldEqual, 8001)
		})
		Convey("A taken port moves past the highest used port", func() {
			So(AllocatePort([]int{3000, 9000}, 3000), ShouldEqual, 9001)
			So(AllocatePort([]int{3000}, 3000), ShouldEqual, 8001)
		})
		Convey("Gaps below the highest port are not reused", func() {
			p := AllocatePort([]int{8001, 8003}, 8001)
			So(p, ShouldEqual, 8004)
		})
		Convey("Extra reserved ports are honoured", func() {
			So(AllocatePort(nil, 9090, 9090), ShouldEqual, 9091)
			So(AllocatePort([]int{3000}, 3000, 8500), ShouldEqual, 8501)
		})
		Convey("The result is never a used port", func() {
			existing := []int{3000, 3001, 8001, 8080}
			for _, pref := range []int{3000, 3001, 8000, 8001, 8080} {
				p := AllocatePort(existing, pref)
				So(p, ShouldNotEqual, DashboardPort)
				So(existing, ShouldNotContain, p)
			}
		})
		Convey("Port zero is always granted", func() {
			So(AllocatePort([]int{0, 0, 3000}, 0), ShouldEqual, 0)
		})
		Convey("Port zero does not count as used", func() {
			So(AllocatePort([]int{0}, 3000), ShouldEqual, 3000)
		})
	})
}
