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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/launchman/launchman"
)

func writeFile(dir, name, content string) string {
	p := filepath.Join(dir, name)
	So(os.WriteFile(p, []byte(content), 0644), ShouldBeNil)
	return p
}

func TestLoad(t *testing.T) {
	Convey("Loading configuration", t, func() {
		wd, err := os.Getwd()
		So(err, ShouldBeNil)
		So(os.Chdir(t.TempDir()), ShouldBeNil)
		defer os.Chdir(wd)
		t.Setenv(PathEnvVar, "")

		Convey("Defaults apply with no file", func() {
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg, ShouldResemble, Default())
			So(cfg.Addr, ShouldEqual, "127.0.0.1:8000")
			port, err := cfg.DashboardPort()
			So(err, ShouldBeNil)
			So(port, ShouldEqual, launchman.DashboardPort)
		})

		Convey("A file overrides defaults", func() {
			p := writeFile(t.TempDir(), "conf.yaml", `
name: bench
addr: 127.0.0.1:9000
grace_period: 2s
metrics: false
`)
			cfg, err := Load(p)
			So(err, ShouldBeNil)
			So(cfg.Name, ShouldEqual, "bench")
			So(cfg.Addr, ShouldEqual, "127.0.0.1:9000")
			So(cfg.GracePeriod, ShouldEqual, 2*time.Second)
			So(cfg.Metrics, ShouldBeFalse)
			So(cfg.SettleDelay, ShouldEqual, launchman.DefaultSettleDelay)

			Convey("And the environment overrides the file", func() {
				t.Setenv("LAUNCHMAN_GRACE_PERIOD", "3s")
				t.Setenv("LAUNCHMAN_APPS_FILE", "/tmp/other.json")
				cfg, err := Load(p)
				So(err, ShouldBeNil)
				So(cfg.GracePeriod, ShouldEqual, 3*time.Second)
				So(cfg.AppsFile, ShouldEqual, "/tmp/other.json")
				So(cfg.Name, ShouldEqual, "bench")
			})
		})

		Convey("The default file is found", func() {
			writeFile(".", "launchman.yaml", "shell: /bin/bash\n")
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.Shell, ShouldEqual, "/bin/bash")
		})

		Convey("LAUNCHMAN_CONFIG names the file", func() {
			p := writeFile(t.TempDir(), "x.yml", "static_dir: /srv/www\n")
			t.Setenv(PathEnvVar, p)
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.StaticDir, ShouldEqual, "/srv/www")
		})

		Convey("A named file must exist", func() {
			_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("Invalid values are rejected", func() {
			p := writeFile(t.TempDir(), "bad.yaml", "settle_delay: 0s\nshell: \"\"\n")
			_, err := Load(p)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "settle_delay")
			So(err.Error(), ShouldContainSubstring, "shell")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Validating configuration", t, func() {
		cfg := Default()
		So(cfg.Validate(), ShouldBeNil)

		cfg.Addr = "nonsense"
		So(cfg.Validate(), ShouldNotBeNil)

		cfg = Default()
		cfg.Addr = ":http"
		So(cfg.Validate(), ShouldNotBeNil)

		cfg = Default()
		cfg.AppsFile = ""
		cfg.ProbeTimeout = -time.Second
		err := cfg.Validate()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "apps_file")
		So(err.Error(), ShouldContainSubstring, "probe_timeout")
	})
}
