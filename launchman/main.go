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

// Command launchman is the client for launchmand.  It uses subcommands.
//
// The flags are
//
//	-a <address>	- the daemon's address, default is
//			  http://127.0.0.1:8000
//	-l <file>	- log the user interface to file
//
// Subcommands are
//
//	apps                 - list registered apps
//	status [<id> ...]    - show status for the named apps (or all)
//	info <id>            - show details of an app
//	add [flags] <name>   - register an app (see add -h)
//	rm <id>              - stop and remove an app
//	start <id>           - start an app
//	stop <id>            - stop an app
//	log                  - show the daemon's log
//	ui                   - run the terminal user interface (the default)
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/launchman/launchman"
	"github.com/launchman/launchman/launchman/util"
	"github.com/launchman/launchman/rest"
)

var addr string = "http://127.0.0.1:8000"
var logFile string = ""

func usage() {
	log.Fatalf("Usage: %s [-a <address>] [-l <logfile>] <subcommand>",
		os.Args[0])
}

func showStatus(a *rest.AppInfo) {
	fmt.Printf("%-10s %-20s %-8s %6s\n", a.Id, a.Name,
		util.Status(a), util.FormatPort(a.Port))
}

func doAdd(client *rest.Client, args []string) {
	spec := &launchman.AppSpec{}
	var kind string
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	fs.IntVar(&spec.Port, "port", 0, "preferred port (0 for command line apps)")
	fs.StringVar(&spec.Path, "path", "", "working directory")
	fs.StringVar(&spec.Runtime.Command, "cmd", "", "command to run")
	fs.StringVar(&kind, "type", string(launchman.RuntimeStatic),
		"runtime: python, node, static or docker")
	fs.StringVar(&spec.Runtime.Venv, "venv", "", "python virtual environment")
	fs.StringVar(&spec.Description, "desc", "", "description")
	fs.StringVar(&spec.Color, "color", "", "dashboard color")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	spec.Name = fs.Arg(0)
	spec.Runtime.Kind = launchman.RuntimeKind(kind)
	if spec.Path == "" {
		spec.Path, _ = os.Getwd()
	}

	a, e := client.AddApp(spec)
	if e != nil {
		log.Fatalf("Failed: %v", e)
	}
	if spec.Port != 0 && a.Port != spec.Port {
		fmt.Printf("Port %d is taken, using %d\n", spec.Port, a.Port)
	}
	fmt.Println(a.Id)
}

func main() {
	flag.StringVar(&addr, "a", addr, "launchman address")
	flag.StringVar(&logFile, "l", logFile, "log file for the user interface")
	flag.Parse()

	client := rest.NewClient(nil, addr)

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"ui"}
	}

	switch args[0] {
	case "apps":
		if len(args) != 1 {
			usage()
		}
		apps, e := client.Apps()
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		for _, a := range apps {
			fmt.Printf("%-10s %s\n", a.Id, a.Name)
		}
	case "status":
		var infos []*rest.AppInfo
		if len(args) == 1 {
			apps, e := client.Apps()
			if e != nil {
				log.Fatalf("Failed: %v", e)
			}
			infos = apps
		}
		for _, id := range args[1:] {
			info, e := client.GetApp(id)
			if e == nil {
				infos = append(infos, info)
			} else {
				log.Printf("Failed: %s: %v", id, e)
			}
		}
		util.SortApps(infos)
		for _, info := range infos {
			showStatus(info)
		}
	case "info":
		if len(args) != 2 {
			usage()
		}
		a, e := client.GetApp(args[1])
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		for _, line := range util.Details(a) {
			fmt.Println(line)
		}
	case "add":
		doAdd(client, args[1:])
	case "rm":
		if len(args) != 2 {
			usage()
		}
		if e := client.DeleteApp(args[1]); e != nil {
			log.Fatalf("Failed: %v", e)
		}
	case "start":
		if len(args) != 2 {
			usage()
		}
		r, e := client.StartApp(args[1])
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		fmt.Println(r.Message)
		if !r.Running {
			fmt.Println("The app is not running; see the log")
			os.Exit(1)
		}
	case "stop":
		if len(args) != 2 {
			usage()
		}
		r, e := client.StopApp(args[1])
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		fmt.Println(r.Message)
	case "log":
		if len(args) != 1 {
			usage()
		}
		l, e := client.GetLog()
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		for _, r := range l.Records {
			fmt.Printf("%s %s\n", r.Time.Format(time.StampMilli), r.Text)
		}
	case "ui":
		var w io.Writer = io.Discard
		if logFile != "" {
			f, e := os.OpenFile(logFile,
				os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if e != nil {
				log.Fatalf("Failed: %v", e)
			}
			defer f.Close()
			w = f
		}
		doUI(client, addr, log.New(w, "", log.LstdFlags))
	default:
		usage()
	}
}
