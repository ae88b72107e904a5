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

package main

import (
	"log"

	"github.com/launchman/launchman/launchman/ui"
	"github.com/launchman/launchman/rest"
)

func doUI(client *rest.Client, url string, logger *log.Logger) {
	app := ui.NewApp(client, url)
	app.SetLogger(logger)
	app.Run()
}

/*
   Our screen has the following appearance:

    http://127.0.0.1:8000               Apps                         Launchman
         4 Apps      2 Running      2 Stopped   web: Started
   ____________________________________________________________________________
   web                      running    3000  node    3f2a9c1d
   notes                    running    8001  python  0b7e44aa
   backup                   stopped       -  static  9c0d12ef
   ...
   ____________________________________________________________________________
   [Q]uit [H]elp [L]og [I]nfo [X] Stop
*/
