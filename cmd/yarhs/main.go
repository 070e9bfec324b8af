// Copyright Project Contour Authors
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

package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.StandardLogger()

	app := kingpin.New("yarhs", "Yet Another Rust HTTP Server, reimplemented: an edge server with a live xDS-style control plane.")
	app.HelpFlag.Short('h')

	serve, serveCtx := registerServe(app)

	args := os.Args[1:]

	switch kingpin.MustParse(app.Parse(args)) {
	case serve.FullCommand():
		if err := doServe(serveCtx, log); err != nil {
			log.WithError(err).Error("yarhs server failed")
			os.Exit(2)
		}
	default:
		app.Usage(args)
		os.Exit(1)
	}
}
