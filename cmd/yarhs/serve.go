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
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/discovery"
	"github.com/yarhs-io/yarhs/internal/logwriter"
	"github.com/yarhs-io/yarhs/internal/metrics"
	"github.com/yarhs-io/yarhs/internal/netutil"
	"github.com/yarhs-io/yarhs/internal/overlay"
	"github.com/yarhs-io/yarhs/internal/router"
	"github.com/yarhs-io/yarhs/internal/server"
	"github.com/yarhs-io/yarhs/internal/signalbus"
	"github.com/yarhs-io/yarhs/internal/workgroup"
	"github.com/yarhs-io/yarhs/internal/xds"
)

// serveContext holds the flags of the "serve" command.
type serveContext struct {
	ConfigPath         string
	DisablePersistence bool
}

func registerServe(app *kingpin.Application) (*kingpin.CmdClause, *serveContext) {
	var ctx serveContext

	serve := app.Command("serve", "Start the edge server.")
	serve.Flag("config", "Base config file path, without extension.").Short('c').Required().StringVar(&ctx.ConfigPath)
	serve.Flag("disable-persistence", "Disable the durable state.toml overlay.").BoolVar(&ctx.DisablePersistence)

	return serve, &ctx
}

// doServe wires every component into a workgroup.Group and blocks until
// shutdown. A base-config load failure exits the process with code 1 here;
// any other non-nil error returned is a fatal startup failure, which main
// turns into exit code 2.
func doServe(ctx *serveContext, log *logrus.Logger) error {
	configPath := ctx.ConfigPath + ".toml"

	base, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Error("loading configuration")
		os.Exit(1)
	}

	overlayMgr := overlay.NewManager(configPath, !ctx.DisablePersistence)
	merged := overlayMgr.Merge(base)

	if level, err := logrus.ParseLevel(merged.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	logs, err := logwriter.New(merged.Logging.AccessLogFile, merged.Logging.ErrorLogFile)
	if err != nil {
		return fmt.Errorf("opening log sinks: %w", err)
	}
	defer logs.Close()

	store := xds.NewStore(merged)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	mainStaged := &server.StagedEndpoint{}
	apiStaged := &server.StagedEndpoint{}
	mainCounter := &server.ConnCounter{}
	apiCounter := &server.ConnCounter{}

	mainReload := make(chan struct{}, 1)
	apiReload := make(chan struct{}, 1)

	bus := signalbus.New(log.WithField("context", "signalbus"))
	defer bus.Stop()

	dataPlane := &router.Router{
		Store:    store,
		Log:      log.WithField("context", "router"),
		Metrics:  m,
		NotFound: defaultNotFound,
	}
	logged := router.AccessLogMiddleware(store, logs, dataPlane)

	discoveryAPI := &discovery.API{
		Store:      store,
		Overlay:    overlayMgr,
		Log:        log.WithField("context", "discovery"),
		Metrics:    m,
		MainStaged: mainStaged,
		APIStaged:  apiStaged,
		MainReload: mainReload,
		APIReload:  apiReload,
	}

	mainServer := &connDispatcher{store: store, log: log.WithField("context", "main_server"), handler: logged}
	apiServer := &connDispatcher{store: store, log: log.WithField("context", "api_server"), handler: discoveryAPI}

	listener := store.Listener().ReadSnapshot()
	mainLn, err := netutil.Listen(context.Background(), hostPort(listener.Main))
	if err != nil {
		return fmt.Errorf("binding data-plane listener: %w", err)
	}
	apiLn, err := netutil.Listen(context.Background(), hostPort(listener.API))
	if err != nil {
		_ = mainLn.Close()
		return fmt.Errorf("binding management listener: %w", err)
	}

	mainLoop := &server.AcceptLoop{
		Name:       "main_server",
		Log:        log.WithField("context", "main_server"),
		Store:      store,
		Staged:     mainStaged,
		Reload:     mainReload,
		Counter:    mainCounter,
		Metrics:    m,
		EnforceMax: true,
		Dispatch:   mainServer.Serve,
	}
	apiLoop := &server.AcceptLoop{
		Name:       "api_server",
		Log:        log.WithField("context", "api_server"),
		Store:      store,
		Staged:     apiStaged,
		Reload:     apiReload,
		Counter:    apiCounter,
		Metrics:    m,
		EnforceMax: false,
		Dispatch:   apiServer.Serve,
	}

	var group workgroup.Group
	group.Add(func(ctx context.Context) error {
		return mainLoop.Run(ctx, mainLn)
	})
	group.Add(func(ctx context.Context) error {
		return apiLoop.Run(ctx, apiLn)
	})
	group.Add(func(ctx context.Context) error {
		select {
		case <-bus.Shutdown():
			perf := store.Performance().ReadSnapshot()
			server.GracefulShutdown(ctx, log.WithField("context", "shutdown"), perf, mainCounter, apiCounter)
			return nil
		case <-ctx.Done():
			return nil
		}
	})
	group.Add(func(ctx context.Context) error {
		for {
			select {
			case <-bus.Reload():
				notify(mainReload)
				notify(apiReload)
			case <-ctx.Done():
				return nil
			}
		}
	})

	log.WithFields(logrus.Fields{
		"main_server": hostPort(listener.Main),
		"api_server":  hostPort(listener.API),
	}).Info("yarhs: listening")

	return group.Run(context.Background())
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func hostPort(ep config.Endpoint) string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(int(ep.Port)))
}

// connDispatcher reads a fresh Performance snapshot at the start of every
// connection (spec.md §4.7: "read once at connection start") and hands the
// connection to a one-shot http.Server bound to handler.
type connDispatcher struct {
	store   *xds.Store
	log     logrus.FieldLogger
	handler http.Handler
}

func (d *connDispatcher) Serve(ctx context.Context, conn net.Conn) {
	cs := &server.ConnServer{
		Log:         d.log,
		Performance: d.store.Performance().ReadSnapshot(),
		Handler:     d.handler,
	}
	cs.Serve(ctx, conn)
}

func defaultNotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "404 page not found", http.StatusNotFound)
}
