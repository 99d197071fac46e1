// Runs the ringlist demonstration, or serves named lists over the Redis protocol.

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/nobletooth/ringlist/pkg/circlist"
	"github.com/nobletooth/ringlist/pkg/config"
	"github.com/nobletooth/ringlist/pkg/port"
	"github.com/nobletooth/ringlist/pkg/registry"
	"github.com/nobletooth/ringlist/pkg/utils"
)

var (
	printVersion = flag.Bool("print_version", false, "Print the version and exit.")
	demo         = flag.Bool("demo", false, "Run the list demonstration on stdout and exit.")
)

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Ringlist build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			slog.Error("Demonstration failed.", "error", err)
			os.Exit(circlist.ExitCode(err))
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	var wg sync.WaitGroup
	var metricsErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		metricsErr = port.RunMetricsServer(ctx)
	}()

	serverErr := port.RunRedisServer(ctx, registry.NewFromFlags())
	cancel()
	wg.Wait()
	if err := errors.Join(serverErr, metricsErr); err != nil {
		slog.Error("Ringlist server stopped.", "error", err, "uptime", utils.Uptime())
		os.Exit(circlist.ExitFailure)
	}
	slog.Info("Ringlist server stopped.", "uptime", utils.Uptime())
}
