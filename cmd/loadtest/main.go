package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/arena/internal/loadtest"
	"github.com/okian/arena/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers     = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultDuration    = 2 * time.Minute
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9090", "Base URL of the service")
		players  = flag.Int("players", defaultPlayers, "Number of simulated players to queue")
		modeFlag = flag.String("mode", "1v1", "Mode to queue players into")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent match drivers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		duration = flag.Duration("duration", defaultDuration, "How long to keep driving matches")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:  *baseURL,
		Players:  *players,
		Mode:     *modeFlag,
		Workers:  *workers,
		Timeout:  *timeout,
		Duration: *duration,
		Verbose:  *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		os.Exit(1)
	}
}
