// Build information, injected through -ldflags at release time, e.g.
//   go build -ldflags "-X github.com/nobletooth/ringlist/pkg/utils.Version=v1.2.0" ./cmd/ringlist
// CAUTION: Renaming these variables silently breaks the -X flags that set them.

package utils

import (
	"log/slog"
	"strconv"
	"time"
)

const devVersion = "v0.0.0-dev"

var (
	TestMode   string // Set to "true" by the test build.
	IsTestMode bool
	Version    string
	Commit     string
	BuildTime  string
	StartTime  time.Time
)

func init() {
	StartTime = time.Now()

	// Unreleased builds still carry a valid semantic version.
	if Version == "" {
		Version = devVersion
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if BuildTime == "" {
		BuildTime = "unknown"
	}
	if len(TestMode) > 0 {
		if isTestMode, err := strconv.ParseBool(TestMode); err == nil {
			IsTestMode = isTestMode
		} else {
			slog.Warn("Failed to parse TestMode build flag, defaulting to false.", "error", err)
		}
	}
}

// Uptime returns how long the process has been running.
func Uptime() time.Duration {
	return time.Since(StartTime)
}
