package preflight

import (
	"context"

	"shotsync/internal/config"
	"shotsync/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options selects the checks RunAll performs.
type Options struct {
	// Media adds the ffmpeg and ffprobe binary checks.
	Media bool
	// Kitsu adds the server reachability and login checks.
	Kitsu bool
}

// RunAll executes the applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if opts.Media {
		for _, status := range deps.CheckBinaries(deps.MediaRequirements(cfg.Media)) {
			results = append(results, fromStatus(status))
		}
	}
	if opts.Kitsu {
		results = append(results, CheckKitsu(ctx, cfg.Kitsu))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
	if status.Available {
		result.Detail = status.Path
	}
	return result
}
