package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"shotsync/internal/config"
	"shotsync/internal/services"
	"shotsync/internal/services/kitsu"
)

const kitsuCheckTimeout = 10 * time.Second

// CheckKitsu verifies the Kitsu server answers and accepts the configured
// credentials. It performs a single login attempt.
func CheckKitsu(ctx context.Context, cfg config.Kitsu, opts ...kitsu.Option) Result {
	const name = "Kitsu"

	if strings.TrimSpace(cfg.Server) == "" {
		return Result{Name: name, Detail: "missing server (set KITSU_SERVER)"}
	}
	if cfg.Email == "" || cfg.Password == "" {
		return Result{Name: name, Detail: "missing credentials (set KITSU_EMAIL and KITSU_PASSWORD)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, kitsuCheckTimeout)
	defer cancel()

	client, err := kitsu.New(cfg, opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	version, err := client.ServerInfo(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeKitsuError("unreachable", err)}
	}
	if err := client.Authenticate(checkCtx); err != nil {
		if errors.Is(err, services.ErrAuth) {
			return Result{Name: name, Detail: "login rejected (check credentials)"}
		}
		return Result{Name: name, Detail: summarizeKitsuError("login failed", err)}
	}
	detail := cfg.Server
	if version != "" {
		detail = fmt.Sprintf("%s (%s)", cfg.Server, version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeKitsuError(prefix string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return prefix + " (timed out)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return prefix + " (timed out)"
	}
	return fmt.Sprintf("%s (%v)", prefix, err)
}
