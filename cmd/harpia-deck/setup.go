package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/api"
	"github.com/harpiadesk/harpia/internal/config"
	"github.com/harpiadesk/harpia/internal/discovery"
	"github.com/harpiadesk/harpia/internal/logging"
)

// Global flags
var (
	serverFlag  string
	logLevel    string
	logFile     string
	httpTimeout time.Duration
)

// registry is loaded once before any command runs.
var registry *config.Registry

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL or name of a known server")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "http-timeout", api.DefaultTimeout, "HTTP request timeout")
}

// setup loads the settings file and starts logging. Flags win over the
// settings file.
func setup(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	registry = reg

	level := logLevel
	if level == "" {
		level = reg.Preferences.LogLevel
	}
	path := logFile
	if path == "" {
		path = reg.Preferences.LogFile
	}
	// The control panel owns the terminal, so its logs go to a file.
	if !cmd.HasParent() && path == "" {
		if dir, err := config.GetConfigDir(); err == nil {
			path = filepath.Join(dir, "harpia-deck.log")
		}
	}
	if err := logging.Initialize(level, path); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// serverURL resolves the server to use. With nothing configured and
// auto-discovery on, a single server found on the network is remembered
// and used.
func serverURL(ctx context.Context) (string, error) {
	url, err := registry.ResolveServerURL(serverFlag)
	if err == nil {
		return url, nil
	}
	if !errors.Is(err, config.ErrNoServer) || !registry.Preferences.AutoDiscover {
		return "", err
	}

	timeout := time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	fmt.Printf("No server configured, browsing the network (%s)...\n", timeout)
	servers, scanErr := discovery.Scan(ctx, timeout)
	if scanErr != nil {
		return "", fmt.Errorf("discovery failed: %w", scanErr)
	}
	switch len(servers) {
	case 0:
		return "", err
	case 1:
		s := servers[0]
		fmt.Printf("Found %s\n\n", s)
		registry.RememberServer(s.Name, s.BaseURL())
		_ = registry.SetDefault(s.Name)
		if saveErr := registry.Save(); saveErr != nil {
			logging.Warn("Failed to save settings", zap.Error(saveErr))
		}
		return s.BaseURL(), nil
	default:
		fmt.Printf("Found %d servers:\n", len(servers))
		for _, s := range servers {
			fmt.Printf("  %s\n", s)
		}
		return "", fmt.Errorf("multiple servers found; use --server <name> or harpia-deck scan --default <name>")
	}
}

// newClient builds the API client for the resolved server.
func newClient(ctx context.Context) (*api.Client, error) {
	url, err := serverURL(ctx)
	if err != nil {
		return nil, err
	}
	session := config.Session()
	if session == "" {
		logging.Warn("No session cookie set", zap.String("env", config.SessionEnv))
	}
	client := api.NewClient(url, session)
	client.SetTimeout(httpTimeout)
	return client, nil
}

// explain turns API errors into a message with a hint.
func explain(err error) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if hint := api.GetTroubleshootingHint(apiErr); hint != "" {
		return fmt.Errorf("%s\n\n%s", api.GetShortErrorMessage(apiErr), hint)
	}
	return errors.New(api.GetShortErrorMessage(apiErr))
}
