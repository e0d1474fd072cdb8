package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// SessionEnv names the environment variable holding the session cookie.
const SessionEnv = "HARPIA_SESSION"

// ErrNoServer is returned when no server URL is configured or given.
var ErrNoServer = errors.New("no server configured (use --server or harpia-deck scan)")

// Registry represents the entire settings file.
type Registry struct {
	Version     int                `yaml:"version"`
	Default     string             `yaml:"default,omitempty"` // Name of the default server
	Servers     map[string]*Server `yaml:"servers,omitempty"` // Keyed by server name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Server is a known harpia server.
type Server struct {
	URL      string    `yaml:"url"`
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`       // Browse mDNS when no server is configured
	DiscoverTimeout int    `yaml:"discover_timeout"`    // mDNS discovery timeout in seconds
	LogLevel        string `yaml:"log_level,omitempty"` // Default log level (empty = silent)
	LogFile         string `yaml:"log_file,omitempty"`  // TUI log destination
	ConfirmDelete   bool   `yaml:"confirm_delete"`      // Ask before deleting a button
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
		ConfirmDelete:   true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Servers:     make(map[string]*Server),
		Preferences: defaultPreferences(),
	}
}

// GetServer returns the server named name, or nil.
func (r *Registry) GetServer(name string) *Server {
	return r.Servers[name]
}

// RememberServer records url under name and marks it seen now.
func (r *Registry) RememberServer(name, url string) *Server {
	if r.Servers == nil {
		r.Servers = make(map[string]*Server)
	}
	s, ok := r.Servers[name]
	if !ok {
		s = &Server{}
		r.Servers[name] = s
	}
	s.URL = strings.TrimRight(url, "/")
	s.LastSeen = time.Now()
	return s
}

// SetDefault makes name the default server.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.Servers[name]; !ok {
		return fmt.Errorf("unknown server %q", name)
	}
	r.Default = name
	return nil
}

// ServerNames returns the known server names, sorted.
func (r *Registry) ServerNames() []string {
	names := make([]string, 0, len(r.Servers))
	for name := range r.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveServerURL picks the server to talk to. flag may be a URL or the
// name of a known server; when empty the default server is used.
func (r *Registry) ResolveServerURL(flag string) (string, error) {
	if flag != "" {
		if s, ok := r.Servers[flag]; ok {
			return s.URL, nil
		}
		if strings.Contains(flag, "://") {
			return strings.TrimRight(flag, "/"), nil
		}
		return "", fmt.Errorf("unknown server %q", flag)
	}
	if s, ok := r.Servers[r.Default]; ok && s.URL != "" {
		return s.URL, nil
	}
	if len(r.Servers) == 1 {
		for _, s := range r.Servers {
			return s.URL, nil
		}
	}
	return "", ErrNoServer
}

// Session returns the session cookie from the environment.
func Session() string {
	return os.Getenv(SessionEnv)
}
