package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Server is a harpia server found on the network.
type Server struct {
	// Name is the advertised instance name (e.g. "studio").
	Name string

	// Hostname is the mDNS hostname (e.g. "streampc.local.").
	Hostname string

	IP   string
	Port int

	// Path is the URL prefix the dashboard is mounted under, usually empty.
	Path string

	// Version is the server build reported in TXT, if any.
	Version string

	Metadata map[string]string

	DiscoveredAt time.Time
}

func (s *Server) String() string {
	if s.Version != "" {
		return fmt.Sprintf("%s at %s (v%s)", s.Name, s.BaseURL(), s.Version)
	}
	return fmt.Sprintf("%s at %s", s.Name, s.BaseURL())
}

// BaseURL returns the HTTP base URL of the server.
func (s *Server) BaseURL() string {
	host := net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
	return "http://" + host + strings.TrimRight(s.Path, "/")
}
