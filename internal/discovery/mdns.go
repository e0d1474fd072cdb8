package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/logging"
)

const (
	// ServiceType is the mDNS service harpia servers advertise.
	ServiceType = "_harpia._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultScanTimeout is used when no timeout is given.
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the server's default HTTP port.
	DefaultPort = 5000
)

// Scanner browses for harpia servers.
type Scanner struct {
	Timeout time.Duration
}

// NewScanner creates a scanner with the default timeout.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan browses for Timeout and returns every server seen, sorted by name.
// Re-announcements of the same instance are collapsed.
func (s *Scanner) Scan(ctx context.Context) ([]*Server, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu    sync.Mutex
		found = make(map[string]*Server)
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			srv := parseServiceEntry(entry)
			if srv == nil {
				continue
			}
			logging.Debug("Discovered server", zap.String("name", srv.Name), zap.String("url", srv.BaseURL()))
			mu.Lock()
			found[srv.Name] = srv
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	wg.Wait()

	return sortServers(found), nil
}

// Find waits for the server named name.
func (s *Scanner) Find(ctx context.Context, name string) (*Server, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	match := make(chan *Server, 1)
	go func() {
		for entry := range entries {
			srv := parseServiceEntry(entry)
			if srv != nil && srv.Name == name {
				select {
				case match <- srv:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Lookup(ctx, name, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", name, err)
	}

	select {
	case srv := <-match:
		return srv, nil
	case <-ctx.Done():
		select {
		case srv := <-match:
			return srv, nil
		default:
		}
		return nil, fmt.Errorf("server %q not found within %s", name, timeout)
	}
}

// Scan is a convenience wrapper around Scanner.Scan.
func Scan(ctx context.Context, timeout time.Duration) ([]*Server, error) {
	return (&Scanner{Timeout: timeout}).Scan(ctx)
}

func sortServers(found map[string]*Server) []*Server {
	servers := make([]*Server, 0, len(found))
	for _, srv := range found {
		servers = append(servers, srv)
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })
	return servers
}

// parseServiceEntry converts an mDNS entry to a Server, or nil when it has
// no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Server {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	path := metadata["path"]
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Server{
		Name:         unescapeInstance(entry.Instance),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         path,
		Version:      metadata["version"],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// unescapeInstance removes DNS-SD escaping from instance names such as
// "Studio\ PC".
func unescapeInstance(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
