package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantURL  string
		wantVer  string
	}{
		{
			name: "IPv4 with port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "studio"},
				HostName:      "streampc.local.",
				Port:          5000,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.0.10")},
				Text:          []string{"version=1.4.0"},
			},
			wantName: "studio",
			wantURL:  "http://192.168.0.10:5000",
			wantVer:  "1.4.0",
		},
		{
			name: "missing port defaults",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "casa"},
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantName: "casa",
			wantURL:  "http://10.0.0.5:5000",
		},
		{
			name: "path prefix from TXT",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "proxy"},
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.6")},
				Text:          []string{"path=deck/"},
			},
			wantName: "proxy",
			wantURL:  "http://10.0.0.6:80/deck",
		},
		{
			name: "IPv6 fallback",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "v6"},
				Port:          5000,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantName: "v6",
			wantURL:  "http://[fe80::1]:5000",
		},
		{
			name: "escaped instance name",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: `Studio\ PC`},
				Port:          5000,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.7")},
			},
			wantName: "Studio PC",
			wantURL:  "http://10.0.0.7:5000",
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost"},
				Port:          5000,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if srv != nil {
					t.Errorf("parseServiceEntry() = %+v, want nil", srv)
				}
				return
			}
			if srv == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if srv.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", srv.Name, tt.wantName)
			}
			if got := srv.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %q, want %q", got, tt.wantURL)
			}
			if srv.Version != tt.wantVer {
				t.Errorf("Version = %q, want %q", srv.Version, tt.wantVer)
			}
		})
	}
}

func TestSortServers(t *testing.T) {
	got := sortServers(map[string]*Server{
		"b": {Name: "b"},
		"a": {Name: "a"},
		"c": {Name: "c"},
	})
	if len(got) != 3 || got[0].Name != "a" || got[2].Name != "c" {
		t.Errorf("sortServers() order = %v", got)
	}
}

func TestServerString(t *testing.T) {
	s := &Server{Name: "studio", IP: "10.0.0.1", Port: 5000, Version: "2.0"}
	if got := s.String(); got != "studio at http://10.0.0.1:5000 (v2.0)" {
		t.Errorf("String() = %q", got)
	}
}
