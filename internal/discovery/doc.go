// Package discovery finds harpia servers on the local network over mDNS.
//
// Servers advertise the "_harpia._tcp" service. The instance name becomes
// the server name remembered in the settings file, and the optional TXT
// records "path" and "version" describe where the dashboard is mounted
// and which server build answered.
//
//	servers, err := discovery.Scan(ctx, 5*time.Second)
//	for _, s := range servers {
//	    fmt.Println(s.Name, s.BaseURL())
//	}
//
// Discovery needs multicast on the local segment (UDP 5353).
package discovery
