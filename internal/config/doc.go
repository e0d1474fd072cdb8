// Package config manages the client settings file of harpia-deck.
//
// The file stores known servers and preferences. It follows OS-specific
// conventions for its location:
//   - Linux: $XDG_CONFIG_HOME/harpia/config.yaml or $HOME/.config/harpia/config.yaml
//   - macOS: $HOME/.config/harpia/config.yaml
//   - Windows: %LOCALAPPDATA%\harpia\config.yaml
//
// # Security
//
// The session cookie is NEVER stored. It is read from the HARPIA_SESSION
// environment variable on every run.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.RememberServer("studio", "http://192.168.0.10:5000")
//	registry.SetDefault("studio")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
