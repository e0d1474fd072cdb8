package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeSessionExpired indicates the server rejected the session (HTTP 401)
	ErrTypeSessionExpired
	// ErrTypeHTTP indicates any other non-2xx response
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the server refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeRequest indicates the request could not be built
	ErrTypeRequest
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeSessionExpired:
		return "Session Expired"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeRequest:
		return "Request Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents a failed call to the server
type APIError struct {
	Type           ErrorType
	Message        string
	StatusCode     int
	Endpoint       string
	Err            error
	NetworkSubtype NetworkErrorSubtype
	// Retryable tells the user a manual retry may succeed. The client
	// itself never retries.
	Retryable bool
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more
// specific error type
func ClassifyNetworkError(err error, endpoint string) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Retryable:      true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &APIError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Server refused connection",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &APIError{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &APIError{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Retryable:      true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, endpoint)
	}

	return &APIError{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Endpoint:       endpoint,
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Retryable:      true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(endpoint, message string, err error) *APIError {
	if classified := ClassifyNetworkError(err, endpoint); classified != nil {
		classified.Message = message
		return classified
	}
	return &APIError{Type: ErrTypeNetwork, Message: message, Endpoint: endpoint, Retryable: true}
}

// NewSessionExpiredError creates a session error
func NewSessionExpiredError(endpoint, message string) *APIError {
	return &APIError{
		Type:       ErrTypeSessionExpired,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Endpoint:   endpoint,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Retryable:  statusCode >= 500,
	}
}

// NewParseError creates a parsing error
func NewParseError(endpoint, message string, err error) *APIError {
	return &APIError{Type: ErrTypeParse, Message: message, Endpoint: endpoint, Err: err}
}

func newRequestError(endpoint, message string, err error) *APIError {
	return &APIError{Type: ErrTypeRequest, Message: message, Endpoint: endpoint, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type, true
	}
	return 0, false
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused and DNS)
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsSessionExpired checks if the server rejected the session
func IsSessionExpired(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeSessionExpired
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeParse
}

// IsRetryable checks if a manual retry may succeed
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The server did not respond in time.",
			"Troubleshooting:",
			"  • Check that the harpia server is running",
			"  • Check your network connection",
		}, "\n")
	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The server refused the connection.",
			"Troubleshooting:",
			"  • Start the harpia server",
			"  • Verify the server URL and port (harpia-deck scan can find it)",
		}, "\n")
	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the server hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of the hostname",
			"  • Run harpia-deck scan to discover servers on the LAN",
		}, "\n")
	case ErrTypeSessionExpired:
		return strings.Join([]string{
			"The session is no longer valid.",
			"Troubleshooting:",
			"  • Log in again in the browser and copy the new session cookie",
			"  • Export it as HARPIA_SESSION",
		}, "\n")
	case ErrTypeNetwork:
		switch apiErr.NetworkSubtype {
		case NetworkErrorHostUnreachable, NetworkErrorNetworkUnreachable:
			return "The server is not reachable. Check that you are on the same network."
		default:
			return "Network communication failed. Check your connection."
		}
	case ErrTypeHTTP:
		if apiErr.StatusCode >= 500 {
			return fmt.Sprintf("The server failed (HTTP %d). Check the server logs.", apiErr.StatusCode)
		}
		return fmt.Sprintf("The server rejected the request (HTTP %d).", apiErr.StatusCode)
	case ErrTypeParse:
		return "The server response could not be read. Client and server versions may differ."
	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "Server not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Server refused connection - is it running?"
	case ErrTypeDNS:
		return "Cannot resolve server hostname"
	case ErrTypeSessionExpired:
		return "Session expired - log in again"
	case ErrTypeNetwork:
		switch apiErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Server unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		if apiErr.Message != "" {
			return fmt.Sprintf("Server error (HTTP %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Sprintf("Server error (HTTP %d)", apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse server response"
	default:
		return apiErr.Message
	}
}
