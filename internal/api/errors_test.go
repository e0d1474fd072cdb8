package api

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestClassifyNetworkError(t *testing.T) {
	wrap := func(err error) error {
		return &url.Error{Op: "Get", URL: "http://10.0.0.5:5000", Err: &net.OpError{Op: "dial", Net: "tcp", Err: err}}
	}

	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
		retryable   bool
	}{
		{"timeout", wrap(&timeoutError{}), ErrTypeTimeout, NetworkErrorTimeout, true},
		{"refused", wrap(syscall.ECONNREFUSED), ErrTypeConnectionRefused, NetworkErrorConnectionRefused, true},
		{"host unreachable", wrap(syscall.EHOSTUNREACH), ErrTypeNetwork, NetworkErrorHostUnreachable, true},
		{"net unreachable", wrap(syscall.ENETUNREACH), ErrTypeNetwork, NetworkErrorNetworkUnreachable, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "harpia.local", IsNotFound: true}, ErrTypeDNS, NetworkErrorDNS, false},
		{"generic", fmt.Errorf("boom"), ErrTypeNetwork, NetworkErrorGeneral, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ClassifyNetworkError(tt.err, PathDeckConfig)
			if apiErr == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", apiErr.Type, tt.wantType)
			}
			if apiErr.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", apiErr.NetworkSubtype, tt.wantSubtype)
			}
			if apiErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", apiErr.Retryable, tt.retryable)
			}
			if apiErr.Endpoint != PathDeckConfig {
				t.Errorf("Endpoint = %q", apiErr.Endpoint)
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestPredicates_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading deck: %w", NewSessionExpiredError(PathDeckConfig, "expired"))
	if !IsSessionExpired(err) {
		t.Error("IsSessionExpired() should see through wrapping")
	}
	if IsNetworkError(err) || IsHTTPError(err) || IsParseError(err) {
		t.Error("session error matched another predicate")
	}
	if IsSessionExpired(fmt.Errorf("plain")) {
		t.Error("plain error matched IsSessionExpired")
	}
}

func TestNewHTTPError_RetryableForServerErrors(t *testing.T) {
	if NewHTTPError("/x", 400, "bad").Retryable {
		t.Error("4xx should not be retryable")
	}
	if !NewHTTPError("/x", 503, "down").Retryable {
		t.Error("5xx should be retryable")
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewSessionExpiredError("/x", "expired"), "Session expired"},
		{&APIError{Type: ErrTypeTimeout}, "timeout"},
		{&APIError{Type: ErrTypeConnectionRefused}, "refused"},
		{NewHTTPError("/x", 500, ""), "HTTP 500"},
		{NewParseError("/x", "bad", nil), "parse"},
		{fmt.Errorf("plain failure"), "plain failure"},
	}
	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("GetShortErrorMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	hint := GetTroubleshootingHint(NewSessionExpiredError("/x", "expired"))
	if !strings.Contains(hint, "HARPIA_SESSION") {
		t.Errorf("hint = %q, want mention of HARPIA_SESSION", hint)
	}
	if hint := GetTroubleshootingHint(fmt.Errorf("x")); !strings.Contains(hint, "unexpected") {
		t.Errorf("hint = %q", hint)
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeSessionExpired, "Session Expired"},
		{ErrTypeHTTP, "HTTP Error"},
		{ErrTypeParse, "Parse Error"},
		{ErrorType(99), "ErrorType(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.errorType.String(); got != tt.expected {
				t.Errorf("ErrorType.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// timeoutError is a mock error that implements timeout behavior
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
