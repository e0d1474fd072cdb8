package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harpiadesk/harpia/internal/deck"
	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// SessionCookie is the name of the server's session cookie
	SessionCookie = "session"

	// UploadField is the multipart field carrying an uploaded image
	UploadField = "croppedImage"

	maxErrorBody = 4096
)

// Endpoint paths.
const (
	PathDeckConfig    = "/api/deck_config"
	PathSaveButton    = "/api/save_button"
	PathDeleteButton  = "/api/delete_button"
	PathSaveLayout    = "/api/save_deck_layout"
	PathUploadImage   = "/api/upload_image"
	PathChannelInfo   = "/api/channel_info"
	PathUpdateChannel = "/api/update_channel"
	PathStreamStats   = "/api/stream_stats"
	PathSearchGames   = "/api/search_games"
)

// Client talks to one harpia server
type Client struct {
	// BaseURL is the server root (e.g., "http://192.168.0.10:5000")
	BaseURL string

	// Session is the value of the session cookie
	Session string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL authenticated with session
func NewClient(baseURL, session string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Session:    session,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// URL resolves a server-relative path such as an uploaded icon.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// DeckConfig fetches the full deck configuration
func (c *Client) DeckConfig(ctx context.Context) (*deck.Configuration, error) {
	body, err := c.do(ctx, http.MethodGet, PathDeckConfig, nil, "")
	if err != nil {
		return nil, err
	}
	cfg, err := deck.Parse(body)
	if err != nil {
		return nil, NewParseError(PathDeckConfig, "failed to parse deck configuration", err)
	}
	return cfg, nil
}

// SaveButton stores one button of deckID. The server pushes the resulting
// configuration to every client.
func (c *Client) SaveButton(ctx context.Context, deckID deck.DeckID, slot deck.SlotID, cfg deck.ButtonConfig) error {
	return c.postJSON(ctx, PathSaveButton, SaveButtonRequest{SlotID: slot, DeckID: deckID, Config: cfg}, nil)
}

// DeleteButton removes one button. Deleting an absent button succeeds.
func (c *Client) DeleteButton(ctx context.Context, deckID deck.DeckID, slot deck.SlotID) error {
	return c.postJSON(ctx, PathDeleteButton, DeleteButtonRequest{SlotID: slot, DeckID: deckID}, nil)
}

// SaveLayout replaces the whole button map of deckID.
func (c *Client) SaveLayout(ctx context.Context, deckID deck.DeckID, buttons deck.Buttons) error {
	if buttons == nil {
		buttons = deck.Buttons{}
	}
	return c.postJSON(ctx, PathSaveLayout, SaveLayoutRequest{DeckID: deckID, Buttons: buttons}, nil)
}

// UploadImage uploads an icon image and returns the URL the server stores
// it under.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return "", newRequestError(PathUploadImage, "failed to create multipart body", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", newRequestError(PathUploadImage, "failed to read image", err)
	}
	if err := mw.Close(); err != nil {
		return "", newRequestError(PathUploadImage, "failed to finish multipart body", err)
	}

	body, err := c.do(ctx, http.MethodPost, PathUploadImage, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewParseError(PathUploadImage, "failed to parse upload response", err)
	}
	if resp.URL == "" {
		return "", NewParseError(PathUploadImage, "upload response has no url", nil)
	}
	return resp.URL, nil
}

// ChannelInfo fetches the channel title and category
func (c *Client) ChannelInfo(ctx context.Context) (*ChannelInfo, error) {
	var info ChannelInfo
	if err := c.getJSON(ctx, PathChannelInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateChannel changes the channel title and category
func (c *Client) UpdateChannel(ctx context.Context, update ChannelUpdate) error {
	return c.postJSON(ctx, PathUpdateChannel, update, nil)
}

// StreamStats fetches the live stream state
func (c *Client) StreamStats(ctx context.Context) (*StreamStats, error) {
	var stats StreamStats
	if err := c.getJSON(ctx, PathStreamStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SearchGames searches categories by name
func (c *Client) SearchGames(ctx context.Context, query string) ([]Game, error) {
	var games []Game
	path := PathSearchGames + "?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewParseError(path, "failed to parse JSON response", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return newRequestError(path, "failed to encode request", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewParseError(path, "failed to parse JSON response", err)
	}
	return nil
}

// do performs a single request and maps failures onto APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, newRequestError(endpoint, fmt.Sprintf("failed to create %s request", method), err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.Session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.Session})
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogHTTPRequest(method, endpoint, 0, err)
		return nil, NewNetworkError(endpoint, method+" request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()
	logging.LogHTTPRequest(method, endpoint, resp.StatusCode, nil)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewSessionExpiredError(endpoint, serverMessage(resp.Body, "session expired"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(endpoint, resp.StatusCode, serverMessage(resp.Body, http.StatusText(resp.StatusCode)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(endpoint, "failed to read response body", err)
	}
	return data, nil
}

// serverMessage extracts the {"error": "..."} message of a failed response.
func serverMessage(r io.Reader, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	return fallback
}
