package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harpiadesk/harpia/internal/deck"
)

const mockDeckConfig = `{"decks":{"root":{"slot-0":{"label":"Cena","icon":"fa-solid fa-video","is_stateful":false,"actions_on":[{"type":"obs_scene","params":{"scene_name":"Game"}}],"actions_off":[]}}},"settings":{"start_deck":"root"}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL, "abc123")
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://10.0.0.5:5000/", "s")

	if client.BaseURL != "http://10.0.0.5:5000" {
		t.Errorf("BaseURL = %s, want trailing slash trimmed", client.BaseURL)
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
}

func TestClient_URL(t *testing.T) {
	client := NewClient("http://host:5000", "")
	tests := []struct {
		in, want string
	}{
		{"/uploads/a.png", "http://host:5000/uploads/a.png"},
		{"uploads/a.png", "http://host:5000/uploads/a.png"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
	}
	for _, tt := range tests {
		if got := client.URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeckConfig_Success(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != PathDeckConfig {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value != "abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(mockDeckConfig))
	})

	cfg, err := client.DeckConfig(context.Background())
	if err != nil {
		t.Fatalf("DeckConfig() error = %v", err)
	}
	if cfg.Settings.StartDeck != deck.RootDeck {
		t.Errorf("StartDeck = %q, want root", cfg.Settings.StartDeck)
	}
	b, ok := cfg.Deck(deck.RootDeck)["slot-0"]
	if !ok || b.Label != "Cena" {
		t.Errorf("slot-0 = %+v", b)
	}
}

func TestDeckConfig_SessionExpired(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Sessão expirada. Faça login novamente."}`))
	})

	_, err := client.DeckConfig(context.Background())
	if !IsSessionExpired(err) {
		t.Fatalf("error = %v, want session expired", err)
	}
	if !strings.Contains(err.Error(), "Sessão expirada") {
		t.Errorf("error = %q, want server message", err.Error())
	}
	if IsRetryable(err) {
		t.Error("session expiry should not be retryable")
	}
}

func TestDeckConfig_MalformedJSON(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"decks":`))
	})

	_, err := client.DeckConfig(context.Background())
	if !IsParseError(err) {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestSaveButton_Body(t *testing.T) {
	var got SaveButtonRequest
	var raw map[string]any
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSaveButton || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &got)
		json.Unmarshal(data, &raw)
		w.Write([]byte(`{"success":true}`))
	})

	cfg := deck.ButtonConfig{
		Label:     "Som",
		ActionsOn: []deck.Action{{Type: deck.ActionSound, Params: map[string]string{deck.ParamFileName: "a.mp3"}}},
	}
	if err := client.SaveButton(context.Background(), "musica", "slot-4", cfg); err != nil {
		t.Fatalf("SaveButton() error = %v", err)
	}
	if got.SlotID != "slot-4" || got.DeckID != "musica" || got.Config.Label != "Som" {
		t.Errorf("body = %+v", got)
	}
	config := raw["config"].(map[string]any)
	if off, ok := config["actions_off"].([]any); !ok || len(off) != 0 {
		t.Errorf("actions_off = %v, want []", config["actions_off"])
	}
}

func TestDeleteButton(t *testing.T) {
	var got DeleteButtonRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true,"message":"Botão não encontrado."}`))
	})

	if err := client.DeleteButton(context.Background(), deck.RootDeck, "slot-9"); err != nil {
		t.Fatalf("DeleteButton() error = %v", err)
	}
	if got.SlotID != "slot-9" || got.DeckID != deck.RootDeck {
		t.Errorf("body = %+v", got)
	}
}

func TestSaveLayout_NilButtons(t *testing.T) {
	var raw map[string]json.RawMessage
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"success":true}`))
	})

	if err := client.SaveLayout(context.Background(), deck.RootDeck, nil); err != nil {
		t.Fatalf("SaveLayout() error = %v", err)
	}
	if string(raw["buttons"]) != "{}" {
		t.Errorf("buttons = %s, want {}", raw["buttons"])
	}
}

func TestSaveLayout_ServerError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Falha ao salvar layout no servidor"}`))
	})

	err := client.SaveLayout(context.Background(), deck.RootDeck, deck.Buttons{})
	if !IsHTTPError(err) {
		t.Fatalf("error = %v, want HTTP error", err)
	}
	if !IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
	if msg := GetShortErrorMessage(err); !strings.Contains(msg, "Falha ao salvar layout") {
		t.Errorf("GetShortErrorMessage() = %q", msg)
	}
}

func TestUploadImage(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(UploadField)
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "icon.png" || string(data) != "PNGDATA" {
			t.Errorf("upload = %s %q", header.Filename, data)
		}
		w.Write([]byte(`{"success":true,"url":"/uploads/1700000000_icon.png"}`))
	})

	url, err := client.UploadImage(context.Background(), "icon.png", strings.NewReader("PNGDATA"))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if url != "/uploads/1700000000_icon.png" {
		t.Errorf("url = %q", url)
	}
}

func TestUploadImage_MissingURL(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	if _, err := client.UploadImage(context.Background(), "a.png", strings.NewReader("x")); !IsParseError(err) {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestChannelEndpoints(t *testing.T) {
	var update ChannelUpdate
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathChannelInfo:
			w.Write([]byte(`{"title":"Live!","category":"Just Chatting","category_id":"509658"}`))
		case PathStreamStats:
			w.Write([]byte(`{"status":"online","viewer_count":42,"started_at":"2026-01-02T15:04:05Z"}`))
		case PathSearchGames:
			if q := r.URL.Query().Get("query"); q != "mine craft" {
				t.Errorf("query = %q", q)
			}
			w.Write([]byte(`[{"id":"27471","name":"Minecraft","box_art_url":"x"}]`))
		case PathUpdateChannel:
			json.NewDecoder(r.Body).Decode(&update)
			w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	info, err := client.ChannelInfo(ctx)
	if err != nil || info.Title != "Live!" || info.CategoryID != "509658" {
		t.Errorf("ChannelInfo() = %+v, %v", info, err)
	}

	stats, err := client.StreamStats(ctx)
	if err != nil {
		t.Fatalf("StreamStats() error = %v", err)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !stats.Online() || stats.ViewerCount != 42 || !stats.StartedAt.Equal(want) {
		t.Errorf("StreamStats() = %+v", stats)
	}

	games, err := client.SearchGames(ctx, "mine craft")
	if err != nil || len(games) != 1 || games[0].ID != "27471" {
		t.Errorf("SearchGames() = %+v, %v", games, err)
	}

	if err := client.UpdateChannel(ctx, ChannelUpdate{Title: "Novo"}); err != nil {
		t.Fatalf("UpdateChannel() error = %v", err)
	}
	if update.Title != "Novo" || update.GameID != "" {
		t.Errorf("update = %+v", update)
	}
}

func TestStreamStats_Offline(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"offline"}`))
	})

	stats, err := client.StreamStats(context.Background())
	if err != nil {
		t.Fatalf("StreamStats() error = %v", err)
	}
	if stats.Online() || !stats.StartedAt.IsZero() {
		t.Errorf("StreamStats() = %+v, want offline", stats)
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "")
	client.SetTimeout(500 * time.Millisecond)

	_, err := client.ChannelInfo(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.ChannelInfo(ctx); err == nil {
		t.Error("ChannelInfo() with canceled context should fail")
	}
}
