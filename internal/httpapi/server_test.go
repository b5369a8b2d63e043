package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kazip/minesweeper-server/internal/logging"
	"github.com/kazip/minesweeper-server/internal/ratelimit"
	"github.com/kazip/minesweeper-server/internal/registry"
)

func newTestServer(t *testing.T, quota uint32) *Server {
	t.Helper()
	reg := registry.New()
	limiter := ratelimit.New(quota, nil)
	log := logging.Get()
	return New(reg, limiter, log, 9, 9, 10)
}

func TestHandleCreateDefaults(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/create", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ID == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestHandleCreateValidationError(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/create", "application/json", bytes.NewReader([]byte(`{"width":0,"height":9,"bombs":10}`)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleCreateRateLimited(t *testing.T) {
	s := newTestServer(t, 1)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	first, err := http.Post(srv.URL+"/create", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatal(err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", first.StatusCode)
	}

	second, err := http.Post(srv.URL+"/create", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.StatusCode)
	}
}

func TestHandleWSUnknownGame(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws?id=nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCORSExactOriginAllowed(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://allowed.test"}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://allowed.test")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://allowed.test" {
		t.Fatalf("expected allow-origin header echoed, got %q", got)
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://allowed.test"}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://evil.test")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header for unlisted origin, got %q", got)
	}
}

func TestCreateConnectRevealEndToEnd(t *testing.T) {
	s := newTestServer(t, 10)
	srv := httptest.NewServer(s.Routes([]string{"http://localhost:5173"}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/create", "application/json", bytes.NewReader([]byte(`{"width":2,"height":2,"bombs":0}`)))
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws?id=" + body.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var init struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &init); err != nil {
		t.Fatal(err)
	}
	if init.Type != "init" {
		t.Fatalf("expected init frame, got %s", data)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"reveal","pos":{"x":0,"y":0}}`)); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, update, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var frame struct {
		Type string `json:"type"`
		Won  bool   `json:"won"`
		Lost bool   `json:"lost"`
	}
	if err := json.Unmarshal(update, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != "update" || !frame.Won || frame.Lost {
		t.Fatalf("expected won update frame, got %s", update)
	}
}
