package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/projecthelena/clockping/internal/clock"
	"github.com/projecthelena/clockping/internal/config"
	"github.com/projecthelena/clockping/internal/probe"
	"github.com/projecthelena/clockping/internal/version"
)

var stampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} [A-Za-z]+`)

func newTestClock(t *testing.T) *clock.Clock {
	t.Helper()
	clk, err := clock.New("Europe/Belgrade", "Beograd")
	if err != nil {
		t.Fatalf("failed to load clock: %v", err)
	}
	return clk
}

func newVersionFile(t *testing.T, content string) *version.Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "version.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write version file: %v", err)
	}
	return version.NewReader(path)
}

// startListener opens a loopback listener and returns its host:port.
func startListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return ln.Addr().String()
}

// closedAddr returns a loopback address with nothing listening on it.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestLiveness(t *testing.T) {
	handler := Liveness(newTestClock(t), newVersionFile(t, "  1.2.3\n"))

	req := httptest.NewRequest("GET", "/liveness", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}

	body := w.Body.String()
	if !stampPattern.MatchString(body) {
		t.Errorf("expected a timestamp in body, got %s", body)
	}
	if !strings.Contains(body, "App version: 1.2.3<") {
		t.Errorf("expected trimmed version in body, got %s", body)
	}
	if !strings.Contains(body, "Current time in Beograd") {
		t.Errorf("expected city heading in body, got %s", body)
	}
}

func TestLiveness_FixedTime(t *testing.T) {
	fixed := time.Date(2024, time.January, 15, 11, 30, 5, 0, time.UTC)
	clk := newTestClock(t).WithNow(func() time.Time { return fixed })
	handler := Liveness(clk, newVersionFile(t, "1.0.0"))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/liveness", nil))

	if !strings.Contains(w.Body.String(), "<strong>2024-01-15 12:30:05 CET</strong>") {
		t.Errorf("expected Belgrade local time, got %s", w.Body.String())
	}
}

func TestLiveness_MissingVersion(t *testing.T) {
	reader := version.NewReader(filepath.Join(t.TempDir(), "missing.txt"))
	handler := Liveness(newTestClock(t), reader)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/liveness", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "App version: unknown") {
		t.Errorf("expected unknown version, got %s", w.Body.String())
	}
}

func TestReadiness_NotSet(t *testing.T) {
	handler := Readiness("", probe.NewProber(time.Second))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readiness", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w.Body.String() != "DB_ENDPOINT not set" {
		t.Errorf("expected not-set body, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
}

func TestReadiness_Reachable(t *testing.T) {
	addr := startListener(t)
	handler := Readiness(addr, probe.NewProber(time.Second))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readiness", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp["status"] != "ready" || resp["db_endpoint"] != addr {
		t.Errorf("unexpected body %v", resp)
	}
}

func TestReadiness_Unreachable(t *testing.T) {
	addr := closedAddr(t)
	handler := Readiness(addr, probe.NewProber(time.Second))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readiness", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if want := "DB not reachable: " + addr; w.Body.String() != want {
		t.Errorf("expected %q, got %q", want, w.Body.String())
	}
}

func TestReadiness_EchoesRawEndpoint(t *testing.T) {
	// A host without a port is dialed on 3306 but echoed as configured.
	var dialed string
	prober := probe.NewProber(time.Second).WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		dialed = address
		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	})
	handler := Readiness("db.internal", prober)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readiness", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if dialed != "db.internal:"+strconv.Itoa(probe.DefaultPort) {
		t.Errorf("expected dial to default port, got %q", dialed)
	}

	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DBEndpoint != "db.internal" {
		t.Errorf("expected raw endpoint echoed, got %q", resp.DBEndpoint)
	}
}

// TestHealthProbes_Integration verifies the probes through the full router.
func TestHealthProbes_Integration(t *testing.T) {
	addr := startListener(t)
	cfg := config.Default()
	cfg.DBEndpoint = addr

	router := NewRouter(Deps{
		Config:   &cfg,
		Clock:    newTestClock(t),
		Versions: newVersionFile(t, "9.9.9\n"),
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	client := ts.Client()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"root renders status page", "/", http.StatusOK, "text/html", "App version: 9.9.9"},
		{"liveness renders status page", "/liveness", http.StatusOK, "text/html", "App version: 9.9.9"},
		{"readiness reports ready", "/readiness", http.StatusOK, "application/json", `"db_endpoint":"` + addr + `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("expected Content-Type %s, got %q", tt.wantType, ct)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, body)
			}
		})
	}
}
