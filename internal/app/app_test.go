package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/tiffin/internal/prefs"
	"github.com/five82/tiffin/internal/session"
	"github.com/five82/tiffin/internal/swiggy"
)

type harness struct {
	configPath  string
	sessionPath string
	logPath     string
}

func newHarness(t *testing.T, serverURL string) harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	h := harness{
		configPath:  filepath.Join(dir, "config.toml"),
		sessionPath: filepath.Join(dir, "session.toml"),
		logPath:     filepath.Join(dir, "tiffin.log"),
	}
	body := fmt.Sprintf(`base_url = %q
rate_limit = 1000
request_timeout = 5
theme = "plain"

[session]
path = %q

[log]
level = "error"
file = %q
`, serverURL, h.sessionPath, h.logPath)
	if err := os.WriteFile(h.configPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return h
}

func (h harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"--config", h.configPath}, args...), Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return stdout.String(), stderr.String(), err
}

func TestRun_SearchPrintsResultsAndSavesCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dapi/restaurants/list/v5" {
			http.NotFound(w, r)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "__SW", Value: "fresh-token"})
		_, _ = io.WriteString(w, `{"data":{"cards":[{"card":{"card":{"gridElements":{"infoWithStyle":{"restaurants":[{"info":{"id":"10575","name":"Pizza Palace","isOpen":true}}]}}}}}]}}`)
	}))
	t.Cleanup(server.Close)
	h := newHarness(t, server.URL)

	stdout, _, err := h.run(t, "", "search", "pizza")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, want := range []string{"Searching for 'pizza'", "Found 1 restaurant(s)", "1. Pizza Palace", "ID: 10575"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}

	saved := session.NewFileStore(h.sessionPath, nil).Load(context.Background())
	if saved.BearerToken != "fresh-token" {
		t.Fatalf("saved token = %q, want fresh-token", saved.BearerToken)
	}
}

func TestRun_LoginFromStdinThenLogout(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	stdout, _, err := h.run(t, "\nCookie: __SW=tok1234567890; _sid=s1; _device_id=d1; other=x\n", "login")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !strings.Contains(stdout, "Session saved (4 cookies)") || !strings.Contains(stdout, "Auth token: tok12345...") {
		t.Fatalf("stdout = %s", stdout)
	}

	saved := session.NewFileStore(h.sessionPath, nil).Load(context.Background())
	if saved.BearerToken != "tok1234567890" || saved.AuxIDs["session_id"] != "s1" || saved.AuxIDs["device_id"] != "d1" {
		t.Fatalf("saved = %+v", saved)
	}

	stdout, _, err = h.run(t, "", "logout")
	if err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if !strings.Contains(stdout, "Logged out") {
		t.Fatalf("stdout = %s", stdout)
	}
	if _, err := os.Stat(h.sessionPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("session file still present: %v", err)
	}
}

func TestRun_LoginRejectsEmptyInput(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	if _, _, err := h.run(t, "   \n", "login"); err == nil {
		t.Fatalf("login with no input returned nil error")
	}
	if _, _, err := h.run(t, "", "login", "--cookie", "garbage"); err == nil {
		t.Fatalf("login with no cookies returned nil error")
	}
}

func TestRun_AuthExpiredShowsLoginHint(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)
	h := newHarness(t, server.URL)

	_, stderr, err := h.run(t, "", "menu", "10575")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("err = %v, want ErrReported", err)
	}
	if !swiggy.IsAuthExpired(err) {
		t.Fatalf("err = %v, want auth expired", err)
	}
	if !strings.Contains(stderr, "tiffin login") {
		t.Fatalf("stderr = %q, want login hint", stderr)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no refresh means no retry)", calls)
	}
}

func TestRun_OrderSendsItems(t *testing.T) {
	var body swiggy.PlaceOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/dapi/checkout/place-order" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"data":{"orderId":"ord_9"}}`)
	}))
	t.Cleanup(server.Close)
	h := newHarness(t, server.URL)

	stdout, _, err := h.run(t, "", "--lat", "19.07", "order", "10575", "--item", "i1", "--item", "i2:2", "--item", "i1", "--address", "addr_1")
	if err != nil {
		t.Fatalf("order returned error: %v", err)
	}
	if !strings.Contains(stdout, "Order placed: ord_9") {
		t.Fatalf("stdout = %s", stdout)
	}
	if len(body.Items) != 2 || body.Items[0].Quantity != 2 || body.Items[1].ItemID != "i2" {
		t.Fatalf("items = %+v", body.Items)
	}
	if body.AddressID == nil || *body.AddressID != "addr_1" || body.PaymentMode != "UPI" || body.Lat != "19.07" {
		t.Fatalf("body = %+v", body)
	}

	saved, err := prefs.Load("")
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.LastOrderID != "ord_9" {
		t.Fatalf("LastOrderID = %q, want ord_9", saved.LastOrderID)
	}
}

func TestRun_StatusFallsBackToLastOrder(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"data":{"orderId":"ord_7","status":"preparing","restaurantName":"Dosa Point"}}`)
	}))
	t.Cleanup(server.Close)
	h := newHarness(t, server.URL)

	if _, _, err := h.run(t, "", "status"); err == nil {
		t.Fatalf("status with no recorded order returned nil error")
	}

	if err := prefs.Save("", prefs.Prefs{Theme: "Plain", LastOrderID: "ord_7"}); err != nil {
		t.Fatalf("prefs.Save returned error: %v", err)
	}
	stdout, _, err := h.run(t, "", "status")
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if gotPath != "/dapi/orders/ord_7" {
		t.Fatalf("path = %q, want /dapi/orders/ord_7", gotPath)
	}
	if !strings.Contains(stdout, "Using last order ord_7") || !strings.Contains(stdout, "Dosa Point") {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestRun_MonitorStopsAtTerminalStatus(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = io.WriteString(w, `{"data":{"orderId":"ord_1","status":"placed","eta":"30 mins"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"orderId":"ord_1","status":"DELIVERED"}}`)
	}))
	t.Cleanup(server.Close)
	h := newHarness(t, server.URL)

	stdout, _, err := h.run(t, "", "monitor", "ord_1", "--interval", "1")
	if err != nil {
		t.Fatalf("monitor returned error: %v", err)
	}
	for _, want := range []string{"Monitoring order ord_1", "Status: PLACED", "ETA: 30 mins", "Status: DELIVERED", "Order DELIVERED"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRun_MonitorRejectsBadInterval(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	if _, _, err := h.run(t, "", "monitor", "ord_1", "--interval", "0"); err == nil {
		t.Fatalf("monitor --interval 0 returned nil error")
	}
}

func TestRun_LogsFiltersEntries(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	lines := strings.Join([]string{
		`{"time":"t1","level":"info","message":"order status changed","order_id":"ord_1"}`,
		`{"time":"t2","level":"warn","message":"status poll failed","order_id":"ord_2"}`,
	}, "\n") + "\n"
	if err := os.WriteFile(h.logPath, []byte(lines), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	stdout, _, err := h.run(t, "", "logs", "--grep", "ord_2")
	if err != nil {
		t.Fatalf("logs returned error: %v", err)
	}
	if strings.TrimSpace(stdout) != "t2 WARN  status poll failed order_id=ord_2" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRun_NoCommandShowsHelpAndFails(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	stdout, _, err := h.run(t, "")
	if err == nil {
		t.Fatalf("Run with no command returned nil error")
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Fatalf("stdout = %q, want help", stdout)
	}
}

func TestParseItems(t *testing.T) {
	lines, err := parseItems([]string{"a", " b:3 ", "a:2"})
	if err != nil {
		t.Fatalf("parseItems returned error: %v", err)
	}
	if len(lines) != 2 || lines[0].ItemID != "a" || lines[0].Quantity != 3 || lines[1].Quantity != 3 {
		t.Fatalf("lines = %+v", lines)
	}

	for _, bad := range [][]string{nil, {":2"}, {"a:0"}, {"a:x"}} {
		if _, err := parseItems(bad); err == nil {
			t.Fatalf("parseItems(%q) returned nil error", bad)
		}
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("abcdefghijkl"); got != "abcdefgh..." {
		t.Fatalf("maskToken = %q", got)
	}
	if got := maskToken("abc"); got != "***" {
		t.Fatalf("maskToken short = %q", got)
	}
}

func TestRun_CorruptPrefsWarnsAndUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[session]\npath = %q\n\n[log]\nlevel = \"warn\"\n", filepath.Join(dir, "session.toml"))
	if err := os.WriteFile(configPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	prefsPath := filepath.Join(home, ".config", "tiffin", "prefs.toml")
	if err := os.MkdirAll(filepath.Dir(prefsPath), 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(prefsPath, []byte("not valid toml {{{\n"), 0o600); err != nil {
		t.Fatalf("write prefs: %v", err)
	}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), []string{"--config", configPath, "logout"}, Options{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Logged out") {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "load preferences failed") {
		t.Fatalf("stderr = %q, want preferences warning", stderr.String())
	}
}
