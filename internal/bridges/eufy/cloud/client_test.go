package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/camera"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/config"
)

// fakeCloud is a minimal in-process cloud API.
type fakeCloud struct {
	mu          sync.Mutex
	logins      int
	paths       []string
	tokens      []string
	token       string
	expiresAt   int64
	failStatus  map[string]int
	failCode    map[string]int
	failBody    string
	deviceList  string
	lastPayload map[string]json.RawMessage
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		token:       "tok-1",
		failStatus:  make(map[string]int),
		failCode:    make(map[string]int),
		deviceList:  `[{"device_sn":"T8400P1","station_sn":"T8400P1","device_type":30,"params":[{"param_type":6014,"param_value":"1"}]}]`,
		lastPayload: make(map[string]json.RawMessage),
	}
}

func (f *fakeCloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path[len("/api/v1/"):]
	f.paths = append(f.paths, path)
	f.tokens = append(f.tokens, r.Header.Get(authHeader))

	var body json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.lastPayload[path] = body

	if status, ok := f.failStatus[path]; ok {
		msg := "denied"
		if f.failBody != "" {
			msg = f.failBody
		}
		http.Error(w, msg, status)
		return
	}
	if code, ok := f.failCode[path]; ok {
		_, _ = w.Write([]byte(`{"code":` + itoa(code) + `,"msg":"nope"}`))
		return
	}

	switch path {
	case PathLogin:
		f.logins++
		_, _ = w.Write([]byte(`{"code":0,"msg":"Succeed.","data":{"auth_token":"` + f.token +
			`","token_expires_at":` + itoa(int(f.expiresAt)) + `,"user_id":"user-42"}}`))
	case camera.PathDeviceList:
		if r.Header.Get(authHeader) != f.token {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"msg":"Succeed.","data":` + f.deviceList + `}`))
	default:
		_, _ = w.Write([]byte(`{"code":0,"msg":"Succeed."}`))
	}
}

func (f *fakeCloud) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func (f *fakeCloud) payload(path string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPayload[path]
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func newTestClient(t *testing.T, f *fakeCloud) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(config.CloudConfig{
		BaseURL:  srv.URL + "/api/v1",
		Email:    "owner@example.com",
		Password: "hunter2",
		Timeout:  5,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New(config.CloudConfig{BaseURL: "api/v1"}); err == nil {
		t.Error("New() accepted a relative base url")
	}
}

func TestLogin(t *testing.T) {
	f := newFakeCloud()
	c := newTestClient(t, f)

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if c.UserID() != "user-42" {
		t.Errorf("UserID() = %q, want user-42", c.UserID())
	}

	var creds loginRequest
	if err := json.Unmarshal(f.payload(PathLogin), &creds); err != nil {
		t.Fatal(err)
	}
	if creds.Email != "owner@example.com" || creds.Password != "hunter2" {
		t.Errorf("login payload = %+v", creds)
	}
}

func TestLoginRejected(t *testing.T) {
	f := newFakeCloud()
	f.failCode[PathLogin] = 26006
	c := newTestClient(t, f)

	err := c.Login(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 26006 {
		t.Errorf("Login error = %v, want APIError 26006", err)
	}
}

func TestLoginWithoutToken(t *testing.T) {
	f := newFakeCloud()
	f.token = ""
	c := newTestClient(t, f)

	if err := c.Login(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Login error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRequestLogsInLazilyOnce(t *testing.T) {
	f := newFakeCloud()
	c := newTestClient(t, f)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Request(ctx, http.MethodPost, camera.PathDeviceList, struct{}{}); err != nil {
			t.Fatalf("Request %d: %v", i, err)
		}
	}
	if n := f.loginCount(); n != 1 {
		t.Errorf("logins = %d, want 1", n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.paths {
		if p != PathLogin && f.tokens[i] != "tok-1" {
			t.Errorf("request %s carried token %q", p, f.tokens[i])
		}
	}
}

func TestRequestRenewsExpiredToken(t *testing.T) {
	f := newFakeCloud()
	f.expiresAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	c := newTestClient(t, f)
	ctx := context.Background()

	c.now = func() time.Time { return time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC) }
	if _, err := c.Request(ctx, http.MethodPost, "app/anything", nil); err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	if _, err := c.Request(ctx, http.MethodPost, "app/anything", nil); err != nil {
		t.Fatal(err)
	}
	if n := f.loginCount(); n != 2 {
		t.Errorf("logins = %d, want 2 after expiry", n)
	}
}

func TestRequestStatusError(t *testing.T) {
	f := newFakeCloud()
	f.failStatus["app/upload_devs_params"] = http.StatusBadGateway
	c := newTestClient(t, f)

	_, err := c.Request(context.Background(), http.MethodPost, "app/upload_devs_params", map[string]any{})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("error = %v, want StatusError 502", err)
	}
	if IsAuthFailure(err) {
		t.Error("502 reported as auth failure")
	}
}

func TestRequestStatusErrorBodyKeepsRunes(t *testing.T) {
	f := newFakeCloud()
	f.failStatus["app/upload_devs_params"] = http.StatusServiceUnavailable
	// 'é' is two bytes, so byte maxErrorBodySize falls inside a rune.
	f.failBody = "x" + strings.Repeat("é", maxErrorBodySize)
	c := newTestClient(t, f)

	_, err := c.Request(context.Background(), http.MethodPost, "app/upload_devs_params", map[string]any{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if !utf8.ValidString(se.Body) {
		t.Errorf("Body is not valid UTF-8: %q", se.Body[len(se.Body)-4:])
	}
	if len(se.Body) != maxErrorBodySize-1 {
		t.Errorf("len(Body) = %d, want %d", len(se.Body), maxErrorBodySize-1)
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"aé", 3, "aé"},
		{"日本", 4, "日"},
		{"日本", 2, ""},
	}

	for _, tt := range tests {
		if got := truncateUTF8(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRequestAuthFailureDropsToken(t *testing.T) {
	f := newFakeCloud()
	c := newTestClient(t, f)
	ctx := context.Background()

	if err := c.Login(ctx); err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	f.token = "tok-2"
	f.mu.Unlock()

	_, err := c.Request(ctx, http.MethodPost, camera.PathDeviceList, struct{}{})
	if !IsAuthFailure(err) {
		t.Fatalf("error = %v, want auth failure", err)
	}

	// The next call logs in again instead of reusing the rejected token.
	if _, err := c.Request(ctx, http.MethodPost, camera.PathDeviceList, struct{}{}); err != nil {
		t.Fatalf("Request after re-login: %v", err)
	}
	if n := f.loginCount(); n != 2 {
		t.Errorf("logins = %d, want 2", n)
	}
}

func TestRequestEnvelopeError(t *testing.T) {
	f := newFakeCloud()
	f.failCode["web/equipment/start_stream"] = 998
	c := newTestClient(t, f)

	_, err := c.Request(context.Background(), http.MethodPost, "web/equipment/start_stream", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 998 || apiErr.Message != "nope" {
		t.Errorf("error = %v, want APIError 998", err)
	}
}

func TestDevices(t *testing.T) {
	f := newFakeCloud()
	c := newTestClient(t, f)

	recs, err := c.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(recs) != 1 || recs[0].Serial != "T8400P1" || recs[0].DeviceType != 30 {
		t.Errorf("Devices() = %+v", recs)
	}
}

func TestClientDrivesCamera(t *testing.T) {
	f := newFakeCloud()
	c := newTestClient(t, f)
	ctx := context.Background()

	recs, err := c.Devices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cam := camera.New(c, recs[0])
	if err := cam.StatusLEDOff(ctx); err != nil {
		t.Fatalf("StatusLEDOff: %v", err)
	}

	var up struct {
		DeviceSerial string `json:"device_sn"`
		Params       []struct {
			Code  int    `json:"param_type"`
			Value string `json:"param_value"`
		} `json:"params"`
	}
	if err := json.Unmarshal(f.payload(camera.PathUploadParams), &up); err != nil {
		t.Fatal(err)
	}
	if up.DeviceSerial != "T8400P1" || len(up.Params) != 1 || up.Params[0].Code != 6014 || up.Params[0].Value != "0" {
		t.Errorf("upload payload = %+v", up)
	}
}
