package syncboard

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jpalmerr/syncboard/table"
)

func TestNew_Valid(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if b.DevicesURL() != "http://localhost:9000/peers" {
		t.Errorf("DevicesURL() = %q, want %q", b.DevicesURL(), "http://localhost:9000/peers")
	}
	if b.FilesURL() != "http://localhost:9000/metadata" {
		t.Errorf("FilesURL() = %q, want %q", b.FilesURL(), "http://localhost:9000/metadata")
	}
}

func TestNew_NoBaseURL(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("New() expected error for missing base URL, got nil")
	}
	if !strings.Contains(err.Error(), "base URL is required") {
		t.Errorf("New() error = %v, want error containing 'base URL is required'", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if b.Port() != 8080 {
		t.Errorf("Port() = %v, want %v", b.Port(), 8080)
	}
	if b.deviceInterval != 5*time.Second {
		t.Errorf("deviceInterval = %v, want %v", b.deviceInterval, 5*time.Second)
	}
	if b.fileInterval != 10*time.Second {
		t.Errorf("fileInterval = %v, want %v", b.fileInterval, 10*time.Second)
	}
	if b.overlap != OverlapSkip {
		t.Errorf("overlap = %v, want %v", b.overlap, OverlapSkip)
	}
	if !b.serve {
		t.Error("serve = false, want true")
	}
	if b.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestNew_BaseURLWithPath(t *testing.T) {
	b, err := New(
		WithBaseURL("https://node.example.com/api/"),
		WithDevicesPath("/v1/peers"),
		WithFilesPath("files/meta"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if b.DevicesURL() != "https://node.example.com/api/v1/peers" {
		t.Errorf("DevicesURL() = %q", b.DevicesURL())
	}
	if b.FilesURL() != "https://node.example.com/api/files/meta" {
		t.Errorf("FilesURL() = %q", b.FilesURL())
	}
}

func TestResolveEndpoint_MatchesNew(t *testing.T) {
	b, err := New(WithBaseURL("https://node.example.com/api/"), WithDevicesPath("/v1/peers"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := ResolveEndpoint("https://node.example.com/api/", "/v1/peers")
	if err != nil {
		t.Fatalf("ResolveEndpoint() error = %v", err)
	}
	if got != b.DevicesURL() {
		t.Errorf("ResolveEndpoint() = %q, New resolved %q", got, b.DevicesURL())
	}

	if _, err := ResolveEndpoint("://bad", "/peers"); err == nil {
		t.Error("ResolveEndpoint() with an unparsable base should fail")
	}
}

func TestWithBaseURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "localhost:9000"},
		{"ftp scheme", "ftp://node.example.com"},
		{"no host", "http://"},
		{"unparseable", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithBaseURL(tt.url))
			if err == nil {
				t.Errorf("WithBaseURL(%q) expected error, got nil", tt.url)
			}
		})
	}
}

func TestWithPaths_Empty(t *testing.T) {
	if _, err := New(WithBaseURL("http://localhost:9000"), WithDevicesPath("")); err == nil {
		t.Error("WithDevicesPath(\"\") expected error, got nil")
	}
	if _, err := New(WithBaseURL("http://localhost:9000"), WithFilesPath("")); err == nil {
		t.Error("WithFilesPath(\"\") expected error, got nil")
	}
}

func TestWithIntervals(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"device valid", WithDeviceInterval(time.Second), false},
		{"device zero", WithDeviceInterval(0), true},
		{"device negative", WithDeviceInterval(-time.Second), true},
		{"file valid", WithFileInterval(time.Minute), false},
		{"file zero", WithFileInterval(0), true},
		{"file negative", WithFileInterval(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithBaseURL("http://localhost:9000"), tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithTimeout(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"), WithTimeout(0))
	if err != nil {
		t.Fatalf("WithTimeout(0) error = %v", err)
	}
	if b == nil {
		t.Fatal("New() = nil")
	}

	if _, err := New(WithBaseURL("http://localhost:9000"), WithTimeout(-time.Second)); err == nil {
		t.Error("WithTimeout(-1s) expected error, got nil")
	}
}

func TestWithHeaders(t *testing.T) {
	tests := []struct {
		name    string
		kv      []string
		wantErr bool
	}{
		{"pairs", []string{"X-Node-Token", "secret", "X-Client", "syncboard"}, false},
		{"none", nil, false},
		{"odd", []string{"X-Node-Token"}, true},
		{"empty key", []string{"", "value"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithBaseURL("http://localhost:9000"), WithHeaders(tt.kv...))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithOverlapPolicy(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"), WithOverlapPolicy(OverlapAllow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.overlap != OverlapAllow {
		t.Errorf("overlap = %v, want %v", b.overlap, OverlapAllow)
	}

	_, err = New(WithBaseURL("http://localhost:9000"), WithOverlapPolicy("queue"))
	if err == nil {
		t.Fatal("WithOverlapPolicy(queue) expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid overlap policy") {
		t.Errorf("error = %v, want error containing 'invalid overlap policy'", err)
	}
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port 80", 80, false},
		{"valid port 8080", 8080, false},
		{"valid port 65535", 65535, false},
		{"valid port 1", 1, false},
		{"zero port", 0, true},
		{"negative port", -1, true},
		{"port too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(WithBaseURL("http://localhost:9000"), WithPort(tt.port))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && b.Port() != tt.port {
				t.Errorf("Port() = %v, want %v", b.Port(), tt.port)
			}
		})
	}
}

func TestWithoutServer(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"), WithoutServer())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.serve {
		t.Error("serve = true, want false")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	b, err := New(WithBaseURL("http://localhost:9000"), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != logger {
		t.Error("logger was not applied")
	}

	if _, err := New(WithBaseURL("http://localhost:9000"), WithLogger(nil)); err == nil {
		t.Error("WithLogger(nil) expected error, got nil")
	}
}

func TestWithClock(t *testing.T) {
	mock := clock.NewMock()
	b, err := New(WithBaseURL("http://localhost:9000"), WithClock(mock))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.clock != mock {
		t.Error("clock was not applied")
	}

	if _, err := New(WithBaseURL("http://localhost:9000"), WithClock(nil)); err == nil {
		t.Error("WithClock(nil) expected error, got nil")
	}
}

func TestWithDiagnostics_Nil(t *testing.T) {
	if _, err := New(WithBaseURL("http://localhost:9000"), WithDiagnostics(nil)); err == nil {
		t.Error("WithDiagnostics(nil) expected error, got nil")
	}
}

func TestWithSinks_Nil(t *testing.T) {
	if _, err := New(WithBaseURL("http://localhost:9000"), WithDeviceSink(nil)); err == nil {
		t.Error("WithDeviceSink(nil) expected error, got nil")
	}
	if _, err := New(WithBaseURL("http://localhost:9000"), WithFileSink(nil)); err == nil {
		t.Error("WithFileSink(nil) expected error, got nil")
	}
	if _, err := New(WithBaseURL("http://localhost:9000"), WithDeviceSink(&table.Buffer{})); err != nil {
		t.Errorf("WithDeviceSink() error = %v", err)
	}
}

func TestWithCycleCallback_Nil(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"), WithCycleCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(b.callbacks) != 0 {
		t.Errorf("len(callbacks) = %d, want 0", len(b.callbacks))
	}
}

func TestWithTitle(t *testing.T) {
	b, err := New(WithBaseURL("http://localhost:9000"), WithTitle("Lab node"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.title != "Lab node" {
		t.Errorf("title = %q, want %q", b.title, "Lab node")
	}
}
