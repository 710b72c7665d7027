package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"
)

// TestClient_ConnectionReuse verifies that sequential polls of the same node
// reuse pooled connections.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient()

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5

	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Fetch(ctx, server.URL, nil, 5*time.Second)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	// all requests after the first should reuse the connection
	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

func TestClient_SendsHeadersAndAccept(t *testing.T) {
	var gotAccept, gotCustom, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Node")
		gotMethod = r.Method
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	resp := NewClient().Fetch(context.Background(), server.URL, map[string]string{"X-Node": "laptop"}, 0)
	if resp.Error != nil {
		t.Fatalf("Fetch() error = %v", resp.Error)
	}

	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotCustom != "laptop" {
		t.Errorf("X-Node = %q, want laptop", gotCustom)
	}
}

func TestClient_ZeroTimeoutWaitsForSlowNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	resp := NewClient().Fetch(context.Background(), server.URL, nil, 0)
	if resp.Error != nil {
		t.Fatalf("Fetch() with zero timeout error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestClient_TimeoutApplied(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	resp := NewClient().Fetch(context.Background(), server.URL, nil, 50*time.Millisecond)
	if resp.Error == nil {
		t.Fatal("Fetch() error = nil, want timeout error")
	}
	if resp.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", resp.StatusCode)
	}
}

func TestClient_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", MaxResponseBodySize+10)))
	}))
	defer server.Close()

	resp := NewClient().Fetch(context.Background(), server.URL, nil, 5*time.Second)
	if !errors.Is(resp.Error, ErrBodyTooLarge) {
		t.Fatalf("Error = %v, want ErrBodyTooLarge", resp.Error)
	}
	if resp.Body != nil {
		t.Errorf("Body length = %d, want nil body", len(resp.Body))
	}
}

func TestClient_InvalidURL(t *testing.T) {
	resp := NewClient().Fetch(context.Background(), "://bad", nil, time.Second)
	if resp.Error == nil {
		t.Fatal("Fetch() error = nil, want request creation error")
	}
	if !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Errorf("Error = %q, want to mention request creation", resp.Error)
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient()

	client.Close()
	client.Close()
	client.Close()
}

// TestClient_Close_NilClient verifies that Close() handles nil receiver safely.
func TestClient_Close_NilClient(t *testing.T) {
	var client *Client
	client.Close()
}

// TestClient_Close_ActuallyClosesConnections verifies that the client remains
// usable after its idle connections are closed.
func TestClient_Close_ActuallyClosesConnections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	for i := 0; i < 3; i++ {
		if resp := client.Fetch(context.Background(), server.URL, nil, time.Second); resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	client.Close()

	resp := client.Fetch(context.Background(), server.URL, nil, time.Second)
	if resp.Error != nil {
		t.Errorf("request after Close failed: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}
