package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if req.Model != "llama3" {
			t.Errorf("model: got %s", req.Model)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: Message{Role: RoleAssistant, Content: "  Học phí là 15 triệu.  "},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3", 10*time.Second)
	answer, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "học phí?"}})
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Học phí là 15 triệu." {
		t.Errorf("answer not trimmed: %q", answer)
	}
}

func TestClient_ChatUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"empty completion", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(chatResponse{})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(srv.URL, "llama3", 5*time.Second)
			_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	}
}

func TestClient_ChatUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "llama3", time.Second)
	_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
