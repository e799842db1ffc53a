// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// GENERATE TESTS
// =============================================================================

func TestClient_GenerateText(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "  hello there \n", Done: true})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Model: "tiny"})
	resp, err := c.GenerateText(context.Background(), Request{Prompt: "hi", MaxTokens: 64})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}

	if resp.Text != "hello there" {
		t.Errorf("Text = %q, want %q", resp.Text, "hello there")
	}
	if got.Model != "tiny" {
		t.Errorf("Model = %q, want %q", got.Model, "tiny")
	}
	if got.Stream {
		t.Error("Stream should be false")
	}
	if got.Options == nil || got.Options.NumPredict != 64 {
		t.Errorf("Options = %+v, want num_predict 64", got.Options)
	}
}

func TestClient_GenerateText_EmptyPrompt(t *testing.T) {
	c := NewClient()
	_, err := c.GenerateText(context.Background(), Request{Prompt: "   "})
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestClient_GenerateText_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"model not found", http.StatusNotFound, `{"error":"model 'x' not found"}`, ErrModelNotFound, ""},
		{"api error", http.StatusInternalServerError, `{"error":"out of memory"}`, nil, "out of memory"},
		{"bare status", http.StatusBadGateway, ``, nil, "generate request failed: 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
			_, err := c.GenerateText(context.Background(), Request{Prompt: "hi"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("err = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClient_GenerateText_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: time.Second})
	_, err := c.GenerateText(context.Background(), Request{Prompt: "hi"})
	if !IsNotRunning(err) {
		t.Errorf("err = %v, want not running", err)
	}
}

func TestClient_GenerateText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.GenerateText(context.Background(), Request{Prompt: "hi"})
	if !IsTimeout(err) {
		t.Errorf("err = %v, want timeout", err)
	}
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte("Ollama is running"))
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"llama3.2","size":2000}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Fatalf("CheckRunning failed: %v", err)
	}

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 || models[0].Name != "llama3.2" {
		t.Errorf("models = %+v", models)
	}
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	if c.Model() != "llama3.2" {
		t.Errorf("Model = %q, want default", c.Model())
	}
	if c.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q, want default", c.config.BaseURL)
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(ctx context.Context, r Request) (Response, error) {
		return Response{Text: r.Prompt + "!"}, nil
	})
	resp, err := g.GenerateText(context.Background(), Request{Prompt: "ok"})
	if err != nil || resp.Text != "ok!" {
		t.Errorf("GenerateText = %q, %v", resp.Text, err)
	}
}
