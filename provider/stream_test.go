package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
)

func collect(t *testing.T, p Provider) string {
	t.Helper()
	var sb strings.Builder
	err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	return sb.String()
}

func TestOllamaProviderStreams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, part := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, `{"model":"m","message":{"role":"assistant","content":%q},"done":false}`+"\n", part)
		}
		fmt.Fprintln(w, `{"model":"m","message":{"role":"assistant","content":""},"done":true}`)
	})
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"m:latest","size":42}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := newOllamaProvider(srv.URL, "m", srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	if got := collect(t, p); got != "Hello" {
		t.Errorf("streamed %q", got)
	}

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 || models[0].Name != "m:latest" || models[0].Size != 42 {
		t.Errorf("models = %+v", models)
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestOpenAIProviderStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(srv.URL, "test-key", "m", option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	if got := collect(t, p); got != "Hello" {
		t.Errorf("streamed %q", got)
	}
}
