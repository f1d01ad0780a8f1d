package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harshyelwatkar/rapmania/internal/generator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubProvider is a fake Gemini endpoint. The handler decides the response
// per model name; calls counts every request so tests can assert how many
// attempts were made.
type stubProvider struct {
	t       *testing.T
	calls   atomic.Int32
	handler func(model string, w http.ResponseWriter, r *http.Request)
	server  *httptest.Server
}

func newStubProvider(t *testing.T, handler func(model string, w http.ResponseWriter, r *http.Request)) *stubProvider {
	t.Helper()
	s := &stubProvider{t: t, handler: handler}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		// Path: /v1beta/models/<model>:generateContent
		rest := strings.TrimPrefix(r.URL.Path, "/v1beta/models/")
		model := strings.TrimSuffix(rest, ":generateContent")
		s.handler(model, w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubProvider) client() *Client {
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = s.server.URL
	cfg.Timeout = 5 * time.Second
	c := New(cfg, testLogger())
	c.coin = func() bool { return true } // always AABB, deterministic prompts
	return c
}

func respondText(w http.ResponseWriter, text string) {
	resp := generateResponse{}
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{{Content: content{Parts: []part{{Text: text}}}}}
	json.NewEncoder(w).Encode(resp)
}

func respondError(w http.ResponseWriter, status int, message string) {
	var errResp apiErrorResponse
	errResp.Error.Code = status
	errResp.Error.Message = message
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errResp)
}

func validRequest() generator.Request {
	return generator.Request{Topic: "dreams", Genre: "Hip-Hop", StanzaCount: 8, Explicit: false}
}

func TestGenerate_PrimarySuccess(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		if model != "gemini-1.5-pro" {
			t.Errorf("model = %q, want gemini-1.5-pro", model)
		}
		respondText(w, "1. Bars about dreams\n   more bars")
	})

	result, err := stub.client().Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourcePrimary {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourcePrimary)
	}
	if result.Content == "" {
		t.Error("Content is empty")
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestGenerate_EmptyTopicOrGenre(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		respondText(w, "should never be reached")
	})
	client := stub.client()

	tests := []struct {
		name string
		req  generator.Request
	}{
		{"empty topic", generator.Request{Topic: "", Genre: "Hip-Hop"}},
		{"empty genre", generator.Request{Topic: "dreams", Genre: ""}},
		{"whitespace topic", generator.Request{Topic: "   ", Genre: "Hip-Hop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Generate(context.Background(), tt.req); err == nil {
				t.Error("expected precondition error")
			}
		})
	}

	// The precondition is checked BEFORE any network call.
	if got := stub.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestGenerate_ModelNotFoundUsesFallbackModel(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		if model == "gemini-1.5-pro" {
			respondError(w, http.StatusNotFound, "models/gemini-1.5-pro is not found for API version v1beta")
			return
		}
		if model != "gemini-pro" {
			t.Errorf("fallback model = %q, want gemini-pro", model)
		}
		// Fallback runs with reduced parameters: no topP.
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding fallback request: %v", err)
		}
		if req.GenerationConfig.TopP != 0 {
			t.Errorf("fallback topP = %v, want unset", req.GenerationConfig.TopP)
		}
		respondText(w, "1. Fallback bars")
	})

	result, err := stub.client().Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourceFallbackModel {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourceFallbackModel)
	}
	if got := stub.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestGenerate_OtherErrorSkipsFallbackModel(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusInternalServerError, "internal error")
	})

	result, err := stub.client().Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourceSample {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourceSample)
	}
	if result.Content == "" {
		t.Error("sample Content is empty")
	}
	// A non-"model not found" failure goes straight to the local sample —
	// the fallback model is never tried.
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestGenerate_BothModelsFailUsesSample(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("models/%s is not found", model))
	})

	result, err := stub.client().Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourceSample {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourceSample)
	}
	if got := stub.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestGenerate_EmptyResponseUsesSample(t *testing.T) {
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{}) // 200 OK, no candidates
	})

	result, err := stub.client().Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourceSample {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourceSample)
	}
	// An empty response is not "model not found", so no fallback-model call.
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestGenerate_ProviderUnreachableUsesSample(t *testing.T) {
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = "http://127.0.0.1:1" // nothing listens here
	cfg.Timeout = time.Second
	client := New(cfg, testLogger())
	client.coin = func() bool { return false }

	result, err := client.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != generator.SourceSample {
		t.Errorf("Source = %q, want %q", result.Source, generator.SourceSample)
	}
	if strings.TrimSpace(result.Content) == "" {
		t.Error("Content must be non-empty even with the provider unreachable")
	}
}

func TestGenerate_PromptComposition(t *testing.T) {
	var captured string
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		captured = req.Contents[0].Parts[0].Text
		if req.GenerationConfig.Temperature != 0.9 {
			t.Errorf("temperature = %v, want 0.9", req.GenerationConfig.Temperature)
		}
		if req.GenerationConfig.TopP != 0.95 {
			t.Errorf("topP = %v, want 0.95", req.GenerationConfig.TopP)
		}
		if req.GenerationConfig.MaxOutputTokens != 1024 {
			t.Errorf("maxOutputTokens = %v, want 1024", req.GenerationConfig.MaxOutputTokens)
		}
		respondText(w, "ok")
	})

	req := generator.Request{Topic: "city nights", Genre: "Drill", StanzaCount: 12, Explicit: true}
	if _, err := stub.client().Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"12 lines",
		`"city nights"`,
		"Drill style",
		"rhyme scheme: AABB",
		"explicit language appropriate for the genre",
		"maximum of 12 words",
		"numbered stanzas",
	} {
		if !strings.Contains(captured, want) {
			t.Errorf("prompt missing %q\nprompt: %s", want, captured)
		}
	}
}

func TestGenerate_DefaultLineCount(t *testing.T) {
	var captured string
	stub := newStubProvider(t, func(model string, w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		captured = req.Contents[0].Parts[0].Text
		respondText(w, "ok")
	})

	// StanzaCount unset → defaults to 8 lines, moderate content phrasing.
	req := generator.Request{Topic: "dreams", Genre: "Hip-Hop"}
	if _, err := stub.client().Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(captured, "8 lines") {
		t.Errorf("prompt missing default line count, got: %s", captured)
	}
	if !strings.Contains(captured, "PG-13") {
		t.Errorf("prompt missing moderate-content directive, got: %s", captured)
	}
}
