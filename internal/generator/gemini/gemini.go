// Package gemini implements generator.Generator against Google's Generative
// Language REST API.
//
// PROVIDER INSTABILITY:
// The provider call is the one genuinely unreliable operation in this app —
// models get renamed, quotas run out, the network fails. The client therefore
// works through an explicit ordered attempt chain:
//
//  1. the primary model, full generation parameters
//  2. the fallback model, reduced parameters — tried only when the primary
//     failure says the model itself was not found
//  3. a canned local sample lyric — for every other failure, including an
//     empty response body
//
// Each model gets exactly one attempt; there is no retry-with-backoff. The
// chain guarantees Generate never returns an empty string and never surfaces
// a provider error to its caller. The only error it returns is the
// precondition violation for an empty topic or genre, raised before any
// network call.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/harshyelwatkar/rapmania/internal/generator"
)

// defaultLineCount is used when the request doesn't specify a stanza count.
const defaultLineCount = 8

// maxPromptWordsPerLine is embedded in the prompt as a per-line word cap.
const maxPromptWordsPerLine = 12

// Client implements the generator.Generator interface using the Gemini API.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger

	// coin picks the rhyme scheme for a call. Swapped out in tests for a
	// deterministic one.
	coin func() bool
}

var _ generator.Generator = (*Client)(nil)

// New creates a Gemini client. The caller is expected to have verified that
// an API key is configured; with an empty key every attempt fails and the
// client degrades to the sample lyric.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		coin:   func() bool { return rand.Intn(2) == 0 },
	}
}

// attempt is one entry in the ordered generation chain.
type attempt struct {
	model  string
	config generationConfig
	source generator.Source
	// when gates the attempt on the previous failure. nil means always run.
	when func(prev error) bool
}

// Generate produces lyrics for the request, degrading through the attempt
// chain. See the package comment for the contract.
func (c *Client) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Genre) == "" {
		return nil, errors.New("gemini: topic and genre are required for generating rap lyrics")
	}

	lineCount := req.StanzaCount
	if lineCount == 0 {
		lineCount = defaultLineCount
	}

	// Rhyme scheme is presentational guidance text in the prompt, not a
	// structural guarantee on the output.
	rhymeScheme := "ABAB"
	if c.coin() {
		rhymeScheme = "AABB"
	}

	prompt := buildPrompt(req.Topic, req.Genre, rhymeScheme, lineCount, req.Explicit)

	attempts := []attempt{
		{
			model: c.config.PrimaryModel,
			config: generationConfig{
				Temperature:     0.9,
				TopP:            0.95,
				MaxOutputTokens: 1024,
			},
			source: generator.SourcePrimary,
		},
		{
			model: c.config.FallbackModel,
			config: generationConfig{
				Temperature:     0.9,
				MaxOutputTokens: 1024,
			},
			source: generator.SourceFallbackModel,
			when:   isModelNotFound,
		},
	}

	var lastErr error
	for _, a := range attempts {
		if a.when != nil && !a.when(lastErr) {
			continue
		}

		text, err := c.generateContent(ctx, a.model, a.config, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			c.logger.Info("generated rap lyrics",
				slog.String("model", a.model),
				slog.String("source", string(a.source)),
			)
			return &generator.Result{Content: text, Source: a.source}, nil
		}
		if err == nil {
			err = errors.New("gemini: empty response from provider")
		}

		c.logger.Warn("generation attempt failed",
			slog.String("model", a.model),
			slog.String("error", err.Error()),
		)
		lastErr = err
	}

	// Every provider attempt failed — fall back to the canned sample so the
	// caller still gets something to show.
	c.logger.Info("using local sample lyrics fallback")
	return &generator.Result{Content: sampleLyrics, Source: generator.SourceSample}, nil
}

// buildPrompt composes the natural-language instruction for the model.
func buildPrompt(topic, genre, rhymeScheme string, lineCount int, explicit bool) string {
	explicitOption := "Keep the content PG-13, no explicit language"
	if explicit {
		explicitOption = "You can use explicit language appropriate for the genre"
	}

	return fmt.Sprintf(`You are a professional rap lyricist. Create a rap with %d lines about %q in %s style.
Rules:
- Use rhyme scheme: %s
- %s
- Keep each line to a maximum of %d words
- Format as numbered stanzas
- Make it creative and original`,
		lineCount, topic, genre, rhymeScheme, explicitOption, maxPromptWordsPerLine)
}

// --- wire types for the generateContent endpoint ---

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// apiError is a provider-level failure with enough detail for the attempt
// chain to decide whether the fallback model applies.
type apiError struct {
	HTTPStatus int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini: API returned status %d: %s", e.HTTPStatus, e.Message)
}

// isModelNotFound reports whether the failure means the requested model does
// not exist — the one case where retrying with the fallback model makes sense.
func isModelNotFound(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatus == http.StatusNotFound {
		return true
	}
	// The API has also reported missing models as 400s with a message like
	// "models/gemini-1.5-pro is not found for API version v1beta".
	return strings.Contains(apiErr.Message, "models/") && strings.Contains(apiErr.Message, "not found")
}

// generateContent performs one synchronous call against one model.
func (c *Client) generateContent(ctx context.Context, model string, cfg generationConfig, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: calling provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Decode the error body for the message; fall back to the raw bytes
		// if it isn't the documented shape.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp apiErrorResponse
		message := strings.TrimSpace(string(raw))
		if jsonErr := json.Unmarshal(raw, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return "", &apiError{HTTPStatus: resp.StatusCode, Message: message}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", nil // treated as an empty response by the caller
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
