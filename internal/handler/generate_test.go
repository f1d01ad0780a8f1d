package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshyelwatkar/rapmania/internal/generator"
	"github.com/harshyelwatkar/rapmania/internal/handler"
)

// MockGenerator captures the request and returns a canned result, so handler
// tests never touch the network.
type MockGenerator struct {
	CapturedReq generator.Request
	ReturnRes   *generator.Result
	ReturnErr   error
	Calls       int
}

func (m *MockGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	m.Calls++
	m.CapturedReq = req
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnRes, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGenerateHandler_HandleGenerate(t *testing.T) {
	logger := testLogger()

	t.Run("valid generation", func(t *testing.T) {
		mockGen := &MockGenerator{
			ReturnRes: &generator.Result{
				Content: "1. Chasing dreams down the boulevard tonight",
				Source:  generator.SourcePrimary,
			},
		}
		h := handler.NewGenerateHandler(mockGen, logger)

		reqBody := `{"genre":"Hip-Hop","topic":"dreams","stanzaCount":8,"explicit":false}`
		req := httptest.NewRequest(http.MethodPost, "/api/rap/generate", bytes.NewBufferString(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Content string `json:"content"`
		}
		err := json.NewDecoder(rr.Body).Decode(&res)
		assert.NoError(t, err)
		assert.Equal(t, "1. Chasing dreams down the boulevard tonight", res.Content)

		assert.Equal(t, "dreams", mockGen.CapturedReq.Topic)
		assert.Equal(t, "Hip-Hop", mockGen.CapturedReq.Genre)
		assert.Equal(t, 8, mockGen.CapturedReq.StanzaCount)
	})

	t.Run("invalid request body", func(t *testing.T) {
		mockGen := &MockGenerator{}
		h := handler.NewGenerateHandler(mockGen, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/rap/generate", bytes.NewBufferString(`{"topic":`))
		rr := httptest.NewRecorder()

		h.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Zero(t, mockGen.Calls, "generator must not run on invalid input")
	})

	t.Run("field validation", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"missing topic", `{"genre":"Drill","stanzaCount":8}`},
			{"topic too short", `{"genre":"Drill","topic":"ab","stanzaCount":8}`},
			{"missing genre", `{"topic":"dreams","stanzaCount":8}`},
			{"stanza count too low", `{"genre":"Drill","topic":"dreams","stanzaCount":3}`},
			{"stanza count too high", `{"genre":"Drill","topic":"dreams","stanzaCount":17}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockGen := &MockGenerator{}
				h := handler.NewGenerateHandler(mockGen, logger)

				req := httptest.NewRequest(http.MethodPost, "/api/rap/generate", bytes.NewBufferString(tt.body))
				rr := httptest.NewRecorder()

				h.HandleGenerate(rr, req)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Zero(t, mockGen.Calls, "generator must not run on invalid input")

				var res handler.ErrorResponse
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
				assert.Equal(t, "validation_error", res.Error)
			})
		}
	})

	t.Run("missing provider credential", func(t *testing.T) {
		// A nil generator means GEMINI_API_KEY was never set.
		h := handler.NewGenerateHandler(nil, logger)

		reqBody := `{"genre":"Hip-Hop","topic":"dreams","stanzaCount":8}`
		req := httptest.NewRequest(http.MethodPost, "/api/rap/generate", bytes.NewBufferString(reqBody))
		rr := httptest.NewRecorder()

		h.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "misconfigured", res.Error)
		assert.Contains(t, res.Message, "GEMINI_API_KEY")
	})
}
