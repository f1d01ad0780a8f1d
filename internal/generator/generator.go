// Package generator defines the interface for producing rap lyrics from a
// structured request. The concrete Gemini implementation lives in
// generator/gemini; tests use mocks.
package generator

import "context"

// Request describes one lyric generation call.
type Request struct {
	Topic       string `json:"topic"`
	Genre       string `json:"genre"`
	StanzaCount int    `json:"stanzaCount"`
	Explicit    bool   `json:"explicit"`
}

// Source tags where the returned text came from. The generation pipeline is
// an ordered attempt chain — primary model, then a named fallback model, then
// a canned local sample — and the tag records which attempt produced the
// result.
type Source string

const (
	SourcePrimary       Source = "primary"
	SourceFallbackModel Source = "fallback-model"
	SourceSample        Source = "sample"
)

// Result is the outcome of a generation call. Content is never empty.
type Result struct {
	Content string `json:"content"`
	Source  Source `json:"-"`
}

// Generator produces lyric text from a request.
//
// Contract: implementations return an error only for precondition violations
// (empty topic or genre), checked before any network call. Provider failures
// never surface to the caller — the implementation degrades through its
// fallback chain and always returns non-empty content.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
