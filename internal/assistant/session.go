// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant runs the AI side-panel conversation.
//
// A Session keeps its own transcript, independent of any channel. Every
// question gets an answer: when inference fails or the session is throttled,
// a synthetic assistant reply explains what happened instead of an error.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/huddle-tui/internal/inference"
	"github.com/jeranaias/huddle-tui/internal/model"
)

const (
	// DefaultMaxTokens bounds each reply.
	DefaultMaxTokens = 512

	// DefaultHistoryTurns is how many prior messages are replayed as context.
	DefaultHistoryTurns = 12

	// DefaultRequestsPerMinute throttles the panel.
	DefaultRequestsPerMinute = 20
)

// Synthetic reply texts.
const (
	ReplyFailed    = "Sorry, I couldn't generate a response right now."
	ReplyThrottled = "You're sending requests too quickly. Please wait a moment and try again."
	ReplyEmpty     = "The assistant returned an empty response."
)

// ErrEmptyPrompt is returned by Ask for a blank prompt. Nothing is recorded.
var ErrEmptyPrompt = errors.New("prompt is empty")

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Session.
type Option func(*Session)

// WithMaxTokens sets the reply token budget.
func WithMaxTokens(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithHistory sets how many prior messages are sent as context.
func WithHistory(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.historyTurns = n
		}
	}
}

// WithRateLimit allows perMinute requests per minute with a burst of the same
// size. Zero or less disables throttling.
func WithRateLimit(perMinute int) Option {
	return func(s *Session) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one running side-panel conversation. Safe for concurrent use.
type Session struct {
	gen          inference.Generator
	limiter      *rate.Limiter
	maxTokens    int
	historyTurns int
	logger       *slog.Logger

	mu       sync.Mutex
	messages []model.AIMessage
	busy     int
	epoch    uint64
}

// NewSession creates a session that asks gen for replies.
func NewSession(gen inference.Generator, opts ...Option) *Session {
	s := &Session{
		gen:          gen,
		maxTokens:    DefaultMaxTokens,
		historyTurns: DefaultHistoryTurns,
		logger:       slog.Default(),
	}
	WithRateLimit(DefaultRequestsPerMinute)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask records prompt, asks for a reply and records it. The reply is returned
// with a nil error even when it is synthetic. If the session was cleared
// while the request was in flight the reply is returned but not recorded.
func (s *Session) Ask(ctx context.Context, prompt string) (model.AIMessage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return model.AIMessage{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	history := s.recentLocked()
	s.messages = append(s.messages, model.NewAIMessage(model.AIRoleUser, prompt))
	s.busy++
	epoch := s.epoch
	s.mu.Unlock()

	reply := s.generate(ctx, BuildPrompt(history, prompt))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy--
	if s.epoch == epoch {
		s.messages = append(s.messages, reply)
	}
	return reply, nil
}

func (s *Session) generate(ctx context.Context, prompt string) model.AIMessage {
	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn("assistant_throttled")
		return synthetic(ReplyThrottled)
	}

	resp, err := s.gen.GenerateText(ctx, inference.Request{Prompt: prompt, MaxTokens: s.maxTokens})
	if err != nil {
		s.logger.Warn("assistant_generate_failed", "error", err)
		return synthetic(ReplyFailed + " " + describe(err))
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return synthetic(ReplyEmpty)
	}
	return model.NewAIMessage(model.AIRoleAssistant, text)
}

// recentLocked returns the tail of the transcript used as context.
func (s *Session) recentLocked() []model.AIMessage {
	n := len(s.messages)
	if s.historyTurns < n {
		n = s.historyTurns
	}
	out := make([]model.AIMessage, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.AIMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AIMessage(nil), s.messages...)
}

// Clear empties the transcript. Replies still in flight are dropped.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.epoch++
}

// Busy reports whether any request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy > 0
}

// =============================================================================
// PROMPTS
// =============================================================================

// BuildPrompt renders history and the new question as a plain transcript
// ending with an open assistant turn.
func BuildPrompt(history []model.AIMessage, prompt string) string {
	var b strings.Builder
	for _, m := range history {
		if m.Synthetic {
			continue
		}
		b.WriteString(m.Role.DisplayName())
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	b.WriteString(model.AIRoleUser.DisplayName())
	b.WriteString(": ")
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(model.AIRoleAssistant.DisplayName())
	b.WriteString(":")
	return b.String()
}

func synthetic(text string) model.AIMessage {
	m := model.NewAIMessage(model.AIRoleAssistant, text)
	m.Synthetic = true
	return m
}

// describe names the failure in words suitable for the panel.
func describe(err error) string {
	switch {
	case inference.IsNotRunning(err):
		return "The inference service is not running."
	case inference.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	case errors.Is(err, inference.ErrModelNotFound):
		return "The configured model is not installed."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	default:
		return "Please try again later."
	}
}
