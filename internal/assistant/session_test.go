// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/huddle-tui/internal/inference"
	"github.com/jeranaias/huddle-tui/internal/model"
)

func echo(prefix string) inference.GeneratorFunc {
	return func(ctx context.Context, req inference.Request) (inference.Response, error) {
		return inference.Response{Text: prefix}, nil
	}
}

func failing(err error) inference.GeneratorFunc {
	return func(ctx context.Context, req inference.Request) (inference.Response, error) {
		return inference.Response{}, err
	}
}

func TestAsk_RecordsExchange(t *testing.T) {
	var got inference.Request
	gen := inference.GeneratorFunc(func(ctx context.Context, req inference.Request) (inference.Response, error) {
		got = req
		return inference.Response{Text: "  Paris  "}, nil
	})
	s := NewSession(gen, WithMaxTokens(64))

	reply, err := s.Ask(context.Background(), " capital of France? ")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if reply.Content != "Paris" || reply.Role != model.AIRoleAssistant || reply.Synthetic {
		t.Errorf("reply = %+v, want real assistant reply %q", reply, "Paris")
	}
	if got.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d, want 64", got.MaxTokens)
	}
	if !strings.HasSuffix(got.Prompt, "You: capital of France?\n\nAssistant:") {
		t.Errorf("Prompt = %q", got.Prompt)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.AIRoleUser || msgs[0].Content != "capital of France?" {
		t.Errorf("first = %+v", msgs[0])
	}
	if s.Busy() {
		t.Error("Busy() = true after reply")
	}
}

func TestAsk_FailureBecomesSyntheticReply(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not running", inference.ErrNotRunning, "not running"},
		{"timeout", inference.ErrTimeout, "timed out"},
		{"model", inference.ErrModelNotFound, "not installed"},
		{"other", errors.New("boom"), "try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(failing(tt.err))
			reply, err := s.Ask(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Ask() error = %v, want nil", err)
			}
			if !reply.Synthetic || reply.Role != model.AIRoleAssistant {
				t.Errorf("reply = %+v, want synthetic assistant reply", reply)
			}
			if !strings.HasPrefix(reply.Content, ReplyFailed) || !strings.Contains(reply.Content, tt.want) {
				t.Errorf("Content = %q, want it to mention %q", reply.Content, tt.want)
			}
			if n := len(s.Messages()); n != 2 {
				t.Errorf("len(Messages) = %d, want 2", n)
			}
		})
	}
}

func TestAsk_EmptyPromptIsNoop(t *testing.T) {
	calls := 0
	s := NewSession(inference.GeneratorFunc(func(ctx context.Context, req inference.Request) (inference.Response, error) {
		calls++
		return inference.Response{Text: "x"}, nil
	}))

	if _, err := s.Ask(context.Background(), "  \n "); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Ask() error = %v, want ErrEmptyPrompt", err)
	}
	if calls != 0 || len(s.Messages()) != 0 {
		t.Errorf("calls = %d messages = %d, want nothing recorded", calls, len(s.Messages()))
	}
}

func TestAsk_EmptyReply(t *testing.T) {
	s := NewSession(echo("   "))
	reply, _ := s.Ask(context.Background(), "hi")
	if !reply.Synthetic || reply.Content != ReplyEmpty {
		t.Errorf("reply = %+v, want %q", reply, ReplyEmpty)
	}
}

func TestAsk_Throttled(t *testing.T) {
	s := NewSession(echo("ok"), WithRateLimit(1))

	first, _ := s.Ask(context.Background(), "one")
	second, _ := s.Ask(context.Background(), "two")

	if first.Synthetic {
		t.Errorf("first reply throttled: %+v", first)
	}
	if !second.Synthetic || second.Content != ReplyThrottled {
		t.Errorf("second = %+v, want throttled reply", second)
	}
}

func TestAsk_HistoryIsReplayed(t *testing.T) {
	var prompts []string
	gen := inference.GeneratorFunc(func(ctx context.Context, req inference.Request) (inference.Response, error) {
		prompts = append(prompts, req.Prompt)
		return inference.Response{Text: "answer"}, nil
	})
	s := NewSession(gen, WithRateLimit(0), WithHistory(2))

	s.Ask(context.Background(), "q1")
	s.Ask(context.Background(), "q2")
	s.Ask(context.Background(), "q3")

	last := prompts[2]
	if strings.Contains(last, "q1") {
		t.Errorf("prompt kept turns beyond history limit: %q", last)
	}
	if !strings.Contains(last, "You: q2\n\nAssistant: answer") {
		t.Errorf("prompt missing previous turn: %q", last)
	}
}

func TestClear_DropsInFlightReply(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(inference.GeneratorFunc(func(ctx context.Context, req inference.Request) (inference.Response, error) {
		close(started)
		<-release
		return inference.Response{Text: "late"}, nil
	}))

	done := make(chan model.AIMessage, 1)
	go func() {
		reply, _ := s.Ask(context.Background(), "slow")
		done <- reply
	}()

	<-started
	if !s.Busy() {
		t.Error("Busy() = false while request in flight")
	}
	s.Clear()
	close(release)

	if reply := <-done; reply.Content != "late" {
		t.Errorf("reply = %q, want late", reply.Content)
	}
	if n := len(s.Messages()); n != 0 {
		t.Errorf("len(Messages) = %d after Clear, want 0", n)
	}
}

func TestBuildPrompt_SkipsSynthetic(t *testing.T) {
	history := []model.AIMessage{
		{Role: model.AIRoleUser, Content: "hi"},
		{Role: model.AIRoleAssistant, Content: ReplyFailed, Synthetic: true},
	}
	got := BuildPrompt(history, "again")
	want := "You: hi\n\nYou: again\n\nAssistant:"
	if got != want {
		t.Errorf("BuildPrompt() = %q, want %q", got, want)
	}
}
