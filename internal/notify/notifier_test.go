package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubSender struct {
	name   string
	err    error
	titles []string
}

func (s *stubSender) Send(ctx context.Context, title, message string) error {
	s.titles = append(s.titles, title)
	return s.err
}

func (s *stubSender) Name() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscordSenderPostsBoldTitle(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	if err := s.Send(context.Background(), "day 1 finished", "pnl 42"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(got, "**day 1 finished**") || !strings.Contains(got, "pnl 42") {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestDiscordSenderReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewDiscordSender(srv.URL).Send(context.Background(), "t", "m")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected a status error, got %v", err)
	}
}

func TestNotifierContinuesPastFailingSender(t *testing.T) {
	broken := &stubSender{name: "broken", err: errors.New("boom")}
	working := &stubSender{name: "working"}

	n := NewNotifier([]Sender{broken, working}, testLogger())
	err := n.RunFailed(context.Background(), "3", errors.New("feed truncated"))
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected the broken sender reported, got %v", err)
	}
	if len(working.titles) != 1 {
		t.Fatalf("expected the working sender still called, got %+v", working.titles)
	}
}

func TestNotifierWithNoSendersIsSilent(t *testing.T) {
	n := NewNotifier(nil, testLogger())
	if err := n.RunFailed(context.Background(), "0", errors.New("x")); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
