package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/infra/memory"
	"codecrafter-quiz/internal/view"
)

func TestPlayerCompletesQuiz(t *testing.T) {
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(catalog.Sample()), time.Minute)
	rt := app.NewRuntime("term", catalog.NewLocal(repo), nil)

	inR, inW := io.Pipe()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- newPlayer(rt, time.Now).run(context.Background(), inR, out) }()

	waitOutput(t, out, "Type 'start' to get started.")

	type step struct {
		line string
		want string
	}
	steps := []step{
		{"start", "2) Python"},
		{"2", "Python Fundamentals (5 min)"},
		{"1", "Question 1 of 2: Which type is immutable?"},
		{"3", " *3) tuple"},
		{"next", "Question 2 of 2"},
		{"7", "choose 1-4"},
		{"2", " *2) 2"},
		{"next", "Score: 2 / 2 (100%)"},
		{"about", "CodeCrafter Quizzes is a free platform"},
	}
	for _, s := range steps {
		if _, err := io.WriteString(inW, s.line+"\n"); err != nil {
			t.Fatalf("write %q: %v", s.line, err)
		}
		waitOutput(t, out, s.want)
	}

	_, _ = io.WriteString(inW, "quit\n")
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("player did not stop on quit")
	}
	_ = inW.Close()
}

func TestPlayerReportsRejectedCommands(t *testing.T) {
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(catalog.Sample()), time.Minute)
	rt := app.NewRuntime("term", catalog.NewLocal(repo), nil)

	in := strings.NewReader("fly\n1\nnext\n")
	out := &syncBuffer{}
	if err := newPlayer(rt, time.Now).run(context.Background(), in, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`unknown command "fly"`,
		"! nothing to pick on this page",
		"! " + app.ErrNotInQuiz.Error(),
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPickByPage(t *testing.T) {
	v := view.View{Page: app.PageBlog, Posts: app.BlogPosts()}
	msg, err := pick(v, 1)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if open, ok := msg.(app.OpenPost); !ok || open.PostID != app.BlogPosts()[0].ID {
		t.Fatalf("unexpected message %#v", msg)
	}

	if _, err := pick(view.View{Page: app.PageTopics, Topics: []string{"Go"}}, 2); err == nil {
		t.Fatalf("expected range error")
	}
	if _, err := pick(view.View{Page: app.PageHome}, 1); err != errNoChoice {
		t.Fatalf("expected errNoChoice, got %v", err)
	}
}

func TestScreenKeyIgnoresCountdown(t *testing.T) {
	a := app.Snapshot{Session: app.NewSession()}
	a.Page = app.PageQuiz
	a.RemainingSeconds = 300
	b := a
	b.RemainingSeconds = 299
	if screenKey(a) != screenKey(b) {
		t.Fatalf("countdown should not change the screen key")
	}
	b.SelectedAnswer = "tuple"
	if screenKey(a) == screenKey(b) {
		t.Fatalf("selection should change the screen key")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("output never contained %q:\n%s", want, out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
