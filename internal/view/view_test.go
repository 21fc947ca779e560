package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/catalog"
)

var renderTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFormatTimer(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 60: "01:00", 605: "10:05", -3: "00:00"}
	for in, want := range cases {
		if got := FormatTimer(in); got != want {
			t.Fatalf("FormatTimer(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTopicsAndInstructions(t *testing.T) {
	s := step(t, app.NewSession(), app.CatalogLoaded{Quizzes: catalog.Summaries(catalog.Sample())})
	s = step(t, s, app.GetStarted{})

	v := Render(snapshot(s), renderTime)
	if v.Path != "/topics" || len(v.Topics) != 3 || v.Topics[0] != "JavaScript" {
		t.Fatalf("unexpected topics view %+v", v)
	}

	s = step(t, s, app.SelectTopic{Topic: "JavaScript"})
	v = Render(snapshot(s), renderTime)
	if v.Path != "/instructions/javascript" || len(v.Quizzes) != 2 {
		t.Fatalf("unexpected instructions view %+v", v)
	}
	if !strings.Contains(v.TopicDescription, "JavaScript") {
		t.Fatalf("missing topic description")
	}
	if v.RenderedAt != "2024-06-01T12:00:00.000Z" {
		t.Fatalf("unexpected render time %q", v.RenderedAt)
	}
}

func TestRenderQuestionCard(t *testing.T) {
	s := inQuiz(t)

	v := Render(snapshot(s), renderTime)
	if v.Question == nil || v.Question.Index != 1 || v.Question.Total != 3 {
		t.Fatalf("unexpected card %+v", v.Question)
	}
	if v.Question.NextLabel != labelNext || v.Timer != "05:00" {
		t.Fatalf("unexpected label/timer %q %q", v.Question.NextLabel, v.Timer)
	}

	s = step(t, s, app.SelectAnswer{Option: "let"})
	v = Render(snapshot(s), renderTime)
	if !v.Question.Options[1].Selected || v.Question.Options[0].Selected {
		t.Fatalf("selection not reflected %+v", v.Question.Options)
	}

	s = step(t, s, app.NextQuestion{})
	s = step(t, s, app.SelectAnswer{Option: "object"})
	s = step(t, s, app.NextQuestion{})
	v = Render(snapshot(s), renderTime)
	if v.Question.Index != 3 || v.Question.NextLabel != labelFinish {
		t.Fatalf("expected finish label on last question, got %+v", v.Question)
	}
}

func TestRenderResults(t *testing.T) {
	s := inQuiz(t)
	for _, answer := range []string{"let", "null", "==="} {
		s = step(t, s, app.SelectAnswer{Option: answer})
		s = step(t, s, app.NextQuestion{})
	}

	v := Render(snapshot(s), renderTime)
	if v.Page != app.PageResults || v.Results == nil {
		t.Fatalf("expected results view, got %+v", v)
	}
	if v.Results.Score != 2 || v.Results.Percentage != 67 {
		t.Fatalf("unexpected results %+v", v.Results)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, v); err != nil {
		t.Fatalf("write text: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Score: 2 / 3 (67%)") || !strings.Contains(out, "Good effort!") {
		t.Fatalf("unexpected text output:\n%s", out)
	}
}

func TestRenderStaticPagesAndBlog(t *testing.T) {
	s := step(t, app.NewSession(), app.Navigate{Page: app.PageAbout})
	if v := Render(snapshot(s), renderTime); v.Body == "" || v.Path != "/about" {
		t.Fatalf("unexpected about view %+v", v)
	}

	s = step(t, s, app.Navigate{Page: app.PageBlog})
	v := Render(snapshot(s), renderTime)
	if len(v.Posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(v.Posts))
	}

	s = step(t, s, app.OpenPost{PostID: v.Posts[1].ID})
	v = Render(snapshot(s), renderTime)
	if v.Post == nil || v.Post.ID != "python-data-structures" || v.Path != "/blog/python-data-structures" {
		t.Fatalf("unexpected post view %+v", v)
	}
}

func TestWriteTextQuiz(t *testing.T) {
	s := step(t, inQuiz(t), app.SelectAnswer{Option: "var"})

	var buf bytes.Buffer
	if err := WriteText(&buf, Render(snapshot(s), renderTime)); err != nil {
		t.Fatalf("write text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[05:00]", "Question 1 of 3", " *1) var", "  2) let"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func inQuiz(t *testing.T) app.Session {
	t.Helper()
	s := step(t, app.NewSession(), app.CatalogLoaded{Quizzes: catalog.Summaries(catalog.Sample())})
	s = step(t, s, app.StartQuiz{QuizID: "js-basics"})
	quiz := catalog.SampleByID()["js-basics"]
	return step(t, s, app.QuizLoaded{Quiz: quiz, Attempt: s.Attempt})
}

func step(t *testing.T, s app.Session, msg app.Message) app.Session {
	t.Helper()
	next, _, err := app.Reduce(s, msg)
	if err != nil {
		t.Fatalf("reduce %T: %v", msg, err)
	}
	return next
}

func snapshot(s app.Session) app.Snapshot {
	return app.Snapshot{Session: s, SessionID: "s1", UpdatedAt: renderTime}
}
