// Package view derives what a presentation layer shows from a session
// snapshot. Nothing here mutates state.
package view

import (
	"fmt"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/domain"
)

const (
	labelNext   = "Next Question"
	labelFinish = "Finish Quiz"
)

type Option struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// QuestionCard is the question on screen during a quiz. Index is 1-based.
type QuestionCard struct {
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Text      string   `json:"text"`
	Options   []Option `json:"options"`
	NextLabel string   `json:"nextLabel"`
}

type View struct {
	SessionID string   `json:"sessionId"`
	Page      app.Page `json:"page"`
	Path      string   `json:"path"`
	Title     string   `json:"title"`
	Notice    string   `json:"notice,omitempty"`

	Topics           []string             `json:"topics,omitempty"`
	SelectedTopic    string               `json:"selectedTopic,omitempty"`
	TopicDescription string               `json:"topicDescription,omitempty"`
	Quizzes          []domain.QuizSummary `json:"quizzes,omitempty"`

	QuizName         string        `json:"quizName,omitempty"`
	QuizIntro        string        `json:"quizIntro,omitempty"`
	Question         *QuestionCard `json:"question,omitempty"`
	Timer            string        `json:"timer,omitempty"`
	RemainingSeconds int           `json:"remainingSeconds"`
	TimerRunning     bool          `json:"timerRunning"`

	Results *app.ResultsSummary `json:"results,omitempty"`

	Body  string         `json:"body,omitempty"`
	Posts []app.BlogPost `json:"posts,omitempty"`
	Post  *app.BlogPost  `json:"post,omitempty"`

	RenderedAt string `json:"renderedAt"`
}

// Render builds the view model for snap.
func Render(snap app.Snapshot, now time.Time) View {
	path, title := app.Location(snap.Session)
	v := View{
		SessionID:        snap.SessionID,
		Page:             snap.Page,
		Path:             path,
		Title:            title,
		Notice:           snap.Notice,
		RemainingSeconds: snap.RemainingSeconds,
		TimerRunning:     snap.TimerRunning,
		RenderedAt:       domain.FormatTimestamp(now),
	}

	switch snap.Page {
	case app.PageTopics:
		v.Topics = catalog.UniqueTopics(snap.Quizzes)

	case app.PageInstructions:
		v.SelectedTopic = snap.SelectedTopic
		v.TopicDescription = snap.TopicDescription
		v.Quizzes = catalog.FilterByTopic(snap.Quizzes, snap.SelectedTopic)

	case app.PageQuiz:
		if snap.SelectedQuiz != nil {
			v.QuizName = snap.SelectedQuiz.Name
			v.QuizIntro = snap.QuizIntro
		}
		v.Timer = FormatTimer(snap.RemainingSeconds)
		if q, ok := snap.CurrentQuestionDetail(); ok {
			v.Question = questionCard(snap.Session, q)
		}

	case app.PageResults:
		if snap.SelectedQuiz != nil {
			v.QuizName = snap.SelectedQuiz.Name
			results := app.ComputeResults(*snap.SelectedQuiz, snap.Answers, snap.Score)
			v.Results = &results
		}

	case app.PageAbout, app.PagePrivacy, app.PageTerms:
		v.Body = app.StaticPageText[snap.Page]

	case app.PageBlog:
		v.Posts = app.BlogPosts()

	case app.PageBlogPost:
		if post, ok := app.FindPost(snap.SelectedPost); ok {
			v.Post = &post
		}
	}
	return v
}

func questionCard(s app.Session, q domain.Question) *QuestionCard {
	total := len(s.SelectedQuiz.Questions)
	card := &QuestionCard{
		Index:     s.CurrentQuestion + 1,
		Total:     total,
		Text:      q.QuestionText,
		Options:   make([]Option, 0, len(q.Options)),
		NextLabel: labelNext,
	}
	if s.CurrentQuestion == total-1 {
		card.NextLabel = labelFinish
	}
	for _, opt := range q.Options {
		card.Options = append(card.Options, Option{
			Text:     opt,
			Selected: s.HasSelection && s.SelectedAnswer == opt,
		})
	}
	return card
}

// FormatTimer renders seconds as mm:ss.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
