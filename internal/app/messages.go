package app

import "codecrafter-quiz/internal/domain"

// Message is a discrete event applied to a Session by Reduce.
type Message interface {
	message()
}

// CatalogLoaded delivers the quiz list.
type CatalogLoaded struct {
	Quizzes []domain.QuizSummary
}

// CatalogFailed reports a failed quiz list fetch.
type CatalogFailed struct {
	Err error
}

// Navigate moves to topics or to one of the static pages.
type Navigate struct {
	Page Page
}

// GetStarted leaves the home page for the topic list.
type GetStarted struct{}

type SelectTopic struct {
	Topic string
}

type StartQuiz struct {
	QuizID string
}

// QuizLoaded delivers the quiz detail requested by FetchQuiz.
type QuizLoaded struct {
	Quiz    domain.Quiz
	Attempt int
}

// QuizFailed reports a failed detail fetch for FetchQuiz.
type QuizFailed struct {
	QuizID  string
	Err     error
	Attempt int
}

type SelectAnswer struct {
	Option string
}

type NextQuestion struct{}

// Tick is one elapsed timer second for the given attempt.
type Tick struct {
	Attempt int
}

type GoHome struct{}

type OpenPost struct {
	PostID string
}

type DismissNotice struct{}

func (CatalogLoaded) message() {}
func (CatalogFailed) message() {}
func (Navigate) message()      {}
func (GetStarted) message()    {}
func (SelectTopic) message()   {}
func (StartQuiz) message()     {}
func (QuizLoaded) message()    {}
func (QuizFailed) message()    {}
func (SelectAnswer) message()  {}
func (NextQuestion) message()  {}
func (Tick) message()          {}
func (GoHome) message()        {}
func (OpenPost) message()      {}
func (DismissNotice) message() {}

// Command is a side effect requested by Reduce and executed by the Runtime.
type Command interface {
	command()
}

type FetchCatalog struct{}

type FetchQuiz struct {
	QuizID  string
	Attempt int
}

type StartTimer struct {
	Attempt int
}

type StopTimer struct{}

type TrackPageView struct {
	Path  string
	Title string
}

type TrackEvent struct {
	Event domain.AnalyticsEvent
}

func (FetchCatalog) command()  {}
func (FetchQuiz) command()     {}
func (StartTimer) command()    {}
func (StopTimer) command()     {}
func (TrackPageView) command() {}
func (TrackEvent) command()    {}
