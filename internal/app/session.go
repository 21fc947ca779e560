package app

import "codecrafter-quiz/internal/domain"

// Page identifies the view the session is on.
type Page string

const (
	PageHome         Page = "home"
	PageTopics       Page = "topics"
	PageInstructions Page = "instructions"
	PageQuiz         Page = "quiz"
	PageResults      Page = "results"
	PageAbout        Page = "about"
	PagePrivacy      Page = "privacy"
	PageTerms        Page = "terms"
	PageBlog         Page = "blog"
	PageBlogPost     Page = "blogPost"
)

// Session is the full mutable state of one user's position in the app.
//
// TimerRunning is true iff Page == PageQuiz and the attempt has not finished.
// Attempt is bumped on every new attempt and on GoHome; ticks and fetch
// results stamped with an older attempt are ignored.
type Session struct {
	Page    Page
	Quizzes []domain.QuizSummary

	SelectedTopic    string
	TopicDescription string

	SelectedQuiz     *domain.Quiz
	QuizIntro        string
	CurrentQuestion  int
	SelectedAnswer   string
	HasSelection     bool
	Answers          map[int]string
	Score            int
	RemainingSeconds int
	TimerRunning     bool

	SelectedPost  string
	PendingQuizID string
	Notice        string
	Attempt       int
}

// NewSession returns the application-start baseline.
func NewSession() Session {
	return Session{
		Page:    PageHome,
		Answers: map[int]string{},
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Session) Clone() Session {
	out := s
	out.Quizzes = append([]domain.QuizSummary(nil), s.Quizzes...)
	out.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	if s.SelectedQuiz != nil {
		q := *s.SelectedQuiz
		out.SelectedQuiz = &q
	}
	return out
}

// CurrentQuestionDetail returns the question on screen, if any.
func (s Session) CurrentQuestionDetail() (domain.Question, bool) {
	if s.Page != PageQuiz || s.SelectedQuiz == nil {
		return domain.Question{}, false
	}
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.SelectedQuiz.Questions) {
		return domain.Question{}, false
	}
	return s.SelectedQuiz.Questions[s.CurrentQuestion], true
}

// summary looks a quiz up in the last fetched catalog list.
func (s Session) summary(quizID string) (domain.QuizSummary, bool) {
	for _, q := range s.Quizzes {
		if q.ID == quizID {
			return q, true
		}
	}
	return domain.QuizSummary{}, false
}

// resetQuizFields restores the baseline for everything but the catalog list.
func (s *Session) resetQuizFields() {
	s.SelectedTopic = ""
	s.TopicDescription = ""
	s.SelectedQuiz = nil
	s.QuizIntro = ""
	s.CurrentQuestion = 0
	s.SelectedAnswer = ""
	s.HasSelection = false
	s.Answers = map[int]string{}
	s.Score = 0
	s.RemainingSeconds = 0
	s.TimerRunning = false
	s.SelectedPost = ""
	s.PendingQuizID = ""
	s.Notice = ""
}
