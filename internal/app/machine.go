package app

import (
	"errors"
	"fmt"
	"strings"

	"codecrafter-quiz/internal/domain"
)

var (
	ErrEmptyTopic       = errors.New("topic is required")
	ErrQuizNotInCatalog = errors.New("quiz is not in the catalog")
	ErrNotInQuiz        = errors.New("no question in progress")
	ErrInvalidOption    = errors.New("option is not offered for this question")
	ErrAnswerRequired   = errors.New("answer required")
	ErrQuizInProgress   = errors.New("quiz in progress")
	ErrPageNotNavigable = errors.New("page cannot be opened directly")
	ErrPostNotFound     = errors.New("blog post not found")
)

// User-visible notices.
const (
	NoticeCatalogFailed  = "Failed to load quizzes. Please check if the backend server is running and returning an array."
	NoticeQuizFailed     = "Failed to load quiz details. Please try again."
	NoticeAnswerRequired = "Please select an answer before proceeding!"
)

const (
	eventCategoryQuiz    = "Quiz"
	eventActionStarted   = "Quiz Started"
	eventActionCompleted = "Quiz Completed"
)

// Reduce applies msg to s and returns the next session with the side effects
// to run. A rejected message returns an error and leaves quiz fields as they
// were. s is never mutated.
func Reduce(s Session, msg Message) (Session, []Command, error) {
	next := s.Clone()
	cmds, err := apply(&next, msg)

	beforePath, beforeTitle := Location(s)
	afterPath, afterTitle := Location(next)
	if beforePath != afterPath || beforeTitle != afterTitle {
		cmds = append(cmds, TrackPageView{Path: afterPath, Title: afterTitle})
	}
	return next, cmds, err
}

func apply(s *Session, msg Message) ([]Command, error) {
	switch m := msg.(type) {
	case CatalogLoaded:
		s.Quizzes = append([]domain.QuizSummary{}, m.Quizzes...)
		return nil, nil

	case CatalogFailed:
		s.Quizzes = []domain.QuizSummary{}
		s.Notice = NoticeCatalogFailed
		return nil, nil

	case GetStarted:
		if s.TimerRunning {
			return nil, ErrQuizInProgress
		}
		s.Page = PageTopics
		if len(s.Quizzes) == 0 {
			return []Command{FetchCatalog{}}, nil
		}
		return nil, nil

	case Navigate:
		return navigate(s, m.Page)

	case SelectTopic:
		topic := strings.TrimSpace(m.Topic)
		if topic == "" {
			return nil, ErrEmptyTopic
		}
		if s.TimerRunning {
			return nil, ErrQuizInProgress
		}
		s.SelectedTopic = topic
		s.TopicDescription = topicDescription(topic)
		s.Page = PageInstructions
		return nil, nil

	case StartQuiz:
		if s.TimerRunning {
			return nil, ErrQuizInProgress
		}
		if _, ok := s.summary(m.QuizID); !ok {
			return nil, ErrQuizNotInCatalog
		}
		s.Attempt++
		s.PendingQuizID = m.QuizID
		s.Notice = ""
		return []Command{FetchQuiz{QuizID: m.QuizID, Attempt: s.Attempt}}, nil

	case QuizLoaded:
		if m.Attempt != s.Attempt || s.PendingQuizID == "" {
			return nil, nil
		}
		if len(m.Quiz.Questions) == 0 {
			abandonAttempt(s)
			return nil, domain.ErrEmptyQuiz
		}
		return beginAttempt(s, m.Quiz), nil

	case QuizFailed:
		if m.Attempt != s.Attempt || s.PendingQuizID == "" {
			return nil, nil
		}
		abandonAttempt(s)
		return nil, nil

	case SelectAnswer:
		q, ok := s.CurrentQuestionDetail()
		if !ok || !s.TimerRunning {
			return nil, ErrNotInQuiz
		}
		if !q.HasOption(m.Option) {
			return nil, ErrInvalidOption
		}
		s.SelectedAnswer = m.Option
		s.HasSelection = true
		s.Answers[s.CurrentQuestion] = m.Option
		return nil, nil

	case NextQuestion:
		q, ok := s.CurrentQuestionDetail()
		if !ok || !s.TimerRunning {
			return nil, ErrNotInQuiz
		}
		if !s.HasSelection {
			s.Notice = NoticeAnswerRequired
			return nil, ErrAnswerRequired
		}
		if s.SelectedAnswer == q.CorrectAnswer {
			s.Score++
		}
		s.SelectedAnswer = ""
		s.HasSelection = false
		s.Notice = ""
		if s.CurrentQuestion < len(s.SelectedQuiz.Questions)-1 {
			s.CurrentQuestion++
			return nil, nil
		}
		finishAttempt(s)
		return []Command{
			StopTimer{},
			TrackEvent{Event: domain.AnalyticsEvent{
				Category: eventCategoryQuiz,
				Action:   eventActionCompleted,
				Label:    s.SelectedQuiz.Name,
				Value:    s.Score,
			}},
		}, nil

	case Tick:
		if !s.TimerRunning || m.Attempt != s.Attempt {
			return nil, nil
		}
		s.RemainingSeconds--
		if s.RemainingSeconds > 0 {
			return nil, nil
		}
		s.RemainingSeconds = 0
		finishAttempt(s)
		return []Command{StopTimer{}}, nil

	case GoHome:
		s.resetQuizFields()
		s.Page = PageHome
		s.Attempt++
		return []Command{StopTimer{}}, nil

	case OpenPost:
		if s.TimerRunning {
			return nil, ErrQuizInProgress
		}
		if _, ok := FindPost(m.PostID); !ok {
			return nil, ErrPostNotFound
		}
		s.SelectedPost = m.PostID
		s.Page = PageBlogPost
		return nil, nil

	case DismissNotice:
		s.Notice = ""
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported message %T", msg)
	}
}

func navigate(s *Session, page Page) ([]Command, error) {
	switch page {
	case PageHome, PageTopics, PageAbout, PagePrivacy, PageTerms, PageBlog:
	default:
		return nil, fmt.Errorf("%w: %s", ErrPageNotNavigable, page)
	}
	if s.TimerRunning {
		return nil, ErrQuizInProgress
	}
	s.Page = page
	return nil, nil
}

// beginAttempt initializes every new-attempt field in one step.
func beginAttempt(s *Session, quiz domain.Quiz) []Command {
	summary, _ := s.summary(s.PendingQuizID)
	if quiz.ID == "" {
		quiz.ID = s.PendingQuizID
	}
	if quiz.Name == "" {
		quiz.Name = summary.Name
	}
	if quiz.Topic == "" {
		quiz.Topic = summary.Topic
	}

	s.SelectedQuiz = &quiz
	s.PendingQuizID = ""
	s.CurrentQuestion = 0
	s.Score = 0
	s.SelectedAnswer = ""
	s.HasSelection = false
	s.Answers = map[int]string{}
	s.RemainingSeconds = max(0, quiz.Duration*60)
	s.TimerRunning = true
	s.Page = PageQuiz
	s.QuizIntro = quiz.Introduction
	if s.QuizIntro == "" {
		s.QuizIntro = quizIntro(quiz.Topic, quiz.Name, quiz.Duration, len(quiz.Questions))
	}

	return []Command{
		StartTimer{Attempt: s.Attempt},
		TrackEvent{Event: domain.AnalyticsEvent{
			Category: eventCategoryQuiz,
			Action:   eventActionStarted,
			Label:    quiz.Name,
			Value:    quiz.Duration,
		}},
	}
}

// abandonAttempt drops a failed detail fetch and returns to the topic list.
func abandonAttempt(s *Session) {
	s.PendingQuizID = ""
	s.SelectedQuiz = nil
	s.QuizIntro = ""
	s.CurrentQuestion = 0
	s.Score = 0
	s.SelectedAnswer = ""
	s.HasSelection = false
	s.Answers = map[int]string{}
	s.RemainingSeconds = 0
	s.TimerRunning = false
	s.Page = PageTopics
	s.Notice = NoticeQuizFailed
}

// finishAttempt stops the timer and shows results in the same step, so a
// tick delivered afterwards finds TimerRunning false.
func finishAttempt(s *Session) {
	s.TimerRunning = false
	s.SelectedAnswer = ""
	s.HasSelection = false
	s.Page = PageResults
}
