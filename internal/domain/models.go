package domain

// Question models a multiple-choice question. Options are unique per question
// and their order is the display order; CorrectAnswer is one of Options.
type Question struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Quiz is the full quiz detail served by GET /api/quizzes/{id}.
type Quiz struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Topic        string     `json:"topic"`
	Description  string     `json:"description,omitempty"`
	Duration     int        `json:"duration"` // minutes
	Introduction string     `json:"introduction,omitempty"`
	Questions    []Question `json:"questions"`
}

// Summary strips the questions from q.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:          q.ID,
		Name:        q.Name,
		Topic:       q.Topic,
		Duration:    q.Duration,
		Description: q.Description,
	}
}

// QuizSummary is the catalog list entry served by GET /api/quizzes.
type QuizSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Topic       string `json:"topic"`
	Duration    int    `json:"duration"`
	Description string `json:"description,omitempty"`
}

// Visit is the per-visitor ledger document.
type Visit struct {
	UserID       string `json:"-" bson:"userId"`
	VisitCount   int64  `json:"visitCount" bson:"visitCount"`
	FirstVisitAt string `json:"firstVisitAt" bson:"firstVisitAt"`
	LastVisitAt  string `json:"lastVisitAt" bson:"lastVisitAt"`
}

// AnalyticsEvent is a custom analytics event.
type AnalyticsEvent struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label"`
	Value    int    `json:"value"`
}
