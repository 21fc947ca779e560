package app

import (
	"math"

	"codecrafter-quiz/internal/domain"
)

const (
	notAnswered        = "Not answered"
	defaultExplanation = "A detailed explanation for this programming concept will be provided here. " +
		"This section is designed to give you a deeper understanding of the code logic, algorithms, or principles involved, " +
		"clarifying why the correct answer is the best choice and addressing common misconceptions from other options. " +
		"Reviewing these explanations is key to improving your coding skills!"
)

// ReviewItem is one row of the post-quiz review.
type ReviewItem struct {
	QuestionText  string `json:"questionText"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// ResultsSummary is derived from a finished attempt.
type ResultsSummary struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Feedback   string       `json:"feedback"`
	Review     []ReviewItem `json:"review"`
}

// ComputeResults scores the attempt for display. It does not mutate its inputs.
func ComputeResults(quiz domain.Quiz, answers map[int]string, score int) ResultsSummary {
	total := len(quiz.Questions)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(score) / float64(total) * 100))
	}

	review := make([]ReviewItem, 0, total)
	for i, q := range quiz.Questions {
		answer, ok := answers[i]
		item := ReviewItem{
			QuestionText:  q.QuestionText,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok && answer == q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if !ok || answer == "" {
			item.UserAnswer = notAnswered
		}
		if item.Explanation == "" {
			item.Explanation = defaultExplanation
		}
		review = append(review, item)
	}

	return ResultsSummary{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Feedback:   Feedback(percentage),
		Review:     review,
	}
}

// Feedback buckets a percentage into the qualitative message shown on results.
func Feedback(percentage int) string {
	switch {
	case percentage == 100:
		return "Excellent! You aced it! A true coding master!"
	case percentage >= 80:
		return "Great job! You have a strong grasp of programming concepts."
	case percentage >= 60:
		return "Good effort! Keep coding and practicing to improve."
	case percentage >= 40:
		return "You're getting there! Review the programming concepts and try again."
	default:
		return "Keep learning! Don't give up on coding, practice makes perfect."
	}
}
