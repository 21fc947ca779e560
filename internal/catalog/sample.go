package catalog

import "codecrafter-quiz/internal/domain"

// Sample is the bundled catalog used by the static loader and the seed command.
func Sample() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:          "js-basics",
			Name:        "JavaScript Basics",
			Topic:       "JavaScript",
			Description: "Variables, types and scope.",
			Duration:    5,
			Questions: []domain.Question{
				{
					QuestionText:  "Which keyword declares a block-scoped variable?",
					Options:       []string{"var", "let", "function", "global"},
					CorrectAnswer: "let",
					Explanation:   "let and const are block scoped; var is function scoped.",
				},
				{
					QuestionText:  "What does typeof null return?",
					Options:       []string{"null", "undefined", "object", "number"},
					CorrectAnswer: "object",
					Explanation:   "A long-standing quirk of the language: typeof null is \"object\".",
				},
				{
					QuestionText:  "Which operator compares without type coercion?",
					Options:       []string{"==", "===", "=", "!="},
					CorrectAnswer: "===",
				},
			},
		},
		{
			ID:          "js-async",
			Name:        "Asynchronous JavaScript",
			Topic:       "JavaScript",
			Description: "Promises, async/await and the event loop.",
			Duration:    10,
			Questions: []domain.Question{
				{
					QuestionText:  "Which method runs a callback once every promise settles?",
					Options:       []string{"Promise.all", "Promise.race", "Promise.allSettled", "Promise.any"},
					CorrectAnswer: "Promise.allSettled",
				},
				{
					QuestionText:  "Where are resolved promise callbacks queued?",
					Options:       []string{"Macrotask queue", "Microtask queue", "Call stack", "Render queue"},
					CorrectAnswer: "Microtask queue",
					Explanation:   "Promise reactions run as microtasks, before the next macrotask.",
				},
			},
		},
		{
			ID:           "py-fundamentals",
			Name:         "Python Fundamentals",
			Topic:        "Python",
			Description:  "Core syntax and built-in types.",
			Duration:     5,
			Introduction: "Warm up with the Python essentials every developer meets on day one.",
			Questions: []domain.Question{
				{
					QuestionText:  "Which type is immutable?",
					Options:       []string{"list", "dict", "tuple", "set"},
					CorrectAnswer: "tuple",
				},
				{
					QuestionText:  "What does len({'a': 1, 'b': 2}) return?",
					Options:       []string{"1", "2", "4", "Error"},
					CorrectAnswer: "2",
					Explanation:   "len on a dict counts its keys.",
				},
			},
		},
		{
			ID:          "go-concurrency",
			Name:        "Go Concurrency",
			Topic:       "Go",
			Description: "Goroutines, channels and select.",
			Duration:    8,
			Questions: []domain.Question{
				{
					QuestionText:  "What happens when sending on a closed channel?",
					Options:       []string{"It blocks", "It panics", "It is ignored", "It returns an error"},
					CorrectAnswer: "It panics",
				},
				{
					QuestionText:  "Which statement waits on several channel operations?",
					Options:       []string{"switch", "select", "for range", "go"},
					CorrectAnswer: "select",
				},
				{
					QuestionText:  "Which package provides WaitGroup?",
					Options:       []string{"context", "sync", "runtime", "errgroup"},
					CorrectAnswer: "sync",
				},
			},
		},
	}
}

// SampleByID indexes Sample by quiz id.
func SampleByID() map[string]domain.Quiz {
	quizzes := Sample()
	out := make(map[string]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		out[q.ID] = q
	}
	return out
}
