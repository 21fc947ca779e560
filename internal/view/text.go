package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"codecrafter-quiz/internal/app"
)

// WriteText renders v for a terminal. Numbered entries are the choices the
// play command accepts by number.
func WriteText(w io.Writer, v View) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n== %s ==\n", v.Title)
	if v.Notice != "" {
		fmt.Fprintf(bw, "! %s\n", v.Notice)
	}

	switch v.Page {
	case app.PageHome:
		fmt.Fprintln(bw, "Welcome to CodeCrafter Quizzes. Test your programming knowledge with timed quizzes.")
		fmt.Fprintln(bw, "Type 'start' to get started.")

	case app.PageTopics:
		if len(v.Topics) == 0 {
			fmt.Fprintln(bw, "No quizzes available.")
		}
		for i, topic := range v.Topics {
			fmt.Fprintf(bw, "  %d) %s\n", i+1, topic)
		}

	case app.PageInstructions:
		fmt.Fprintln(bw, v.TopicDescription)
		fmt.Fprintln(bw)
		for i, q := range v.Quizzes {
			fmt.Fprintf(bw, "  %d) %s (%d min)\n", i+1, q.Name, q.Duration)
			if q.Description != "" {
				fmt.Fprintf(bw, "     %s\n", q.Description)
			}
		}

	case app.PageQuiz:
		fmt.Fprintf(bw, "%s  [%s]\n", v.QuizName, v.Timer)
		if v.Question != nil {
			if v.Question.Index == 1 && v.QuizIntro != "" {
				fmt.Fprintln(bw, v.QuizIntro)
				fmt.Fprintln(bw)
			}
			fmt.Fprintf(bw, "Question %d of %d: %s\n", v.Question.Index, v.Question.Total, v.Question.Text)
			for i, opt := range v.Question.Options {
				marker := " "
				if opt.Selected {
					marker = "*"
				}
				fmt.Fprintf(bw, " %s%d) %s\n", marker, i+1, opt.Text)
			}
			fmt.Fprintf(bw, "Type 'next' for %s.\n", v.Question.NextLabel)
		}

	case app.PageResults:
		if r := v.Results; r != nil {
			fmt.Fprintf(bw, "Score: %d / %d (%d%%)\n", r.Score, r.Total, r.Percentage)
			fmt.Fprintln(bw, r.Feedback)
			for i, item := range r.Review {
				mark := "x"
				if item.IsCorrect {
					mark = "v"
				}
				fmt.Fprintf(bw, "\n[%s] %d. %s\n", mark, i+1, item.QuestionText)
				fmt.Fprintf(bw, "    your answer: %s\n", item.UserAnswer)
				fmt.Fprintf(bw, "    correct:     %s\n", item.CorrectAnswer)
				fmt.Fprintf(bw, "    %s\n", item.Explanation)
			}
		}

	case app.PageAbout, app.PagePrivacy, app.PageTerms:
		fmt.Fprintln(bw, v.Body)

	case app.PageBlog:
		for i, post := range v.Posts {
			fmt.Fprintf(bw, "  %d) %s\n     %s, %s\n     %s\n", i+1, post.Title, post.Author, post.Date, post.Excerpt)
		}

	case app.PageBlogPost:
		if v.Post != nil {
			fmt.Fprintf(bw, "%s\n%s, %s\n\n%s\n", v.Post.Title, v.Post.Author, v.Post.Date, v.Post.Content)
		}
	}

	fmt.Fprintln(bw, strings.Repeat("-", 40))
	return bw.Flush()
}
