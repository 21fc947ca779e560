package app

import (
	"fmt"
	"regexp"
	"strings"
)

// BlogPost is a static article shown on the blog pages.
type BlogPost struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

var blogPosts = []BlogPost{
	{
		ID:      "understanding-async-js",
		Title:   "Understanding Asynchronous JavaScript: Callbacks, Promises, and Async/Await",
		Author:  "CodeCrafter Team",
		Date:    "July 20, 2025",
		Excerpt: "Asynchronous programming is a fundamental concept in JavaScript that often confuses beginners. Learn about callbacks, promises, and the modern async/await syntax to write non-blocking code.",
		Content: "Long-running work such as network requests and timers must not block the main thread. " +
			"Callbacks were the first answer and nest badly. Promises flatten the chain and centralise error handling. " +
			"async/await keeps the promise semantics while reading like sequential code; wrap awaits in try/catch.",
	},
	{
		ID:      "python-data-structures",
		Title:   "The Basics of Python Data Structures: Lists, Tuples, Sets, and Dictionaries",
		Author:  "CodeCrafter Team",
		Date:    "July 15, 2025",
		Excerpt: "Python offers powerful built-in data structures. Learn about Lists, Tuples, Sets, and Dictionaries and when to use each for efficient data management.",
		Content: "Lists are ordered and mutable. Tuples are ordered and immutable, which makes them usable as keys. " +
			"Sets hold unique items with fast membership tests. Dictionaries map keys to values and preserve insertion order.",
	},
	{
		ID:      "effective-debugging-tips",
		Title:   "Effective Debugging Tips for Programmers",
		Author:  "CodeCrafter Team",
		Date:    "July 10, 2025",
		Excerpt: "Bugs are an inevitable part of coding. Learn essential debugging strategies to quickly identify and fix issues in your code, saving you time and frustration.",
		Content: "Read the error message and stack trace first. Add targeted logging, learn your debugger, " +
			"isolate the bug in a minimal reproduction, explain the code out loud, check your assumptions and take breaks.",
	},
}

// BlogPosts returns the static blog articles in display order.
func BlogPosts() []BlogPost {
	return append([]BlogPost(nil), blogPosts...)
}

// FindPost looks a blog post up by id.
func FindPost(id string) (BlogPost, bool) {
	for _, p := range blogPosts {
		if p.ID == id {
			return p, true
		}
	}
	return BlogPost{}, false
}

// StaticPageText holds the body copy of the informational pages.
var StaticPageText = map[Page]string{
	PageAbout: "CodeCrafter Quizzes is a free platform for testing programming knowledge. " +
		"Pick a topic, take a timed multiple-choice quiz and review every answer with an explanation.",
	PagePrivacy: "We record an anonymous visitor identifier, a visit count and first/last visit timestamps. " +
		"Page views and quiz start/completion events are sent to an analytics service. No personal data is collected.",
	PageTerms: "Quiz content is provided for educational purposes without warranty. " +
		"Copying or redistributing questions and explanations requires written permission.",
}

func topicDescription(topic string) string {
	return fmt.Sprintf("Explore the core concepts and practical applications of %s! Our quizzes cover "+
		"syntax, data structures, algorithms, problem-solving, and best practices within this programming domain. "+
		"Prepare to challenge your coding understanding and reinforce your learning with our "+
		"carefully curated questions. This section is designed to deepen your proficiency "+
		"and ignite your passion for %s programming.", topic, topic)
}

func quizIntro(topic, name string, duration, questions int) string {
	return fmt.Sprintf("This quiz will challenge your knowledge on %s with specific questions related to %s. "+
		"Get ready to test your understanding of key programming concepts and important details. "+
		"You have %d minutes to complete %d questions. Good luck with your coding challenge!",
		topic, strings.ToLower(name), duration, questions)
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug turns a topic into its page path segment.
func Slug(topic string) string {
	return strings.ToLower(whitespace.ReplaceAllString(topic, "-"))
}

// Location returns the analytics page path and title for the session's page.
func Location(s Session) (path, title string) {
	switch s.Page {
	case PageHome:
		return "/", "Home Page"
	case PageTopics:
		return "/topics", "Choose Programming Quiz Topic"
	case PageInstructions:
		if s.SelectedTopic == "" {
			return "/instructions/unknown", "Instructions - Unknown Programming Topic"
		}
		return "/instructions/" + Slug(s.SelectedTopic), "Instructions - " + s.SelectedTopic
	case PageQuiz:
		if s.SelectedQuiz == nil {
			return "/quiz/unknown", "Programming Quiz - Unknown Quiz"
		}
		return "/quiz/" + s.SelectedQuiz.ID, "Programming Quiz - " + s.SelectedQuiz.Name
	case PageResults:
		if s.SelectedQuiz == nil {
			return "/results/unknown", "Results - Unknown Quiz"
		}
		return "/results/" + s.SelectedQuiz.ID, "Results - " + s.SelectedQuiz.Name
	case PageAbout:
		return "/about", "About This Application"
	case PagePrivacy:
		return "/privacy-policy", "Privacy Policy"
	case PageTerms:
		return "/terms-of-service", "Terms of Service"
	case PageBlog:
		return "/blog", "Programming Blog"
	case PageBlogPost:
		if post, ok := FindPost(s.SelectedPost); ok {
			return "/blog/" + post.ID, "Blog Post - " + post.Title
		}
		return "/blog/unknown-post", "Blog Post - Unknown Blog Post"
	default:
		return "/unknown", "Unknown Page"
	}
}
