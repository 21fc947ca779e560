package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"codecrafter-quiz/internal/domain"
)

var ErrServiceUnavailable = errors.New("quiz catalog unavailable")

// APIError is returned for any non-2xx response other than a missing quiz.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient reads the quiz catalog from the backend API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// ListQuizzes returns the catalog in server order. A successful response whose
// body is not a JSON array (an object, an HTML error page) is an empty catalog.
func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	body, err := c.get(ctx, "/api/quizzes")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("[")) || !json.Valid(trimmed) {
		return []domain.QuizSummary{}, nil
	}

	var quizzes []domain.QuizSummary
	if err := json.Unmarshal(trimmed, &quizzes); err != nil {
		return nil, fmt.Errorf("decode quiz list: %w", err)
	}
	if quizzes == nil {
		quizzes = []domain.QuizSummary{}
	}
	return quizzes, nil
}

// GetQuiz returns the full quiz. A 404 maps to domain.ErrQuizNotFound.
func (c *HTTPClient) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return domain.Quiz{}, errors.New("quiz id is required")
	}

	var quiz domain.Quiz
	if err := c.getJSON(ctx, "/api/quizzes/"+url.PathEscape(quizID), &quiz); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return domain.Quiz{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
		}
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// get returns the body of a 2xx response.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return nil, &apiErr
	}

	return io.ReadAll(response.Body)
}
