package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

const maxEventNameLen = 40

// GA4Sink posts hits to the GA4 Measurement Protocol.
type GA4Sink struct {
	endpoint      string
	measurementID string
	apiSecret     string
	httpClient    *http.Client
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func NewGA4Sink(endpoint, measurementID, apiSecret string, httpClient *http.Client) *GA4Sink {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GA4Sink{
		endpoint:      strings.TrimSpace(endpoint),
		measurementID: measurementID,
		apiSecret:     apiSecret,
		httpClient:    httpClient,
	}
}

func (s *GA4Sink) Name() string { return "ga4" }

func (s *GA4Sink) Send(ctx context.Context, hit Hit) error {
	event, err := ga4EventFor(hit)
	if err != nil {
		return err
	}
	body, err := json.Marshal(ga4Payload{ClientID: hit.ClientID, Events: []ga4Event{event}})
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("measurement_id", s.measurementID)
	query.Set("api_secret", s.apiSecret)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("ga4 request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ga4 request failed with status %d", response.StatusCode)
	}
	return nil
}

func ga4EventFor(hit Hit) (ga4Event, error) {
	switch hit.Kind {
	case KindPageView:
		return ga4Event{
			Name: "page_view",
			Params: map[string]any{
				"page_path":  hit.Path,
				"page_title": hit.Title,
			},
		}, nil
	case KindEvent:
		if hit.Event == nil {
			return ga4Event{}, fmt.Errorf("event hit without event")
		}
		return ga4Event{
			Name: EventName(hit.Event.Action),
			Params: map[string]any{
				"event_category": hit.Event.Category,
				"event_label":    hit.Event.Label,
				"value":          hit.Event.Value,
			},
		}, nil
	default:
		return ga4Event{}, fmt.Errorf("unknown hit kind %q", hit.Kind)
	}
}

// EventName turns an action such as "Quiz Started" into "quiz_started".
func EventName(action string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range action {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	name := b.String()
	if name == "" {
		name = "event"
	}
	if len(name) > maxEventNameLen {
		name = strings.TrimRight(name[:maxEventNameLen], "_")
	}
	return name
}
