package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends signal alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each signal to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends each signal as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(signals []model.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	failures := 0
	for i, sig := range signals {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}

		if err := s.sendMessage(sig); err != nil {
			s.logger.Error("slack notification failed", "company", sig.CompanyName, "error", err)
			failures++
		}
	}

	sent := len(signals) - failures
	if failures == len(signals) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(sig model.Signal) error {
	body, err := json.Marshal(buildPayload(sig))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "company", sig.CompanyName, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "company", sig.CompanyName)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a dummy signal to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	titles := []string{"Account Executive", "Solutions Engineer"}
	test := model.Signal{
		CompanyName: "LeadRadar Test",
		SignalType:  model.SignalJobPosting,
		Details:     "2 new job postings in the last 30 days",
		Strength:    30,
		Metadata: model.SignalMetadata{
			JobCount:     len(titles),
			RecentTitles: titles,
		},
		CreatedAt: time.Now().UTC(),
	}
	return n.Notify([]model.Signal{test})
}

func typeLabel(t model.SignalType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func buildPayload(sig model.Signal) slackPayload {
	detected := "Just detected"
	if !sig.CreatedAt.IsZero() {
		detected = sig.CreatedAt.Format(time.RFC1123)
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📈 " + sig.CompanyName + ": " + typeLabel(sig.SignalType)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Strength:*\n%d/100", sig.Strength)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Job postings:*\n%d", sig.Metadata.JobCount)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Details:*\n" + sig.Details},
				{Type: "mrkdwn", Text: "*Detected:*\n" + detected},
			},
		},
	}

	if len(sig.Metadata.RecentTitles) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Recent roles:*\n• " + strings.Join(sig.Metadata.RecentTitles, "\n• ")},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
