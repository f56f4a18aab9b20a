// Package notify delivers the run outcome to a Feishu webhook as an
// interactive card. Delivery is best-effort: failures are logged and
// never alter the run's exit status.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/auto-dns/aliyun-ddns-sync/internal/core"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// New returns a Feishu notifier when a webhook URL is configured and a
// no-op notifier otherwise.
func New(webhookURL string, logger zerolog.Logger) core.Notifier {
	if webhookURL == "" {
		return &NoopNotifier{logger: logger}
	}
	return &FeishuNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		now:        time.Now,
	}
}

// NoopNotifier is used when no webhook is configured.
type NoopNotifier struct {
	logger zerolog.Logger
}

func (n *NoopNotifier) Notify(ctx context.Context, result core.Result) {
	n.logger.Debug().Str("outcome", string(result.Outcome)).Msg("No webhook configured, skipping notification")
}

type FeishuNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// Notify posts one card describing the run outcome.
func (n *FeishuNotifier) Notify(ctx context.Context, result core.Result) {
	payload, err := json.Marshal(buildCard(result, n.now()))
	if err != nil {
		n.logger.Warn().Err(err).Msg("Cannot encode notification payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn().Err(err).Msg("Cannot build notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn().Err(err).Msg("Notification delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		n.logger.Warn().Str("status", resp.Status).Msg("Webhook rejected the notification")
		return
	}

	// Feishu reports delivery errors in the body with a 200 status.
	var ack struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(body, &ack); err == nil && ack.Code != 0 {
		n.logger.Warn().Int("code", ack.Code).Str("msg", ack.Msg).Msg("Webhook reported an error")
		return
	}

	n.logger.Info().Str("outcome", string(result.Outcome)).Msg("Notification delivered")
}

type feishuMessage struct {
	MsgType string     `json:"msg_type"`
	Card    feishuCard `json:"card"`
}

type feishuCard struct {
	Header   cardHeader    `json:"header"`
	Elements []cardElement `json:"elements"`
}

type cardHeader struct {
	Title    cardText `json:"title"`
	Template string   `json:"template"`
}

type cardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type cardElement struct {
	Tag  string   `json:"tag"`
	Text cardText `json:"text"`
}

func headerTemplate(outcome core.Outcome) string {
	switch outcome {
	case core.OutcomeCreated, core.OutcomeUpdated:
		return "green"
	case core.OutcomeFailed:
		return "red"
	default:
		return "blue"
	}
}

func buildCard(result core.Result, ts time.Time) feishuMessage {
	lines := []string{fmt.Sprintf("**Domain:** %s", result.Domain)}
	if result.IP != "" {
		lines = append(lines, fmt.Sprintf("**IP:** %s", result.IP))
	}
	if result.OldIP != "" {
		lines = append(lines, fmt.Sprintf("**Previous IP:** %s", result.OldIP))
	}
	if result.Err != nil {
		lines = append(lines, fmt.Sprintf("**Error:** %v", result.Err))
	}
	lines = append(lines, fmt.Sprintf("**Time:** %s", ts.Format(time.RFC3339)))

	return feishuMessage{
		MsgType: "interactive",
		Card: feishuCard{
			Header: cardHeader{
				Title: cardText{
					Tag:     "plain_text",
					Content: fmt.Sprintf("DDNS %s: %s", result.Outcome, result.Domain),
				},
				Template: headerTemplate(result.Outcome),
			},
			Elements: []cardElement{
				{
					Tag: "div",
					Text: cardText{
						Tag:     "lark_md",
						Content: strings.Join(lines, "\n"),
					},
				},
			},
		},
	}
}
