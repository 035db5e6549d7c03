package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"crowdfund-go/internal/format"
	"crowdfund-go/internal/model"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	messageLimit   = 4096
)

type Sender struct {
	token    string
	chat     string
	threadID *int
	calendar string
	baseURL  string
	log      *zap.Logger

	client       *http.Client
	queue        chan string
	minInterval  time.Duration
	lastSentTime time.Time

	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*Sender)

func WithCalendar(calendar string) Option {
	return func(s *Sender) {
		s.calendar = calendar
	}
}

// WithBaseURL points the sender at another Bot API host.
func WithBaseURL(url string) Option {
	return func(s *Sender) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

func WithMinInterval(d time.Duration) Option {
	return func(s *Sender) {
		s.minInterval = d
	}
}

func NewSender(token, chat string, threadID *int, log *zap.Logger, options ...Option) *Sender {
	s := &Sender{
		token:       token,
		chat:        chat,
		threadID:    threadID,
		calendar:    format.Gregorian,
		baseURL:     defaultAPIBase,
		log:         log,
		client:      &http.Client{Timeout: 15 * time.Second},
		queue:       make(chan string, 100),
		minInterval: 1200 * time.Millisecond,
		done:        make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}

	go s.worker()
	return s
}

// SendAlert queues the alert. When the queue is full the alert is dropped so
// request handlers never block on Telegram.
func (s *Sender) SendAlert(alert model.Alert) {
	for _, part := range splitMessage(formatMessage(alert, s.calendar), messageLimit) {
		select {
		case s.queue <- part:
		default:
			s.log.Warn("telegram queue full, dropping alert", zap.String("project", alert.Project.ID))
			return
		}
	}
}

// Close stops accepting alerts and waits for queued ones to be sent.
func (s *Sender) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
}

func (s *Sender) worker() {
	defer close(s.done)
	for msg := range s.queue {
		s.sendWithRateLimit(msg)
	}
}

func (s *Sender) sendWithRateLimit(text string) {
	wait := time.Until(s.lastSentTime.Add(s.minInterval))
	if wait > 0 {
		time.Sleep(wait)
	}

	retryAfter, err := s.postMessage(text)
	if err != nil {
		if retryAfter > 0 {
			s.log.Warn("telegram rate limit hit", zap.Duration("retry_after", retryAfter))
			time.Sleep(retryAfter)
			if _, retryErr := s.postMessage(text); retryErr != nil {
				s.log.Error("telegram retry failed", zap.Error(retryErr))
				return
			}
			s.lastSentTime = time.Now()
			s.log.Debug("telegram alert sent after retry")
			return
		}

		s.log.Error("telegram send failed", zap.Error(err))
		return
	}

	s.lastSentTime = time.Now()
	s.log.Debug("telegram alert sent")
}

func (s *Sender) postMessage(text string) (time.Duration, error) {
	payload := map[string]any{
		"chat_id":    s.chat,
		"text":       text,
		"parse_mode": "HTML",
	}
	if s.threadID != nil {
		payload["message_thread_id"] = *s.threadID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var parsed telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode == http.StatusTooManyRequests && parsed.Parameters.RetryAfter > 0 {
		return time.Duration(parsed.Parameters.RetryAfter) * time.Second, fmt.Errorf("rate limited")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("telegram error: %d %s", resp.StatusCode, parsed.Description)
	}

	return 0, nil
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func formatMessage(alert model.Alert, calendar string) string {
	p := alert.Project
	var b strings.Builder

	switch alert.Kind {
	case model.AlertDonation:
		fmt.Fprintf(&b, "💸 New donation to <b>%s</b>\n", html.EscapeString(p.Title))
		fmt.Fprintf(&b, "👤 %s gave %s\n", html.EscapeString(alert.ActorName), format.Amount(alert.Amount))
		fmt.Fprintf(&b, "📊 Collected: %s of %s (%d backers)", format.Amount(p.Collected), format.Amount(p.PledgeGoal), p.Donors())
	default:
		fmt.Fprintf(&b, "📢 New project: <b>%s</b>\n", html.EscapeString(p.Title))
		fmt.Fprintf(&b, "🗂 Category: %s\n", html.EscapeString(p.Category))
		fmt.Fprintf(&b, "👤 Creator: %s\n", html.EscapeString(alert.ActorName))
		fmt.Fprintf(&b, "🎯 Goal: %s\n", format.Amount(p.PledgeGoal))
		if created := format.Date(p.CreatedAt, calendar); created != "" {
			fmt.Fprintf(&b, "📅 Created: %s\n", created)
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "📝 %s", html.EscapeString(p.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func splitMessage(message string, limit int) []string {
	runes := []rune(message)
	if len(runes) <= limit {
		return []string{message}
	}

	parts := []string{}
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
