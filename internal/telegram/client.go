// FilePath: internal/telegram/client.go
package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
)

const apiBase = "https://api.telegram.org"

// Update is one entry from the Bot API getUpdates long poll.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
}

// Sender is the outbound half of the client, what the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Client talks to the Telegram Bot API. Calls run through a circuit
// breaker so a Telegram outage cannot pile up goroutines behind the
// alert monitor.
type Client struct {
	http    *resty.Client
	token   string
	breaker *gobreaker.CircuitBreaker
}

func NewClient(token string) *Client {
	http := resty.New().
		SetBaseURL(apiBase).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "telegram-api",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	return &Client{http: http, token: token, breaker: breaker}
}

// SendMessage delivers a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var out apiResponse[Message]
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"chat_id": fmt.Sprintf("%d", chatID),
				"text":    text,
			}).
			SetResult(&out).
			Post(c.method("sendMessage"))
		if err != nil {
			return nil, err
		}
		if resp.IsError() || !out.OK {
			return nil, fmt.Errorf("telegram sendMessage failed: %s", out.Description)
		}
		return nil, nil
	})
	if err != nil {
		monitoring.TelegramSendTotal.WithLabelValues("error").Inc()
		return errors.NewInternalError("failed to send telegram message", err)
	}

	monitoring.TelegramSendTotal.WithLabelValues("ok").Inc()
	return nil
}

// GetUpdates long-polls for updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var out apiResponse[[]Update]
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"offset":  fmt.Sprintf("%d", offset),
				"timeout": "25",
			}).
			SetResult(&out).
			Get(c.method("getUpdates"))
		if err != nil {
			return nil, err
		}
		if resp.IsError() || !out.OK {
			return nil, fmt.Errorf("telegram getUpdates failed: %s", out.Description)
		}
		return out.Result, nil
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to poll telegram updates", err)
	}
	return res.([]Update), nil
}

func (c *Client) method(name string) string {
	return fmt.Sprintf("/bot%s/%s", c.token, name)
}
