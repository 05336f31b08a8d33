package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"objectivebot/pkg/config"
)

// Client talks to the chat platform's REST API. Only DM delivery is needed
// here; everything else the bot does flows through the interaction webhook.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

func NewClient(cfg config.ChatConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		botToken: cfg.BotToken,
		httpClient: &http.Client{
			Timeout: 5 * time.Second, // keep the worker from hanging on a dead API
		},
	}
}

type dmRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// SendDirectMessage posts one DM to a user.
func (c *Client) SendDirectMessage(ctx context.Context, userID, content string) error {
	b, err := json.Marshal(dmRequest{UserID: userID, Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/dm", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		// retryable on the platform side
		return fmt.Errorf("chat api 5xx: %d", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat api error: %d", resp.StatusCode)
	}
	return nil
}
