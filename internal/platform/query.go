package platform

import (
	"context"
	"fmt"
)

// QueryRequest is one question against a bot's knowledge base.
type QueryRequest struct {
	UserID    string `json:"user_id"`
	BotID     string `json:"bot_id"`
	KBID      string `json:"kb_id"`
	SessionID string `json:"session_id"`
	InputText string `json:"input_text"`
}

// The answer arrives nested under the platform's response envelope.
type queryResponse struct {
	ExternalData struct {
		Answer string `json:"answer"`
	} `json:"externalData"`
}

// Query sends one user message and returns the bot's answer.
func (c *Client) Query(ctx context.Context, req QueryRequest) (string, error) {
	var resp queryResponse
	if err := c.postJSON(ctx, "/api/v1/query", req, &resp); err != nil {
		return "", fmt.Errorf("query bot: %w", err)
	}
	return resp.ExternalData.Answer, nil
}
