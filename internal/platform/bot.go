package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/botforge/botforge/internal/models"
)

// CreateBotRequest registers a bot and its knowledge base under
// client-minted ids. Empty categories are omitted from the payload.
type CreateBotRequest struct {
	UserID         string   `json:"user_id"`
	BotID          string   `json:"bot_id"`
	KBID           string   `json:"kb_id"`
	CSV            []string `json:"csv,omitempty"`
	JSON           []string `json:"json,omitempty"`
	PDF            []string `json:"pdf,omitempty"`
	TXT            []string `json:"txt,omitempty"`
	WebURL         []string `json:"web_url,omitempty"`
	PromptTemplate string   `json:"prompt_template,omitempty"`
	Temperature    float64  `json:"temperature"`
	BotName        string   `json:"bot_name"`
	Model          string   `json:"model"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	APIKey         string   `json:"api_key,omitempty"`
}

// CreateBotResponse echoes the identifiers the platform stored. The
// client-minted ids stay authoritative; this is informational only.
type CreateBotResponse struct {
	BotID string `json:"bot_id"`
	KBID  string `json:"kb_id"`
}

func (c *Client) CreateBot(ctx context.Context, req CreateBotRequest) (*CreateBotResponse, error) {
	var resp CreateBotResponse
	if err := c.postJSON(ctx, "/api/v1/bot/create", req, &resp); err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &resp, nil
}

// GetBot fetches the read model for one bot. A 404 maps to
// ErrNotFound so callers can render a dedicated not-found view.
func (c *Client) GetBot(ctx context.Context, botID string) (*models.Bot, error) {
	var bot models.Bot
	err := c.getJSON(ctx, "/api/v1/bot/"+botID, nil, &bot)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bot: %w", err)
	}
	if bot.ID == "" {
		bot.ID = botID
	}
	return &bot, nil
}
