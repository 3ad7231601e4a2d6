package platform

import (
	"context"
	"fmt"

	"github.com/botforge/botforge/internal/models"
)

// ValidateToken asks the auth backend whether the configured
// credential is still good.
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.getJSON(ctx, "/api/v1/auth/validate-token", nil, &resp); err != nil {
		return false, fmt.Errorf("validate token: %w", err)
	}
	return resp.Valid, nil
}

// DecodeToken resolves the caller's identity once so it can be
// threaded explicitly to everything below.
func (c *Client) DecodeToken(ctx context.Context) (*models.AuthSession, error) {
	var auth models.AuthSession
	if err := c.getJSON(ctx, "/api/v1/auth/decode", nil, &auth); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &auth, nil
}
