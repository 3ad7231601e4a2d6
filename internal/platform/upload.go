package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/botforge/botforge/internal/models"
)

// FileUpload is one attachment staged for the upload endpoint.
type FileUpload struct {
	Category models.Category
	Name     string
	Reader   io.Reader
}

// UploadedFile is the durable reference the platform returns per
// accepted file: a retrieval URL plus the detected category, never
// the bytes themselves.
type UploadedFile struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	S3Key    string `json:"s3Key"`
	FileType string `json:"fileType"`
}

type UploadResult struct {
	Success bool           `json:"success"`
	Files   []UploadedFile `json:"files"`
	URLs    []string       `json:"urls,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Upload sends the staged files and URLs to the upload endpoint,
// scoped by the (userID, botID, kbID) triple that the later bot
// registration reuses. Files go out as one multipart field per
// category token, URLs under the "urls" field.
func (c *Client) Upload(ctx context.Context, userID, botID, kbID string, files []FileUpload, urls []string) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := w.CreateFormFile(string(f.Category), f.Name)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	for _, u := range urls {
		if err := w.WriteField("urls", u); err != nil {
			return nil, fmt.Errorf("stage url: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	query := url.Values{
		"user_id": {userID},
		"bot_id":  {botID},
		"kb_id":   {kbID},
	}

	var result UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/upload", query, &buf, w.FormDataContentType(), &result); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if !result.Success {
		return nil, &APIError{Status: http.StatusOK, Message: "File upload failed"}
	}
	return &result, nil
}
