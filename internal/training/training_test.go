package training

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/platform"
)

// fakeAPI records calls and plays back scripted responses.
type fakeAPI struct {
	uploadCalls []uploadCall
	uploadResp  *platform.UploadResult
	uploadErr   error

	createCalls []platform.CreateBotRequest
	createResp  *platform.CreateBotResponse
	createErr   error
}

type uploadCall struct {
	userID, botID, kbID string
	files               []platform.FileUpload
	urls                []string
}

func (a *fakeAPI) Upload(_ context.Context, userID, botID, kbID string, files []platform.FileUpload, urls []string) (*platform.UploadResult, error) {
	a.uploadCalls = append(a.uploadCalls, uploadCall{userID, botID, kbID, files, urls})
	if a.uploadErr != nil {
		return nil, a.uploadErr
	}
	return a.uploadResp, nil
}

func (a *fakeAPI) CreateBot(_ context.Context, req platform.CreateBotRequest) (*platform.CreateBotResponse, error) {
	a.createCalls = append(a.createCalls, req)
	if a.createErr != nil {
		return nil, a.createErr
	}
	return a.createResp, nil
}

func validForm(t *testing.T) *Form {
	t.Helper()
	form := NewForm()
	form.Metadata = Metadata{Name: "Support Bot", Description: "answers tickets", Tags: []string{"support"}}
	form.AI = AIConfig{Provider: "gemini", Model: "gemini-pro", Temperature: 0.7}
	require.NoError(t, form.AddFile("faq.pdf", strings.NewReader("pdf bytes")))
	require.NoError(t, form.AddURL("https://docs.example.com"))
	return form
}

func TestStartRejectsMissingNameBeforeAnyCall(t *testing.T) {
	api := &fakeAPI{}
	form := validForm(t)
	form.Metadata.Name = "   "

	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, nil)

	assert.Equal(t, StepFailed, job.Step())
	assert.Equal(t, StepIdle, job.FailedStep())
	assert.Equal(t, "Bot name is required", job.Err())
	assert.Empty(t, api.uploadCalls)
	assert.Empty(t, api.createCalls)
}

func TestStartRejectsMissingCustomKey(t *testing.T) {
	api := &fakeAPI{}
	form := validForm(t)
	form.AI.UseCustomAPIKey = true
	form.AI.APIKey = ""

	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, nil)

	assert.Equal(t, StepFailed, job.Step())
	assert.Equal(t, "API key is required when using custom keys", job.Err())
	assert.Empty(t, api.uploadCalls)
}

func TestStartRejectsOverfullForm(t *testing.T) {
	api := &fakeAPI{}
	form := validForm(t)
	// Add-time checks make a fourth item unreachable through the form
	// API; force one to prove the submit-time guard holds on its own.
	form.urls = append(form.urls, "https://a.example.com", "https://b.example.com", "https://c.example.com")
	require.Greater(t, form.TotalItems(), 3)

	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, nil)

	assert.Equal(t, StepFailed, job.Step())
	assert.Equal(t, "You can upload a maximum of 3 items in total.", job.Err())
	assert.Empty(t, api.uploadCalls)
}

func TestStartSuccessUsesClientMintedIDs(t *testing.T) {
	api := &fakeAPI{
		uploadResp: &platform.UploadResult{
			Success: true,
			Files: []platform.UploadedFile{
				{FileName: "faq.pdf", FileURL: "https://cdn.example.com/faq.pdf", FileType: "pdf"},
			},
			// The platform echoes entered URLs back; registration must
			// not depend on that echo.
			URLs: []string{"https://echoed.example.com"},
		},
		createResp: &platform.CreateBotResponse{BotID: "server-bot", KBID: "server-kb"},
	}
	form := validForm(t)

	var steps []Step
	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, func(s Step) {
		steps = append(steps, s)
	})

	require.Equal(t, StepSucceeded, job.Step())
	assert.Equal(t, []Step{StepUploading, StepProcessing, StepCreatingBot, StepSucceeded}, steps)

	require.Len(t, api.uploadCalls, 1)
	up := api.uploadCalls[0]
	assert.Equal(t, "user-1", up.userID)
	assert.Equal(t, job.BotID, up.botID)
	assert.Equal(t, job.KBID, up.kbID)
	assert.Equal(t, []string{"https://docs.example.com"}, up.urls)

	require.Len(t, api.createCalls, 1)
	req := api.createCalls[0]
	assert.Equal(t, job.BotID, req.BotID)
	assert.Equal(t, job.KBID, req.KBID)
	assert.Equal(t, []string{"https://cdn.example.com/faq.pdf"}, req.PDF)
	assert.Empty(t, req.CSV)
	assert.Equal(t, []string{"https://docs.example.com"}, req.WebURL, "web sources come from the form, not the upload echo")
	assert.Empty(t, req.APIKey)
	assert.Equal(t, "Support Bot", req.BotName)

	// The chat link is built from the ids minted here, never the
	// server-echoed ones.
	assert.NotEqual(t, "server-bot", job.BotID)
	assert.Equal(t, "/chat/"+job.BotID+"/"+job.KBID, job.ChatPath())
}

func TestStartReportsServerRejectionVerbatim(t *testing.T) {
	api := &fakeAPI{
		uploadErr: &platform.APIError{Status: 400, Message: "Invalid file type: x.exe"},
	}
	form := validForm(t)

	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, nil)

	assert.Equal(t, StepFailed, job.Step())
	assert.Equal(t, StepUploading, job.FailedStep())
	assert.Equal(t, "Invalid file type: x.exe", job.Err())
	assert.Empty(t, api.createCalls, "registration must not run after a failed upload")
}

func TestStartFallsBackToGenericMessages(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		api := &fakeAPI{uploadErr: errors.New("dial tcp: connection refused")}
		job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", validForm(t), nil)

		assert.Equal(t, StepFailed, job.Step())
		assert.Equal(t, StepUploading, job.FailedStep())
		assert.Equal(t, "File upload failed", job.Err())
	})

	t.Run("registration", func(t *testing.T) {
		api := &fakeAPI{
			uploadResp: &platform.UploadResult{Success: true},
			createErr:  errors.New("dial tcp: connection refused"),
		}
		job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", validForm(t), nil)

		assert.Equal(t, StepFailed, job.Step())
		assert.Equal(t, StepCreatingBot, job.FailedStep())
		assert.Equal(t, "Bot registration failed", job.Err())
	})
}

func TestCustomKeyIsForwardedWhenEnabled(t *testing.T) {
	api := &fakeAPI{
		uploadResp: &platform.UploadResult{Success: true},
		createResp: &platform.CreateBotResponse{},
	}
	form := validForm(t)
	form.AI.UseCustomAPIKey = true
	form.AI.APIKey = "sk-custom"

	job := NewOrchestrator(api, zap.NewNop()).Start(context.Background(), "user-1", form, nil)

	require.Equal(t, StepSucceeded, job.Step())
	require.Len(t, api.createCalls, 1)
	assert.Equal(t, "sk-custom", api.createCalls[0].APIKey)
}
