// Package training drives bot creation: validate, upload knowledge
// sources, register the bot, land in a terminal state.
package training

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
)

// Fixed validation messages, reported before any network call.
const (
	msgNameRequired   = "Bot name is required"
	msgAPIKeyRequired = "API key is required when using custom keys"
	msgTooManyItems   = "You can upload a maximum of 3 items in total."

	msgUploadFailed   = "File upload failed"
	msgRegisterFailed = "Bot registration failed"
)

// API is the slice of the platform client a training run needs.
type API interface {
	Upload(ctx context.Context, userID, botID, kbID string, files []platform.FileUpload, urls []string) (*platform.UploadResult, error)
	CreateBot(ctx context.Context, req platform.CreateBotRequest) (*platform.CreateBotResponse, error)
}

type Orchestrator struct {
	api    API
	logger *zap.Logger
}

func NewOrchestrator(api API, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{api: api, logger: logger}
}

// Start runs one training job to a terminal state and returns it.
// Steps are strictly sequential; there is no cancellation mid-job and
// no retry. A later attempt constructs a fresh job and re-runs from
// Uploading even when a registration failure left files stored; this
// is an accepted inefficiency, since registration keyed by the
// generated ids is overwrite-safe.
//
// onStep, when non-nil, observes each transition; it is the only
// progress signal exposed.
func (o *Orchestrator) Start(ctx context.Context, userID string, form *Form, onStep func(Step)) *Job {
	job := newJob(onStep)

	// Fail fast, with zero side effects, on anything a network call
	// cannot fix.
	if msg, ok := validate(form); !ok {
		job.fail(StepIdle, msg)
		return job
	}

	o.logger.Info("Starting training job",
		zap.String("bot_id", job.BotID),
		zap.String("kb_id", job.KBID),
		zap.String("bot_name", form.Metadata.Name))

	job.to(StepUploading)
	uploaded, err := o.api.Upload(ctx, userID, job.BotID, job.KBID, form.Files(), form.URLs())
	if err != nil {
		o.logger.Error("Upload failed", zap.Error(err), zap.String("bot_id", job.BotID))
		job.fail(StepUploading, failureMessage(err, msgUploadFailed))
		return job
	}

	job.to(StepProcessing)
	refs := partition(uploaded.Files)

	job.to(StepCreatingBot)
	req := platform.CreateBotRequest{
		UserID:         userID,
		BotID:          job.BotID,
		KBID:           job.KBID,
		CSV:            refs[models.CategoryCSV],
		JSON:           refs[models.CategoryJSON],
		PDF:            refs[models.CategoryPDF],
		TXT:            refs[models.CategoryTXT],
		PromptTemplate: form.PromptTemplate,
		Temperature:    form.AI.Temperature,
		BotName:        form.Metadata.Name,
		Model:          form.AI.Model,
		Description:    form.Metadata.Description,
		Tags:           form.Metadata.Tags,
	}
	if urls := form.URLs(); len(urls) > 0 {
		req.WebURL = urls
	}
	if form.AI.UseCustomAPIKey {
		req.APIKey = form.AI.APIKey
	}

	if _, err := o.api.CreateBot(ctx, req); err != nil {
		o.logger.Error("Bot registration failed", zap.Error(err), zap.String("bot_id", job.BotID))
		job.fail(StepCreatingBot, failureMessage(err, msgRegisterFailed))
		return job
	}

	job.to(StepSucceeded)
	o.logger.Info("Training job succeeded",
		zap.String("bot_id", job.BotID),
		zap.String("kb_id", job.KBID))
	return job
}

func validate(form *Form) (string, bool) {
	if strings.TrimSpace(form.Metadata.Name) == "" {
		return msgNameRequired, false
	}
	if form.AI.UseCustomAPIKey && strings.TrimSpace(form.AI.APIKey) == "" {
		return msgAPIKeyRequired, false
	}
	if form.TotalItems() > models.MaxAttachments {
		return msgTooManyItems, false
	}
	return "", true
}

// partition groups returned file references by the category the
// platform detected, the shape registration expects.
func partition(files []platform.UploadedFile) map[models.Category][]string {
	refs := make(map[models.Category][]string)
	for _, f := range files {
		category, ok := models.CategoryForExtension(f.FileType)
		if !ok {
			continue
		}
		refs[category] = append(refs[category], f.FileURL)
	}
	return refs
}

// failureMessage prefers the platform's own error text so the user
// sees exactly what the server rejected.
func failureMessage(err error, fallback string) string {
	if msg := platform.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
