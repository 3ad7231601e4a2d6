package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/training"
	"github.com/botforge/botforge/pkg/config"
)

func runTrain(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	name := fs.String("name", "", "bot name (required)")
	description := fs.String("description", "", "bot description")
	tags := fs.String("tags", "", "comma-separated tags")
	provider := fs.String("provider", "gemini", "AI provider")
	model := fs.String("model", "gemini-pro", "model name")
	temperature := fs.Float64("temperature", 0.7, "model temperature")
	promptTemplate := fs.String("prompt-template", "", "prompt template, {{variables}} allowed")
	apiKey := fs.String("api-key", "", "custom model API key")
	var files, urls multiFlag
	fs.Var(&files, "file", "knowledge file to upload (repeatable, max 3 items total)")
	fs.Var(&urls, "url", "web source to ingest (repeatable, max 3 items total)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := newPlatformClient(cfg, logger)
	ctx := context.Background()

	auth, err := client.DecodeToken(ctx)
	if err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}

	form := training.NewForm()
	form.Metadata = training.Metadata{
		Name:        *name,
		Description: *description,
		Tags:        splitTags(*tags),
	}
	form.AI = training.AIConfig{
		Provider:        *provider,
		Model:           *model,
		UseCustomAPIKey: *apiKey != "",
		APIKey:          *apiKey,
		Temperature:     *temperature,
	}
	form.PromptTemplate = *promptTemplate

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		opened = append(opened, f)
		if err := form.AddFile(filepath.Base(path), f); err != nil {
			return err
		}
	}
	for _, raw := range urls {
		if err := form.AddURL(raw); err != nil {
			return fmt.Errorf("%s: %w", raw, err)
		}
	}

	orchestrator := training.NewOrchestrator(client, logger)
	job := orchestrator.Start(ctx, auth.UserID, form, func(step training.Step) {
		if label := stepLabel(step); label != "" {
			fmt.Println(label + "...")
		}
	})

	if job.Step() == training.StepFailed {
		return errors.New("training failed: " + job.Err())
	}

	fmt.Printf("Bot %q successfully trained!\n", form.Metadata.Name)
	fmt.Println("Bot ID:", job.BotID)
	fmt.Println("KB ID: ", job.KBID)
	fmt.Println("Chat:  ", job.ChatPath())
	return nil
}

func splitTags(raw string) []string {
	var out []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func stepLabel(step training.Step) string {
	switch step {
	case training.StepUploading:
		return "Uploading files"
	case training.StepProcessing:
		return "Processing files"
	case training.StepCreatingBot:
		return "Creating Bot"
	}
	return ""
}
