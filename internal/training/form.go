package training

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
)

var (
	// ErrTooManyItems enforces the combined files-plus-URLs ceiling.
	ErrTooManyItems = errors.New("you can upload a maximum of 3 items in total")
	// ErrInvalidURL rejects input that is not an http(s) URL.
	ErrInvalidURL = errors.New("please enter a valid URL")
)

var urlPattern = regexp.MustCompile(`^https?://[\w\-]+(\.[\w\-]+)+[/#?]?.*$`)

// Metadata is the user-entered description of the bot being built.
type Metadata struct {
	Name        string
	Description string
	Tags        []string
}

// AIConfig selects the model behind the bot.
type AIConfig struct {
	Provider        string
	Model           string
	UseCustomAPIKey bool
	APIKey          string
	Temperature     float64
}

// Form accumulates everything the user assembles before submitting a
// training run. Item ceilings and extension checks happen at add
// time, so a rejected item never mutates the form.
type Form struct {
	Metadata       Metadata
	AI             AIConfig
	PromptTemplate string

	files map[models.Category][]platform.FileUpload
	urls  []string
}

func NewForm() *Form {
	return &Form{files: make(map[models.Category][]platform.FileUpload)}
}

// AddFile stages a file under the category its extension selects. An
// unrecognized extension is rejected with an error naming the file.
func (f *Form) AddFile(name string, r io.Reader) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	category, ok := models.CategoryForExtension(ext)
	if !ok {
		return fmt.Errorf("invalid file type: %s", name)
	}
	if f.TotalItems() >= models.MaxAttachments {
		return ErrTooManyItems
	}
	f.files[category] = append(f.files[category], platform.FileUpload{
		Category: category,
		Name:     name,
		Reader:   r,
	})
	return nil
}

// AddURL stages a web source. Validation runs before the ceiling
// check so the caller sees the most specific error first.
func (f *Form) AddURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if !urlPattern.MatchString(raw) {
		return ErrInvalidURL
	}
	if f.TotalItems() >= models.MaxAttachments {
		return ErrTooManyItems
	}
	f.urls = append(f.urls, raw)
	return nil
}

func (f *Form) RemoveFile(category models.Category, index int) {
	staged := f.files[category]
	if index < 0 || index >= len(staged) {
		return
	}
	f.files[category] = append(staged[:index], staged[index+1:]...)
}

func (f *Form) RemoveURL(index int) {
	if index < 0 || index >= len(f.urls) {
		return
	}
	f.urls = append(f.urls[:index], f.urls[index+1:]...)
}

// TotalItems counts files across every category plus entered URLs.
func (f *Form) TotalItems() int {
	n := len(f.urls)
	for _, staged := range f.files {
		n += len(staged)
	}
	return n
}

// Files flattens the staged files in fixed category order.
func (f *Form) Files() []platform.FileUpload {
	var out []platform.FileUpload
	for _, category := range models.FileCategories {
		out = append(out, f.files[category]...)
	}
	return out
}

func (f *Form) URLs() []string {
	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}
