package training

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botforge/botforge/internal/models"
)

func TestAddFileSelectsCategoryByExtension(t *testing.T) {
	form := NewForm()

	require.NoError(t, form.AddFile("notes.TXT", strings.NewReader("a")))
	require.NoError(t, form.AddFile("data.csv", strings.NewReader("b")))
	require.NoError(t, form.AddFile("report.pdf", strings.NewReader("c")))

	files := form.Files()
	require.Len(t, files, 3)
	// Flattened in fixed category order, not insertion order.
	assert.Equal(t, models.CategoryCSV, files[0].Category)
	assert.Equal(t, models.CategoryPDF, files[1].Category)
	assert.Equal(t, models.CategoryTXT, files[2].Category)
	assert.Equal(t, "notes.TXT", files[2].Name)
}

func TestAddFileRejectsUnknownExtension(t *testing.T) {
	form := NewForm()

	err := form.AddFile("malware.exe", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "invalid file type: malware.exe", err.Error())
	assert.Zero(t, form.TotalItems())
}

func TestAddURLValidation(t *testing.T) {
	form := NewForm()

	for _, raw := range []string{"https://example.com", "http://docs.example.com/guide?q=1", "  https://example.com/page#intro  "} {
		assert.NoError(t, form.AddURL(raw), raw)
	}
	for _, raw := range []string{"", "example.com", "ftp://example.com", "https://nodots"} {
		assert.ErrorIs(t, form.AddURL(raw), ErrInvalidURL, raw)
	}

	assert.Equal(t, []string{
		"https://example.com",
		"http://docs.example.com/guide?q=1",
		"https://example.com/page#intro",
	}, form.URLs())
}

func TestCeilingRejectsFourthItemWithoutMutation(t *testing.T) {
	form := NewForm()
	require.NoError(t, form.AddFile("a.txt", strings.NewReader("a")))
	require.NoError(t, form.AddFile("b.csv", strings.NewReader("b")))
	require.NoError(t, form.AddURL("https://example.com"))
	require.Equal(t, 3, form.TotalItems())

	assert.ErrorIs(t, form.AddFile("c.pdf", strings.NewReader("c")), ErrTooManyItems)
	assert.ErrorIs(t, form.AddURL("https://example.org"), ErrTooManyItems)

	assert.Equal(t, 3, form.TotalItems())
	assert.Equal(t, []string{"https://example.com"}, form.URLs())
}

func TestRemoveFreesRoom(t *testing.T) {
	form := NewForm()
	require.NoError(t, form.AddURL("https://one.example.com"))
	require.NoError(t, form.AddURL("https://two.example.com"))
	require.NoError(t, form.AddFile("a.json", strings.NewReader("{}")))

	form.RemoveURL(0)
	assert.Equal(t, []string{"https://two.example.com"}, form.URLs())
	require.NoError(t, form.AddFile("b.json", strings.NewReader("{}")))

	form.RemoveFile(models.CategoryJSON, 0)
	files := form.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "b.json", files[0].Name)

	// Out-of-range removals are ignored.
	form.RemoveURL(5)
	form.RemoveFile(models.CategoryPDF, 0)
	assert.Equal(t, 2, form.TotalItems())
}
