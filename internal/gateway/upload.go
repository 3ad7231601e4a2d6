package gateway

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
)

// contentTypes maps each accepted category to the MIME type stored
// alongside the object.
var contentTypes = map[models.Category]string{
	models.CategoryCSV:  "text/csv",
	models.CategoryJSON: "application/json",
	models.CategoryPDF:  "application/pdf",
	models.CategoryTXT:  "text/plain",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

const maxUploadMemory = 32 << 20

// handleUpload accepts multipart files under the fixed category
// fields, stores each to the object store under a key scoped by
// (user, bot, kb), and returns presigned retrieval references with
// the detected category. Rejections are 400s; a rejected batch
// stores nothing the caller will ever see referenced.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	botID := r.URL.Query().Get("bot_id")
	kbID := r.URL.Query().Get("kb_id")
	if userID == "" || botID == "" || kbID == "" {
		Error(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		Error(w, http.StatusBadRequest, "No valid files provided")
		return
	}

	var headers []*multipart.FileHeader
	for _, category := range models.FileCategories {
		headers = append(headers, r.MultipartForm.File[string(category)]...)
	}

	if len(headers) == 0 {
		Error(w, http.StatusBadRequest, "No valid files provided")
		return
	}
	if len(headers) > models.MaxAttachments {
		Error(w, http.StatusBadRequest, "You can upload a maximum of 3 files")
		return
	}

	// Validate the whole batch before storing anything.
	for _, header := range headers {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
		if _, ok := models.CategoryForExtension(ext); !ok {
			Error(w, http.StatusBadRequest, "Invalid file type: "+header.Filename)
			return
		}
	}

	var uploaded []platform.UploadedFile
	for _, header := range headers {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
		category, _ := models.CategoryForExtension(ext)

		src, err := header.Open()
		if err != nil {
			h.logger.Error("Failed to read upload", zap.Error(err), zap.String("file", header.Filename))
			Error(w, http.StatusInternalServerError, "Failed to read uploaded file")
			return
		}

		sanitized := unsafeNameChars.ReplaceAllString(header.Filename, "_")
		key := fmt.Sprintf("%s/%s/%s/%d-%s", userID, botID, kbID, time.Now().UnixMilli(), sanitized)

		err = h.objects.Put(r.Context(), key, contentTypes[category], src)
		src.Close()
		if err != nil {
			h.logger.Error("Failed to store upload", zap.Error(err), zap.String("key", key))
			Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		fileURL, err := h.objects.PresignGet(r.Context(), key, h.presignExpiry)
		if err != nil {
			h.logger.Error("Failed to presign upload", zap.Error(err), zap.String("key", key))
			Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		uploaded = append(uploaded, platform.UploadedFile{
			FileName: sanitized,
			FileURL:  fileURL,
			S3Key:    key,
			FileType: ext,
		})
	}

	JSON(w, http.StatusOK, platform.UploadResult{
		Success: true,
		Files:   uploaded,
		URLs:    r.MultipartForm.Value["urls"],
		Message: fmt.Sprintf("Successfully uploaded %d file(s)", len(uploaded)),
	})
}
