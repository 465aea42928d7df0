package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/config"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// multipart framing allowed on top of the image itself
const multipartOverhead = 64 * 1024

// VisualSearchHandler handles image upload search endpoints.
type VisualSearchHandler struct {
	visualService *service.VisualSearchService
	cfg           config.VisualSearchConfig
}

func NewVisualSearchHandler(visualService *service.VisualSearchService, cfg config.VisualSearchConfig) *VisualSearchHandler {
	return &VisualSearchHandler{visualService: visualService, cfg: cfg}
}

// Search handles POST /api/visual-search/search (multipart field "image").
func (h *VisualSearchHandler) Search(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxBytes+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorFrom(c, utils.ErrImageTooLarge, "")
			return
		}
		utils.ErrorFrom(c, utils.ErrMissingImage, "")
		return
	}

	if err := service.ValidateImage(file.Filename, file.Header.Get("Content-Type"), file.Size, h.cfg.MaxBytes); err != nil {
		utils.ErrorFrom(c, err, "Invalid image")
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", h.cfg.UploadDir).Msg("Failed to create upload directory")
		utils.Error(c, 500, "INTERNAL_ERROR", service.VisualSearchErrorMessage)
		return
	}
	path := filepath.Join(h.cfg.UploadDir, uuid.New().String()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, path); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("Failed to store upload")
		utils.Error(c, 500, "INTERNAL_ERROR", service.VisualSearchErrorMessage)
		return
	}

	limit := queryInt(c, "limit", h.cfg.DefaultLimit)
	if limit <= 0 {
		limit = h.cfg.DefaultLimit
	}
	if limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}

	result := h.visualService.Search(c.Request.Context(), service.Upload{
		Path:     path,
		Filename: file.Filename,
		Size:     file.Size,
	}, limit)
	utils.Success(c, 200, result.Message, result)
}

// GetSuggestions handles GET /api/visual-search/suggestions
func (h *VisualSearchHandler) GetSuggestions(c *gin.Context) {
	utils.Success(c, 200, "Suggestions retrieved", gin.H{"suggestions": h.visualService.Suggestions()})
}

// UpdateFeatures handles POST /api/visual-search/update-features/:productId
func (h *VisualSearchHandler) UpdateFeatures(c *gin.Context) {
	id, ok := paramID(c, "productId", "product")
	if !ok {
		return
	}

	entry, err := h.visualService.UpdateFeatures(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to update product features")
		return
	}
	utils.Success(c, 200, "Product features updated", entry)
}
