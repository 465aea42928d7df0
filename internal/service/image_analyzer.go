package service

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// Upload size thresholds in bytes.
const (
	largeImageBytes  = 1_000_000
	mediumImageBytes = 500_000
	smallPNGMinBytes = 100_000
	smallPNGMaxBytes = 800_000
)

// AllowedImageExtensions are the accepted upload types.
var AllowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageAnalysis is what an upload's name and size suggest about its subject.
// The pixels are never read.
type ImageAnalysis struct {
	Filename    string  `json:"filename"`
	Size        int64   `json:"size"`
	Extension   string  `json:"extension"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	ProductType string  `json:"productType"`
	Confidence  float64 `json:"confidence"`
	HighQuality bool    `json:"highQuality"`
}

// AnalyzeImage guesses brand, category and coarse product type from the
// client's filename and the upload size. Category stays empty unless the
// filename or brand names one; the product type is never used as a category.
func AnalyzeImage(filename string, size int64) ImageAnalysis {
	name := strings.ToLower(filepath.Base(filename))
	ext := filepath.Ext(name)
	a := ImageAnalysis{
		Filename:    filename,
		Size:        size,
		Extension:   ext,
		ProductType: matching.TypeGeneral,
		Confidence:  0.5,
		HighQuality: size > largeImageBytes,
	}

	for _, b := range matching.VisualBrands {
		if strings.Contains(name, b) {
			a.Brand = b
			if alias, ok := matching.BrandAliases[b]; ok {
				a.Brand = alias
			}
			break
		}
	}

	switch {
	case size > largeImageBytes:
		a.ProductType, a.Confidence = matching.TypeElectronics, 0.7
	case size > mediumImageBytes:
		a.ProductType, a.Confidence = matching.TypeAccessories, 0.6
	}

	switch ext {
	case ".png":
		a.ProductType = matching.TypeElectronics
		a.Confidence += 0.1
	case ".jpg", ".jpeg":
		a.ProductType = matching.TypeClothing
		a.Confidence += 0.1
	}

categories:
	for _, c := range matching.FilenameCategories {
		for _, kw := range c.Keywords {
			if strings.Contains(name, kw) {
				a.Category = c.Category
				a.ProductType, a.Confidence = matching.TypeElectronics, 0.8
				break categories
			}
		}
	}

	if a.Category == "" {
		switch a.Brand {
		case "apple":
			a.Category, a.Confidence = "Smartphones", 0.9
		case "hp":
			a.Category, a.Confidence = "Laptops", 0.85
		}
	}

	if a.Category == "" && ext == ".png" && size > smallPNGMinBytes && size < smallPNGMaxBytes {
		a.ProductType = matching.TypeAccessories
	}

	a.Confidence = math.Min(a.Confidence, 1)
	return a
}

// Signals returns the scoring inputs of the analysis.
func (a ImageAnalysis) Signals() *matching.ImageSignals {
	return &matching.ImageSignals{
		Filename:    a.Filename,
		ProductType: a.ProductType,
		Confidence:  a.Confidence,
		HighQuality: a.HighQuality,
	}
}

// ValidateImage checks an upload's type and size before it is analyzed.
// contentType may be empty when the client did not send one.
func ValidateImage(filename, contentType string, size, maxBytes int64) error {
	if filename == "" {
		return utils.ErrMissingImage
	}
	if !AllowedImageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return utils.ErrInvalidImage
	}
	if contentType != "" && !isImageMIME(contentType) {
		return utils.ErrInvalidImage
	}
	if size > maxBytes {
		return utils.ErrImageTooLarge
	}
	return nil
}

func isImageMIME(contentType string) bool {
	ct := strings.ToLower(contentType)
	for ext := range AllowedImageExtensions {
		if strings.Contains(ct, strings.TrimPrefix(ext, ".")) {
			return true
		}
	}
	return false
}
