//go:build !windows

package services

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// OCRService reads text out of menu images
type OCRService struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewOCRService creates a new OCR service
func NewOCRService() (*OCRService, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Menus are laid out in columns, let tesseract find the blocks itself
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &OCRService{client: client}, nil
}

// ImageText extracts text from an encoded image
func (s *OCRService) ImageText(image []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
