//go:build windows

package services

import "errors"

var errOCRUnavailable = errors.New("OCR is not available on Windows - run in Docker container")

// OCRService is a stub on Windows, where tesseract is not linked
type OCRService struct{}

// NewOCRService always fails on Windows
func NewOCRService() (*OCRService, error) {
	return nil, errOCRUnavailable
}

// ImageText always fails on Windows
func (s *OCRService) ImageText(image []byte) (string, error) {
	return "", errOCRUnavailable
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	return nil
}
