package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/foxxcyber/compwatch/internal/models"
)

const maxPromptChars = 30000

// GeminiMenuExtractor asks a Gemini model to structure menu page text
type GeminiMenuExtractor struct {
	client          *genai.Client
	model           string
	defaultCurrency string
}

type extractedMenu struct {
	Items []struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Currency    string   `json:"currency"`
		Available   *bool    `json:"available"`
		Confidence  float64  `json:"confidence"`
	} `json:"items"`
}

// NewGeminiMenuExtractor creates the extractor
func NewGeminiMenuExtractor(ctx context.Context, apiKey, model, defaultCurrency string) (*GeminiMenuExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiMenuExtractor{
		client:          client,
		model:           model,
		defaultCurrency: defaultCurrency,
	}, nil
}

// Name identifies the extractor on stored batches
func (g *GeminiMenuExtractor) Name() string {
	return "gemini"
}

// ExtractMenu sends the page text to the model and decodes its JSON answer
func (g *GeminiMenuExtractor) ExtractMenu(ctx context.Context, pageText string) ([]models.MenuItem, error) {
	if strings.TrimSpace(pageText) == "" {
		return nil, ErrNoMenuItems
	}
	pageText = clipBytes(pageText, maxPromptChars)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildMenuPrompt(pageText)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return decodeExtractedMenu(resp.Text(), g.defaultCurrency)
}

func buildMenuPrompt(pageText string) string {
	return `You extract restaurant and shop menus from web page text.

Return ONLY a JSON object of this shape, no markdown:
{
  "items": [
    {
      "name": "string",
      "category": "string, the menu section or empty",
      "description": "string or empty",
      "price": number or null,
      "currency": "ISO 4217 code or empty",
      "available": true, false or null when not stated,
      "confidence": number between 0 and 1
    }
  ]
}

Skip navigation, opening hours, addresses and anything that is not an offered item.
If the text holds no menu, return {"items": []}.

PAGE TEXT:
` + pageText
}

// decodeExtractedMenu converts the model output into menu items
func decodeExtractedMenu(raw, defaultCurrency string) ([]models.MenuItem, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed extractedMenu
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid extractor output: %w", err)
	}

	items := make([]models.MenuItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" || utf8.RuneCountInString(name) > maxItemNameLength {
			continue
		}
		if it.Price != nil && (*it.Price < 0 || *it.Price > maxMenuPrice) {
			it.Price = nil
		}

		currency := currencyCode(it.Currency)
		if currency == "" {
			currency = defaultCurrency
		}

		availability := models.AvailabilityUnknown
		if it.Available != nil {
			if *it.Available {
				availability = models.AvailabilityAvailable
			} else {
				availability = models.AvailabilityUnavailable
			}
		}

		confidence := it.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = htmlConfidence
		}

		items = append(items, models.MenuItem{
			ItemName:     name,
			Category:     clipRunes(strings.TrimSpace(it.Category), maxCategoryLength),
			Description:  strings.TrimSpace(it.Description),
			Price:        it.Price,
			Currency:     currency,
			Availability: availability,
			Confidence:   confidence,
		})
	}

	return items, nil
}
