package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/models"
)

func TestDecodeExtractedMenu(t *testing.T) {
	raw := "```json\n" + `{"items": [
		{"name": " Flat White ", "category": "Coffee", "price": 4.2, "currency": "eur", "available": true, "confidence": 0.95},
		{"name": "Seasonal Tart", "price": null, "available": false},
		{"name": "", "price": 3},
		{"name": "Refund", "price": -2, "confidence": 7}
	]}` + "\n```"

	items, err := decodeExtractedMenu(raw, "USD")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Flat White", items[0].ItemName)
	assert.Equal(t, "EUR", items[0].Currency)
	assert.Equal(t, models.AvailabilityAvailable, items[0].Availability)
	assert.Equal(t, 0.95, items[0].Confidence)

	assert.Nil(t, items[1].Price)
	assert.Equal(t, "USD", items[1].Currency)
	assert.Equal(t, models.AvailabilityUnavailable, items[1].Availability)

	assert.Nil(t, items[2].Price, "negative prices are dropped")
	assert.Equal(t, models.AvailabilityUnknown, items[2].Availability)
	assert.Equal(t, htmlConfidence, items[2].Confidence)
}

func TestDecodeExtractedMenu_ClampsToColumnLimits(t *testing.T) {
	raw := `{"items": [
		{"name": "` + strings.Repeat("x", 600) + `", "price": 3},
		{"name": "Caviar Flight", "currency": "dollars", "price": 123456789.5},
		{"name": "Espresso", "currency": "$", "price": 2.5, "category": "` + strings.Repeat("é", 300) + `"}
	]}`

	items, err := decodeExtractedMenu(raw, "EUR")
	require.NoError(t, err)
	require.Len(t, items, 2, "overlong names are dropped")

	assert.Equal(t, "Caviar Flight", items[0].ItemName)
	assert.Equal(t, "EUR", items[0].Currency)
	assert.Nil(t, items[0].Price)

	assert.Equal(t, "USD", items[1].Currency)
	require.NotNil(t, items[1].Price)
	assert.Equal(t, 2.5, *items[1].Price)
	assert.Equal(t, maxCategoryLength, utf8.RuneCountInString(items[1].Category))
	assert.True(t, utf8.ValidString(items[1].Category))
}

func TestDecodeExtractedMenu_InvalidJSON(t *testing.T) {
	_, err := decodeExtractedMenu("Sorry, I cannot help with that.", "USD")
	assert.Error(t, err)
}

func TestNewGeminiMenuExtractor_RequiresKey(t *testing.T) {
	_, err := NewGeminiMenuExtractor(t.Context(), "", "", "USD")
	assert.Error(t, err)
}
