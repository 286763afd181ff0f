package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/models"
)

func TestMenuParser_Parse(t *testing.T) {
	text := `STARTERS
Garlic Bread ........ $5.50
Toasted sourdough with herb butter
Soup of the Day 6
Call us (555) 123-4567
MAINS:
Margherita Pizza - 12.00
Truffle Risotto $18.50 (sold out)
-----
Total 41.00`

	items := NewMenuParser("USD").Parse(text, false)
	require.Len(t, items, 4)

	assert.Equal(t, "Garlic Bread", items[0].ItemName)
	assert.Equal(t, "Starters", items[0].Category)
	assert.Equal(t, "Toasted sourdough with herb butter", items[0].Description)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 5.50, *items[0].Price)
	assert.Equal(t, "USD", items[0].Currency)
	assert.InDelta(t, 0.8, items[0].Confidence, 0.001)

	assert.Equal(t, "Soup of the Day", items[1].ItemName)
	assert.Equal(t, 6.0, *items[1].Price)
	assert.InDelta(t, 0.7, items[1].Confidence, 0.001, "a price without symbol is less certain")

	assert.Equal(t, "Margherita Pizza", items[2].ItemName)
	assert.Equal(t, "Mains", items[2].Category)
	assert.Equal(t, 12.0, *items[2].Price)

	assert.Equal(t, "Truffle Risotto", items[3].ItemName)
	assert.Equal(t, 18.50, *items[3].Price)
	assert.Equal(t, models.AvailabilityUnavailable, items[3].Availability)
	assert.Equal(t, models.AvailabilityUnknown, items[2].Availability)
}

func TestMenuParser_ParseOCRLowersConfidence(t *testing.T) {
	p := NewMenuParser("USD")

	html := p.Parse("Latte $4.50", false)
	ocr := p.Parse("Latte $4.50", true)

	require.Len(t, html, 1)
	require.Len(t, ocr, 1)
	assert.Less(t, ocr[0].Confidence, html[0].Confidence)
}

func TestMenuParser_ParseLine(t *testing.T) {
	p := NewMenuParser("GBP")

	tests := []struct {
		line     string
		name     string
		price    float64
		currency string
	}{
		{"Masala Dosa ₹120", "Masala Dosa", 120, "INR"},
		{"Croissant 3,20 €", "Croissant", 3.20, "EUR"},
		{"Burger 12 USD", "Burger", 12, "USD"},
		{"$4 Espresso", "Espresso", 4, "USD"},
		{"Fish and Chips 9.95", "Fish and Chips", 9.95, "GBP"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			parsed := p.ParseLine(tt.line)
			require.NotNil(t, parsed)
			assert.Equal(t, tt.name, parsed.Name)
			assert.InDelta(t, tt.price, parsed.Price, 0.0001)
			assert.Equal(t, tt.currency, parsed.Currency)
		})
	}
}

func TestMenuParser_ParseLineRejects(t *testing.T) {
	p := NewMenuParser("")

	for _, line := range []string{
		"Since 1995",
		"Welcome to our cafe",
		"12.50",
		"Catering 0.00",
	} {
		assert.Nil(t, p.ParseLine(line), line)
	}
}

func TestIsCategoryHeader(t *testing.T) {
	assert.True(t, isCategoryHeader("DESSERTS"))
	assert.True(t, isCategoryHeader("Hot drinks:"))
	assert.False(t, isCategoryHeader("Hot drinks"))
	assert.False(t, isCategoryHeader("LUNCH 11-3"))
	assert.False(t, isCategoryHeader("THIS LINE HAS FAR TOO MANY WORDS TO BE A HEADER"))
}

func TestMenuParser_ParseNonASCIIHeader(t *testing.T) {
	items := NewMenuParser("EUR").Parse("ÉNTRÉES:\nSoupe à l'oignon 8.50 €\nÖL\nPils 4.00 €\n", false)
	require.Len(t, items, 2)

	assert.Equal(t, "Entrées", items[0].Category)
	assert.Equal(t, "Öl", items[1].Category)
	for _, it := range items {
		assert.True(t, utf8.ValidString(it.Category), "category %q", it.Category)
		assert.Equal(t, "EUR", it.Currency)
	}
}

func TestClipHelpers(t *testing.T) {
	assert.Equal(t, "Caf", clipRunes("Café", 3))
	assert.Equal(t, "Café", clipRunes("Café", 10))

	cut := clipBytes("Café au lait", 4)
	assert.Equal(t, "Caf", cut)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "Café", clipBytes("Café", 5))

	long := strings.Repeat("ü", 10)
	for n := 0; n <= len(long); n++ {
		assert.True(t, utf8.ValidString(clipBytes(long, n)))
	}
}

func TestCurrencyCode(t *testing.T) {
	assert.Equal(t, "EUR", currencyCode(" eur "))
	assert.Equal(t, "USD", currencyCode("$"))
	assert.Equal(t, "GBP", currencyCode("£"))
	assert.Empty(t, currencyCode("dollars"))
	assert.Empty(t, currencyCode("U5D"))
	assert.Empty(t, currencyCode(""))
}
