package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foxxcyber/compwatch/internal/models"
)

const (
	htmlConfidence    = 0.8
	ocrConfidence     = 0.55
	noSymbolPenalty   = 0.1
	maxItemNameLength = 120
	maxCategoryLength = 255
	maxMenuPrice      = 9999
	maxHeaderWords    = 5
)

var currencySymbols = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"USD": "USD",
	"€":   "EUR",
	"EUR": "EUR",
	"£":   "GBP",
	"GBP": "GBP",
	"₹":   "INR",
	"RS":  "INR",
	"RS.": "INR",
	"INR": "INR",
	"¥":   "JPY",
	"JPY": "JPY",
	"C$":  "CAD",
	"CAD": "CAD",
	"A$":  "AUD",
	"AUD": "AUD",
}

// MenuParser turns flattened menu text into menu items
type MenuParser struct {
	defaultCurrency string
	pricePatterns   []*regexp.Regexp
	excludePatterns []*regexp.Regexp
	soldOutPattern  *regexp.Regexp
	spaceRe         *regexp.Regexp
}

// ParsedLine is one priced line before it becomes a MenuItem
type ParsedLine struct {
	Name     string
	Price    float64
	Symbol   string
	Currency string
}

// NewMenuParser creates a parser that falls back to defaultCurrency when a
// price carries no symbol
func NewMenuParser(defaultCurrency string) *MenuParser {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}

	const symbol = `(US\$|C\$|A\$|[$€£₹¥]|USD|EUR|GBP|INR|JPY|CAD|AUD|Rs\.?)`
	const amount = `(\d{1,5}(?:[.,]\d{2})?)`

	return &MenuParser{
		defaultCurrency: strings.ToUpper(defaultCurrency),
		pricePatterns: []*regexp.Regexp{
			// Name ....... $12.50 / Name - 12.50 / Name 12.50 USD
			regexp.MustCompile(`(?i)^(.+?)[\s.·…_-]+` + symbol + `?\s?` + amount + `\s*` + symbol + `?$`),
			// $12.50 Name
			regexp.MustCompile(`(?i)^` + symbol + `\s?` + amount + `\s+(.+)$`),
		},
		excludePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(copyright|©|all rights reserved|privacy|terms|cookie|follow us|subscribe|sign in|log ?in|cart|checkout|open(ing)? hours|hours|tel|phone|call us|order online|delivery fee|minimum order|subtotal|total|tax)\b`),
			regexp.MustCompile(`^\s*[-=*_·.]+\s*$`),
			regexp.MustCompile(`^\s*\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\s*$`),
			regexp.MustCompile(`(?i)^\s*(mon|tue|wed|thu|fri|sat|sun)[a-z]*\b.*\d{1,2}(:\d{2})?\s*(am|pm)`),
			regexp.MustCompile(`(?i)^\s*\d{1,2}(:\d{2})?\s*(am|pm)\s*[-–]\s*\d{1,2}(:\d{2})?\s*(am|pm)\s*$`),
		},
		soldOutPattern: regexp.MustCompile(`(?i)\(?\b(sold out|unavailable|out of stock|86'?d)\b\)?`),
		spaceRe:        regexp.MustCompile(`\s+`),
	}
}

// Parse extracts items from text. fromOCR lowers confidence since OCR text
// is noisier than page text.
func (p *MenuParser) Parse(text string, fromOCR bool) []models.MenuItem {
	items := []models.MenuItem{}
	category := ""
	var last *models.MenuItem

	base := htmlConfidence
	if fromOCR {
		base = ocrConfidence
	}

	for _, raw := range strings.Split(text, "\n") {
		line := p.cleanLine(raw)
		if line == "" || p.shouldExclude(line) {
			continue
		}

		availability := models.AvailabilityUnknown
		if p.soldOutPattern.MatchString(line) {
			availability = models.AvailabilityUnavailable
			line = strings.TrimSpace(p.soldOutPattern.ReplaceAllString(line, ""))
		}

		if parsed := p.ParseLine(line); parsed != nil {
			price := parsed.Price
			confidence := base
			if parsed.Symbol == "" {
				confidence -= noSymbolPenalty
			}
			items = append(items, models.MenuItem{
				ItemName:     parsed.Name,
				Category:     category,
				Price:        &price,
				Currency:     parsed.Currency,
				Availability: availability,
				Confidence:   confidence,
			})
			last = &items[len(items)-1]
			continue
		}

		if isCategoryHeader(line) {
			category = clipRunes(strings.TrimRight(titleCase(line), ":"), maxCategoryLength)
			last = nil
			continue
		}

		// A wordy unpriced line right after an item describes it
		if last != nil && last.Description == "" && len(strings.Fields(line)) >= 3 {
			last.Description = line
			if availability == models.AvailabilityUnavailable {
				last.Availability = availability
			}
			last = nil
		}
	}

	return items
}

// ParseLine parses a single priced line, nil when the line has no price
func (p *MenuParser) ParseLine(line string) *ParsedLine {
	for i, pattern := range p.pricePatterns {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		var name, symbol, amount string
		if i == 0 {
			name, amount = m[1], m[3]
			symbol = m[2]
			if symbol == "" {
				symbol = m[4]
			}
		} else {
			symbol, amount, name = m[1], m[2], m[3]
		}

		price, err := strconv.ParseFloat(strings.Replace(amount, ",", ".", 1), 64)
		if err != nil || price <= 0 || price > maxMenuPrice {
			continue
		}
		// Bare four digit numbers are years or street numbers far more often than prices
		if symbol == "" && !strings.ContainsAny(amount, ".,") && len(amount) > 3 {
			continue
		}

		name = cleanItemName(name)
		if name == "" || len(name) > maxItemNameLength || !hasLetter(name) {
			continue
		}

		currency := p.defaultCurrency
		if symbol != "" {
			if code, ok := currencySymbols[strings.ToUpper(symbol)]; ok {
				currency = code
			}
		}

		return &ParsedLine{Name: name, Price: price, Symbol: symbol, Currency: currency}
	}
	return nil
}

func (p *MenuParser) shouldExclude(line string) bool {
	for _, pattern := range p.excludePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func (p *MenuParser) cleanLine(line string) string {
	line = p.spaceRe.ReplaceAllString(line, " ")
	line = strings.ReplaceAll(line, "|", " ")
	return strings.TrimSpace(line)
}

func cleanItemName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ".,;:-_·… ")
	name = strings.TrimLeft(name, "@#*•- ")
	return strings.TrimSpace(name)
}

// isCategoryHeader reports short letter-only lines written in caps or ending in a colon
func isCategoryHeader(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxHeaderWords {
		return false
	}
	if strings.ContainsAny(line, "0123456789$€£₹¥") {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	return hasLetter(line) && strings.ToUpper(line) == line
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// clipRunes shortens s to at most n characters without splitting a rune
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// clipBytes shortens s to at most n bytes, backing off to a rune boundary
func clipBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// currencyCode maps a model or page supplied currency to an ISO code, or ""
func currencyCode(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := currencySymbols[raw]; ok {
		return code
	}
	if len(raw) != 3 {
		return ""
	}
	for _, r := range raw {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return raw
}
