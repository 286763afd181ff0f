package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Corner Cafe</title><style>.x{color:red}</style></head>
<body>
<nav><a href="/">Home</a><a href="/menu">Menu</a></nav>
<h2>Coffee</h2>
<table>
  <tr><td>Latte</td><td>$4.50</td></tr>
  <tr><td>Mocha</td><td>$5.00</td></tr>
</table>
<p>Fresh <b>daily</b></p>
<script>var tracking = 1;</script>
<footer>© 2024 Corner Cafe</footer>
</body></html>`

func TestExtractPageText(t *testing.T) {
	text, err := ExtractPageText(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Coffee:",
		"Latte $4.50",
		"Mocha $5.00",
		"Fresh daily",
	}, strings.Split(text, "\n"))
}

func TestExtractPageText_FeedsParser(t *testing.T) {
	text, err := ExtractPageText(strings.NewReader(samplePage))
	require.NoError(t, err)

	items := NewMenuParser("USD").Parse(text, false)
	require.Len(t, items, 2)
	assert.Equal(t, "Latte", items[0].ItemName)
	assert.Equal(t, "Coffee", items[0].Category)
	assert.Equal(t, "Mocha", items[1].ItemName)
	assert.Equal(t, 5.0, *items[1].Price)
}
