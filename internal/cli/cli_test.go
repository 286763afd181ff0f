package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

func TestNotify(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Notify(setup.LevelSuccess, "synced menu for Bean There (3 items)")
	p.Notify(setup.LevelError, "menu sync failed for Daily Grind: timed out")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "✓ synced menu for Bean There (3 items)", lines[0])
	assert.Equal(t, "✗ menu sync failed for Daily Grind: timed out", lines[1])
}

func TestCompetitorsTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	d := 1.25

	p.Competitors([]*models.Competitor{
		{ID: 4, Name: "Bean There", IsSelected: true, DistanceKm: &d, Website: "https://bean.example"},
		{ID: 9, Name: "Daily Grind", MenuURL: "https://grind.example/menu"},
	})

	out := buf.String()
	assert.Contains(t, out, "Bean There")
	assert.Contains(t, out, "1.2 km")
	assert.Contains(t, out, "https://bean.example")
	assert.Contains(t, out, "https://grind.example/menu")
	assert.Contains(t, out, "never")

	buf.Reset()
	p.Competitors(nil)
	assert.Equal(t, "no competitors\n", buf.String())
}

func TestMenu(t *testing.T) {
	var buf bytes.Buffer
	price := 4.5

	NewPrinter(&buf).Menu(&models.MenuBatch{
		BatchID:       "b-1",
		Extractor:     "parser",
		SyncTimestamp: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Cached:        true,
		Items: []models.MenuItem{
			{Category: "Coffee", ItemName: "Latte", Price: &price, Currency: "USD", Availability: "unknown", Confidence: 0.8},
			{ItemName: "Seasonal Special", Availability: "unavailable", Confidence: 0.55},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "batch b-1 via parser")
	assert.Contains(t, out, "(cached)")
	assert.Contains(t, out, "4.50 USD")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "Seasonal Special")
}

func TestEncode(t *testing.T) {
	comp := &models.Competitor{ID: 3, Name: "Brew Lab", IsSelected: true}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, comp))
	assert.Contains(t, buf.String(), "name: Brew Lab")
	assert.Contains(t, buf.String(), "is_selected: true")

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatJSON, comp))
	assert.Contains(t, buf.String(), `"name": "Brew Lab"`)

	assert.Error(t, Encode(&buf, "xml", comp))
	assert.True(t, ValidFormat(FormatTable))
	assert.False(t, ValidFormat("xml"))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker(t *testing.T) {
	sel := setup.NewSelection([]models.CandidateCompetitor{
		{ID: "place-a", Name: "Bean There", Selected: true},
		{ID: "place-b", Name: "Daily Grind", Selected: true},
	})
	before := sel.Items()
	m := NewPicker(sel, NewPrinter(&bytes.Buffer{}).Styles())

	m.Update(key("down"))
	m.Update(key("x"))
	assert.False(t, sel.Items()[1].Selected)
	m.Update(key("x"))
	if diff := cmp.Diff(before, sel.Items()); diff != "" {
		t.Errorf("toggle twice changed the selection (-want +got):\n%s", diff)
	}

	m.Update(key("d"))
	m.Update(key("k"))
	m.Update(key("d"))
	assert.Zero(t, sel.SelectedCount())

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd, "commit is refused with nothing selected")
	assert.Contains(t, m.View(), setup.ErrNothingSelected.Error())

	m.Update(key("x"))
	_, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, ActionCommit, m.Action())

	m.Reset("")
	_, cmd = m.Update(key("e"))
	require.NotNil(t, cmd)
	assert.Equal(t, ActionEdit, m.Action())
	assert.Equal(t, 0, m.Cursor())
}

func TestPrompterCandidate(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\nPop-up Roaster\n\n\nhttps://roaster.example\n\n")
	p := NewPrompter(in, NewPrinter(&out))

	c, err := p.Candidate(models.CandidateCompetitor{Category: "cafe"})
	require.NoError(t, err)

	assert.Equal(t, "Pop-up Roaster", c.Name)
	assert.Equal(t, "cafe", c.Category, "empty answers keep the current value")
	assert.Equal(t, "https://roaster.example", c.Website)
	assert.Contains(t, out.String(), "competitor name is required")
}

func TestPrompterConfirm(t *testing.T) {
	p := NewPrompter(strings.NewReader("yes\nnope\n"), NewPrinter(&bytes.Buffer{}))

	ok, err := p.Confirm("Delete?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Delete?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Confirm("Delete?")
	assert.Error(t, err, "EOF with no answer")
}
