package setup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

func staged() []models.CandidateCompetitor {
	return []models.CandidateCompetitor{
		{ID: "place-a", Name: "Bean There", Selected: true},
		{ID: "12", Name: "Daily Grind", Selected: true},
		{ID: "place-c", Name: "Brew Lab", Selected: true},
	}
}

func TestSelection_ToggleTwiceRestoresState(t *testing.T) {
	s := setup.NewSelection(staged())
	before := s.Items()

	require.NoError(t, s.Toggle(1, false))
	assert.Equal(t, 2, s.SelectedCount())
	require.NoError(t, s.Toggle(1, true))

	assert.Equal(t, before, s.Items())
}

func TestSelection_RemoveDeselects(t *testing.T) {
	s := setup.NewSelection(staged())

	require.NoError(t, s.Remove(0))

	assert.Equal(t, 3, s.Len(), "removed entries stay staged")
	assert.False(t, s.Items()[0].Selected)
	assert.Len(t, s.Selected(), 2)
}

func TestSelection_IndexOutOfRange(t *testing.T) {
	s := setup.NewSelection(staged())

	assert.ErrorIs(t, s.Toggle(3, true), setup.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Remove(-1), setup.ErrIndexOutOfRange)
	_, err := s.Edit(10)
	assert.ErrorIs(t, err, setup.ErrIndexOutOfRange)
}

func TestSelection_SubmitNewCandidate(t *testing.T) {
	s := setup.NewSelection(staged())

	_, err := s.Submit(models.CandidateCompetitor{Name: "   "})
	assert.ErrorIs(t, err, setup.ErrNameRequired)

	first, err := s.Submit(models.CandidateCompetitor{Name: "Bean There", MenuURL: "https://bean.example/menu"})
	require.NoError(t, err)
	second, err := s.Submit(models.CandidateCompetitor{Name: "Bean There"})
	require.NoError(t, err)

	assert.True(t, first.IsManual())
	assert.True(t, first.Selected)
	assert.NotEqual(t, first.ID, second.ID, "manual ids never collide")
	assert.Equal(t, 5, s.Len(), "duplicate names are kept")
	assert.Equal(t, 5, s.SelectedCount())
}

func TestSelection_SubmitReplacesInPlace(t *testing.T) {
	s := setup.NewSelection(staged())

	edited, err := s.Edit(1)
	require.NoError(t, err)
	edited.MenuURL = "https://grind.example/menu"
	edited.Selected = false

	_, err = s.Submit(edited)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "https://grind.example/menu", s.Items()[1].MenuURL)
	assert.False(t, s.Items()[1].Selected)

	_, err = s.Submit(models.CandidateCompetitor{ID: "99", Name: "Ghost"})
	assert.ErrorIs(t, err, setup.ErrUnknownCandidate)
}

func TestSelection_CopiesInput(t *testing.T) {
	in := staged()
	s := setup.NewSelection(in)

	require.NoError(t, s.Toggle(0, false))
	assert.True(t, in[0].Selected)

	items := s.Items()
	items[1].Name = "changed"
	assert.Equal(t, "Daily Grind", s.Items()[1].Name)
}
