package setup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/foxxcyber/compwatch/internal/models"
)

var (
	ErrIndexOutOfRange  = errors.New("candidate index out of range")
	ErrNameRequired     = errors.New("competitor name is required")
	ErrUnknownCandidate = errors.New("candidate not in selection")
)

// Selection is the in-memory staging list between search and commit.
// It never talks to the server.
type Selection struct {
	items []models.CandidateCompetitor
	now   func() time.Time
}

// NewSelection stages a copy of candidates
func NewSelection(candidates []models.CandidateCompetitor) *Selection {
	return &Selection{
		items: append([]models.CandidateCompetitor(nil), candidates...),
		now:   time.Now,
	}
}

func (s *Selection) Len() int { return len(s.items) }

// Items returns a copy of the staged candidates
func (s *Selection) Items() []models.CandidateCompetitor {
	return append([]models.CandidateCompetitor(nil), s.items...)
}

func (s *Selection) check(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}

// Toggle sets the selected flag of the candidate at index
func (s *Selection) Toggle(index int, checked bool) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.items[index].Selected = checked
	return nil
}

// Remove deselects the candidate at index. The entry stays in the list.
func (s *Selection) Remove(index int) error {
	return s.Toggle(index, false)
}

// Edit returns a copy of the candidate at index to prefill an edit form
func (s *Selection) Edit(index int) (models.CandidateCompetitor, error) {
	if err := s.check(index); err != nil {
		return models.CandidateCompetitor{}, err
	}
	return s.items[index], nil
}

// Submit stores an edited or new candidate. A candidate without an id is
// appended as a selected manual entry; otherwise the entry with the same id
// is replaced in place.
func (s *Selection) Submit(c models.CandidateCompetitor) (models.CandidateCompetitor, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, ErrNameRequired
	}

	if c.ID == "" {
		c.ID = s.manualID()
		c.Selected = true
		s.items = append(s.items, c)
		return c, nil
	}

	for i := range s.items {
		if s.items[i].ID == c.ID {
			s.items[i] = c
			return c, nil
		}
	}
	return c, fmt.Errorf("%w: %s", ErrUnknownCandidate, c.ID)
}

// manualID returns manual-<unix millis>, bumped past any id already staged
func (s *Selection) manualID() string {
	ts := s.now().UnixMilli()
	for {
		id := models.ManualIDPrefix + strconv.FormatInt(ts, 10)
		if !s.has(id) {
			return id
		}
		ts++
	}
}

func (s *Selection) has(id string) bool {
	for _, c := range s.items {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Selected returns the candidates that will be committed
func (s *Selection) Selected() []models.CandidateCompetitor {
	var out []models.CandidateCompetitor
	for _, c := range s.items {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selection) SelectedCount() int {
	n := 0
	for _, c := range s.items {
		if c.Selected {
			n++
		}
	}
	return n
}
