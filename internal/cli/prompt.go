package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

// Prompter asks for line-based input
type Prompter struct {
	in  *bufio.Reader
	out *Printer
}

func NewPrompter(in io.Reader, out *Printer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def when it is empty
func (p *Prompter) Ask(label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt += p.out.styles.Muted.Render(" [" + def + "]")
	}
	p.out.mu.Lock()
	fmt.Fprint(p.out.out, prompt+": ")
	p.out.mu.Unlock()

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// Confirm asks a yes/no question; anything but y/yes is no
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Ask(label+" (y/N)", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Candidate fills in the editable fields of c. Name is required.
func (p *Prompter) Candidate(c models.CandidateCompetitor) (models.CandidateCompetitor, error) {
	var err error
	for {
		if c.Name, err = p.Ask("Name", c.Name); err != nil {
			return c, err
		}
		if strings.TrimSpace(c.Name) != "" {
			break
		}
		p.out.Notify(setup.LevelWarning, setup.ErrNameRequired.Error())
	}
	if c.Category, err = p.Ask("Category", c.Category); err != nil {
		return c, err
	}
	if c.Address, err = p.Ask("Address", c.Address); err != nil {
		return c, err
	}
	if c.Website, err = p.Ask("Website", c.Website); err != nil {
		return c, err
	}
	if c.MenuURL, err = p.Ask("Menu URL", c.MenuURL); err != nil {
		return c, err
	}
	return c, nil
}

// Profile fills in a business profile request
func (p *Prompter) Profile(req models.BusinessProfileRequest) (models.BusinessProfileRequest, error) {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Business name", &req.Name},
		{"Industry", &req.Industry},
		{"Street address", &req.StreetAddress},
		{"City", &req.City},
		{"State", &req.State},
		{"Zip code", &req.ZipCode},
	}
	for _, f := range fields {
		v, err := p.Ask(f.label, *f.dst)
		if err != nil {
			return req, err
		}
		*f.dst = v
	}
	return req, nil
}
