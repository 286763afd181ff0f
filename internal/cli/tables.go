package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/foxxcyber/compwatch/internal/models"
)

func (p *Printer) table(headers []string, rows [][]string) string {
	s := p.styles
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		String()
}

func distance(km *float64) string {
	if km == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f km", *km)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func check(b bool) string {
	if b {
		return "[x]"
	}
	return "[ ]"
}

// Candidates renders the staging list with its 1-based row numbers
func (p *Printer) Candidates(candidates []models.CandidateCompetitor) {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			check(c.Selected),
			c.Name,
			orDash(c.Category),
			distance(c.Distance),
			orDash(c.Address),
			orDash(firstNonEmpty(c.MenuURL, c.Website)),
		})
	}
	p.Println(p.table([]string{"#", "Track", "Name", "Category", "Distance", "Address", "Menu"}, rows))
}

// Competitors renders persisted competitors
func (p *Printer) Competitors(competitors []*models.Competitor) {
	if len(competitors) == 0 {
		p.Println(p.styles.Muted.Render("no competitors"))
		return
	}

	rows := make([][]string, 0, len(competitors))
	for _, c := range competitors {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			check(c.IsSelected),
			c.Name,
			orDash(c.Category),
			distance(c.DistanceKm),
			orDash(c.MenuSource()),
			lastSynced(c.LastSyncedAt),
		})
	}
	p.Println(p.table([]string{"ID", "Tracked", "Name", "Category", "Distance", "Menu source", "Last synced"}, rows))
}

// Competitor renders one competitor
func (p *Printer) Competitor(c *models.Competitor) {
	p.Title(c.Name)
	p.Fields(
		"ID", strconv.Itoa(c.ID),
		"Tracked", strconv.FormatBool(c.IsSelected),
		"Category", c.Category,
		"Address", c.Address,
		"Website", c.Website,
		"Menu URL", c.MenuURL,
		"Distance", distance(c.DistanceKm),
		"Last synced", lastSynced(c.LastSyncedAt),
	)
}

// Profile renders the business profile
func (p *Printer) Profile(bp *models.BusinessProfile) {
	p.Title(bp.Name)
	coords := ""
	if bp.Latitude != nil && bp.Longitude != nil {
		coords = fmt.Sprintf("%.5f, %.5f", *bp.Latitude, *bp.Longitude)
	}
	p.Fields(
		"Industry", bp.Industry,
		"Location", bp.Location(),
		"Coordinates", coords,
	)
}

// Menu renders a batch of menu items grouped in scrape order
func (p *Printer) Menu(batch *models.MenuBatch) {
	status := batch.SyncTimestamp.Local().Format(time.DateTime)
	if batch.Cached {
		status += " (cached)"
	}
	p.Println(p.styles.Muted.Render(fmt.Sprintf("batch %s via %s, %s", batch.BatchID, batch.Extractor, status)))

	rows := make([][]string, 0, len(batch.Items))
	for _, item := range batch.Items {
		rows = append(rows, []string{
			orDash(item.Category),
			item.ItemName,
			price(item),
			item.Availability,
			fmt.Sprintf("%.0f%%", item.Confidence*100),
		})
	}
	p.Println(p.table([]string{"Category", "Item", "Price", "Availability", "Confidence"}, rows))
}

// Batches renders menu batch history
func (p *Printer) Batches(batches []*models.MenuBatchSummary) {
	if len(batches) == 0 {
		p.Println(p.styles.Muted.Render("no menu batches"))
		return
	}

	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.SyncTimestamp.Local().Format(time.DateTime),
			b.BatchID,
			b.Extractor,
			strconv.Itoa(b.ItemCount),
			b.SourceURL,
		})
	}
	p.Println(p.table([]string{"Synced", "Batch", "Extractor", "Items", "Source"}, rows))
}

func price(item models.MenuItem) string {
	if item.Price == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", *item.Price, item.Currency)
}

func lastSynced(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
