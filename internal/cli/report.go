package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/summon-almanac/internal/model"
)

const reportDate = time.DateOnly

// FormatAppearances renders the rateup history of one servant as a table.
func FormatAppearances(servant model.Servant, appearances []model.Appearance) string {
	title := FormatTitle(fmt.Sprintf("%s (#%d)", servant.Name, servant.ID))
	if len(appearances) == 0 {
		return title + "\n" + FormatInfo("No rateups recorded yet")
	}

	rows := make([][]string, len(appearances))
	for i, a := range appearances {
		rows[i] = []string{
			string(a.Region),
			formatDate(a.StartDate),
			formatDate(a.EndDate),
			a.EventName,
			a.BannerName,
			strconv.Itoa(a.CoFeatured),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(subtleStyle).
		Headers("Region", "Start", "End", "Event", "Banner", "Shared").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle.PaddingRight(1)
			}
			return cellStyle.PaddingRight(1)
		})

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d rateups, %d solo", len(appearances), countSolo(appearances))))
	return b.String()
}

// FormatHarvestSummary renders the result of one region's harvest.
func FormatHarvestSummary(run *model.HarvestRun) string {
	content := fmt.Sprintf("  • Events: %d\n", run.Events) +
		fmt.Sprintf("  • Banners: %d\n", run.Banners) +
		fmt.Sprintf("  • Time taken: %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	return renderBox(fmt.Sprintf("%s %s harvest complete", chartIcon, run.Region), content)
}

func countSolo(appearances []model.Appearance) int {
	n := 0
	for _, a := range appearances {
		if a.CoFeatured == 0 {
			n++
		}
	}
	return n
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format(reportDate)
}
