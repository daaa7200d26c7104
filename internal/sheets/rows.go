package sheets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Banner tab columns.
const (
	bannerName = iota
	bannerStart
	bannerEnd
	bannerRegion
	bannerID
	bannerColumns
)

// Servant tab columns. Rateup columns follow in pairs.
const (
	servantID = iota
	servantStatus
	servantName
	servantColumns
)

// BuildBannerRows turns banner tab rows, header excluded, into banners ordered
// by numeric id. Rows that are not exactly one banner wide are skipped. An NA
// banner whose id ends in ".5" links to the JP banner of the same base id.
func BuildBannerRows(rows [][]Cell) ([]BannerRow, error) {
	byID := make(map[string]BannerRow)

	for _, region := range []string{"JP", "NA"} {
		for _, row := range rows {
			if len(row) != bannerColumns || row[bannerRegion].Value != region {
				continue
			}
			id := row[bannerID].Value
			b := BannerRow{
				Name:      row[bannerName].Value,
				WikiLink:  row[bannerName].Hyperlink,
				StartDate: row[bannerStart].Value,
				EndDate:   row[bannerEnd].Value,
				BannerID:  id,
				Region:    region,
			}
			if region == "NA" {
				if base, ok := strings.CutSuffix(id, ".5"); ok {
					if jp, found := byID[base]; found && jp.Region == "JP" {
						b.JPBanner = &base
					}
				}
			}
			byID[id] = b
		}
	}

	return sortByID(byID, func(b BannerRow) string { return b.BannerID })
}

// BuildServantRows turns servant tab rows, header excluded, into servants
// ordered by numeric id. Reading stops at the first empty row.
func BuildServantRows(rows [][]Cell) ([]ServantRow, error) {
	byID := make(map[string]ServantRow)

	for _, row := range rows {
		if len(row) == 0 {
			break
		}
		if len(row) < servantColumns {
			return nil, fmt.Errorf("servant row %q has %d columns", row[0].Value, len(row))
		}

		// Rateup columns run until the first empty cell.
		end := len(row)
		for i, c := range row {
			if c.Empty() {
				end = i
				break
			}
		}
		var rateups []string
		for i := servantColumns; i < end; i += 2 {
			rateups = append(rateups, row[i].Value)
		}

		s := ServantRow{
			ServantID: row[servantID].Value,
			Status:    row[servantStatus].Value,
			Name:      row[servantName].Value,
			Rateups:   strings.Join(rateups, ","),
		}
		byID[s.ServantID] = s
	}

	return sortByID(byID, func(s ServantRow) string { return s.ServantID })
}

func sortByID[T any](byID map[string]T, id func(T) string) ([]T, error) {
	type keyed struct {
		row T
		key float64
	}
	rows := make([]keyed, 0, len(byID))
	for k, row := range byID {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, fmt.Errorf("row id %q is not numeric: %w", id(row), err)
		}
		rows = append(rows, keyed{row: row, key: f})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })

	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out, nil
}
