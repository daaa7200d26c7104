package sheets

// Cell is one grid cell as the sheet displays it.
type Cell struct {
	Value     string
	Hyperlink string
}

// Empty reports whether the cell has no displayed value.
func (c Cell) Empty() bool {
	return c.Value == ""
}

// BannerRow is one banner from the banner tab.
type BannerRow struct {
	JPBanner  *string `json:"jp_banner"`
	Name      string  `json:"name"`
	WikiLink  string  `json:"wiki_link"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	BannerID  string  `json:"banner_id"`
	Region    string  `json:"region"`
}

// ServantRow is one servant from the servant tab. Rateups is a comma-joined
// list of banner ids.
type ServantRow struct {
	ServantID string `json:"servant_id"`
	Status    string `json:"status"`
	Name      string `json:"name"`
	Rateups   string `json:"rateups"`
}

// Export is everything read from the spreadsheet.
type Export struct {
	Banners  []BannerRow
	Servants []ServantRow
}
