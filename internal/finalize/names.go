package finalize

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
)

const (
	campaign          = "Campaign"
	summoningCampaign = "Summoning Campaign"
	firstCampaign     = "Summoning Campaign 1"
	secondCampaign    = "Summoning Campaign 2"
)

type nameFix struct {
	re      *regexp2.Regexp
	replace string
	skip    int
}

// normalizeEvent settles the names of banners that were named since the last
// run. Banners already settled are neither rewritten nor renumbered.
func (f *Finalizer) normalizeEvent(e *model.Event) {
	fresh := make(map[*model.Banner]bool)
	var banners []*model.Banner
	for _, b := range e.Banners {
		if !b.NameNormalized() {
			fresh[b] = true
			banners = append(banners, b)
		}
	}
	if len(banners) == 0 {
		return
	}
	f.applyNameFixes(banners)
	numberCampaigns(e.Banners, func(b *model.Banner) bool { return fresh[b] })
	for _, b := range banners {
		b.MarkNameNormalized()
	}
}

// applyNameFixes runs the ordered name fixes over banners of one event. A fix
// with skip N leaves the first N banners it matches alone.
func (f *Finalizer) applyNameFixes(banners []*model.Banner) {
	seen := make([]int, len(f.nameFixes))
	for _, b := range banners {
		name := b.Name
		for i, fix := range f.nameFixes {
			matched, err := fix.re.MatchString(name)
			if err != nil {
				f.logger.Warn("name fix failed", "pattern", fix.re.String(), "banner", name, "error", err)
				continue
			}
			if !matched {
				continue
			}
			seen[i]++
			if seen[i] <= fix.skip {
				continue
			}
			if out, err := common.ReplaceLookaround(fix.re, name, fix.replace); err == nil {
				name = out
			}
		}
		if strings.HasSuffix(name, campaign) && !strings.HasSuffix(name, summoningCampaign) {
			name = strings.TrimSuffix(name, campaign) + summoningCampaign
		}
		b.Name = name
	}
}

// numberCampaigns drops the "1" of a lone first campaign and numbers the
// unnumbered campaign that precedes a second one. Only banners accepted by
// editable are changed.
func numberCampaigns(banners []*model.Banner, editable func(*model.Banner) bool) {
	for i, b := range banners {
		if editable(b) && strings.Contains(b.Name, firstCampaign) && !hasLaterSecond(banners[i+1:]) {
			b.Name = strings.Replace(b.Name, firstCampaign, summoningCampaign, 1)
		}
		if !strings.Contains(b.Name, secondCampaign) {
			continue
		}
		prefix := campaignPrefix(b.Name)
		for j := i - 1; j >= 0; j-- {
			prev := banners[j]
			if editable(prev) && strings.HasSuffix(prev.Name, summoningCampaign) && campaignPrefix(prev.Name) == prefix {
				prev.Name += " 1"
				break
			}
		}
	}
}

func hasLaterSecond(banners []*model.Banner) bool {
	for _, b := range banners {
		if strings.Contains(b.Name, secondCampaign) {
			return true
		}
	}
	return false
}

func campaignPrefix(name string) string {
	prefix, _, _ := strings.Cut(name, summoningCampaign)
	return strings.TrimSpace(prefix)
}
