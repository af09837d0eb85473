package astro

import "math"

type Tier int

const (
	TierExcellent Tier = iota
	TierModerate
	TierPoor
)

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierModerate:
		return "Moderate"
	case TierPoor:
		return "Poor"
	default:
		return "Unknown"
	}
}

// DisplayHint is what the templates need to present a tier.
type DisplayHint struct {
	Class string
	Emoji string
	Label string
}

// Text joins emoji and label, e.g. "✨ Excellent".
func (h DisplayHint) Text() string {
	if h.Emoji == "" {
		return h.Label
	}
	return h.Emoji + " " + h.Label
}

type Classification struct {
	Tier Tier
	Hint DisplayHint
}

// tierBound maps every value strictly below upper to its classification.
// Tables are sorted by upper and end with +Inf.
type tierBound struct {
	upper float64
	class Classification
}

var cloudCoverTiers = []tierBound{
	{upper: 30, class: Classification{Tier: TierExcellent, Hint: DisplayHint{Class: "metric-excellent", Emoji: "✨", Label: "Excellent"}}},
	{upper: 60, class: Classification{Tier: TierModerate, Hint: DisplayHint{Class: "metric-moderate", Emoji: "⚠️", Label: "Moderate"}}},
	{upper: math.Inf(1), class: Classification{Tier: TierPoor, Hint: DisplayHint{Class: "metric-poor", Emoji: "❌", Label: "Poor"}}},
}

var moonIlluminationTiers = []tierBound{
	{upper: 25, class: Classification{Tier: TierExcellent, Hint: DisplayHint{Class: "metric-excellent", Emoji: "🌑", Label: "Excellent"}}},
	{upper: 50, class: Classification{Tier: TierModerate, Hint: DisplayHint{Class: "metric-moderate", Emoji: "🌓", Label: "Moderate"}}},
	{upper: math.Inf(1), class: Classification{Tier: TierPoor, Hint: DisplayHint{Class: "metric-bright", Emoji: "🌕", Label: "Poor"}}},
}

var hourlyCloudIntensity = map[Tier]string{
	TierExcellent: "cloud-low",
	TierModerate:  "cloud-mid",
	TierPoor:      "cloud-high",
}

// NaN compares false against every bound, so it lands in the last tier.
func classify(tiers []tierBound, v float64) Classification {
	for _, b := range tiers {
		if v < b.upper {
			return b.class
		}
	}
	return tiers[len(tiers)-1].class
}

// ClassifyCloudCover grades a cloud-cover percentage for observing. Used for
// single hours and for the night average alike. Values outside 0-100 are not
// rejected.
func ClassifyCloudCover(v float64) Classification {
	return classify(cloudCoverTiers, v)
}

// ClassifyMoonIllumination grades the illuminated fraction of the moon.
func ClassifyMoonIllumination(v float64) Classification {
	return classify(moonIlluminationTiers, v)
}

// HourlyCloudIntensity returns the background class for the cloud box of a
// compact hourly card.
func HourlyCloudIntensity(v float64) string {
	return hourlyCloudIntensity[ClassifyCloudCover(v).Tier]
}

func DayNightStyle(isDay bool) string {
	if isDay {
		return "hour-day"
	}
	return "hour-night"
}

func LocationQualityStyle(goodTonight bool) string {
	if goodTonight {
		return "location-good"
	}
	return "location-default"
}
