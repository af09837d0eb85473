package astro

// IsDaytime reports whether the forecast timestamp instant falls between
// sunrise and sunset, both bounds included.
//
// Sunsets after midnight (and polar day or night) are not modelled: the
// comparison is a plain minutes-of-day range check.
func IsDaytime(instant, sunrise, sunset string) (bool, error) {
	t, err := ParseTimestamp(instant)
	if err != nil {
		return false, err
	}
	rise, err := ParseClockTime(sunrise)
	if err != nil {
		return false, err
	}
	set, err := ParseClockTime(sunset)
	if err != nil {
		return false, err
	}
	return Between(ClockOf(t), rise, set), nil
}

// Between reports whether rise <= c <= set.
func Between(c, rise, set ClockTime) bool {
	return c >= rise && c <= set
}

// SunWindow is a parsed sunrise/sunset pair for one forecast day.
type SunWindow struct {
	Sunrise ClockTime
	Sunset  ClockTime
}

// ParseSunWindow parses the sunrise and sunset of a day once so callers
// classifying many hours do not reparse them.
func ParseSunWindow(sunrise, sunset string) (SunWindow, error) {
	rise, err := ParseClockTime(sunrise)
	if err != nil {
		return SunWindow{}, err
	}
	set, err := ParseClockTime(sunset)
	if err != nil {
		return SunWindow{}, err
	}
	return SunWindow{Sunrise: rise, Sunset: set}, nil
}

// IsDaytime is the same check as the package-level IsDaytime for an already
// parsed window.
func (w SunWindow) IsDaytime(instant string) (bool, error) {
	t, err := ParseTimestamp(instant)
	if err != nil {
		return false, err
	}
	return Between(ClockOf(t), w.Sunrise, w.Sunset), nil
}
