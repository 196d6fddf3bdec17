package settings

import (
	"fmt"
	"sort"
)

// parseMinutes converts an "HH:MM" string to minutes since midnight.
func parseMinutes(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// overlaps is the half-open interval overlap test.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return max(aStart, bStart) < min(aEnd, bEnd)
}

// Validate checks a schedule and returns every violation found, in a fixed
// order: lunch-break problems first, then per-session problems in input
// order, then overlaps in start-time order. An empty result means the
// schedule is acceptable. The function is pure; running it twice on the
// same input yields the same list.
func Validate(h Hours, sessions []SessionTemplate) []string {
	violations := []string{}

	if h.BusinessStart == "" || h.BusinessEnd == "" {
		return append(violations, "Business hours start and end times are required.")
	}
	bizStart, okStart := parseMinutes(h.BusinessStart)
	bizEnd, okEnd := parseMinutes(h.BusinessEnd)
	if !okStart || !okEnd || bizStart >= bizEnd {
		return append(violations, fmt.Sprintf("Business hours %s - %s are not a valid time window.", h.BusinessStart, h.BusinessEnd))
	}

	lunchStart, lunchEnd := 0, 0
	lunchValid := false
	switch {
	case h.LunchStart == "" && h.LunchEnd == "":
		// no lunch break configured
	case h.LunchStart == "" || h.LunchEnd == "":
		violations = append(violations, "Lunch break requires both start and end times.")
	default:
		var okLS, okLE bool
		lunchStart, okLS = parseMinutes(h.LunchStart)
		lunchEnd, okLE = parseMinutes(h.LunchEnd)
		if !okLS || !okLE || lunchStart >= lunchEnd || lunchStart < bizStart || lunchEnd > bizEnd {
			violations = append(violations, fmt.Sprintf("Lunch break %s - %s must be a valid window within business hours %s - %s.",
				h.LunchStart, h.LunchEnd, h.BusinessStart, h.BusinessEnd))
		} else {
			lunchValid = true
		}
	}

	// Sessions that survive field and ordering checks take part in the
	// overlap scan.
	type interval struct {
		name       string
		start, end int
	}
	var valid []interval

	for i, s := range sessions {
		n := i + 1
		complete := true
		if s.Name == "" {
			violations = append(violations, fmt.Sprintf("Session #%d: name is required.", n))
			complete = false
		}
		if s.ShortCode == "" {
			violations = append(violations, fmt.Sprintf("Session #%d: short code is required.", n))
			complete = false
		}
		if s.Start == "" {
			violations = append(violations, fmt.Sprintf("Session #%d: start time is required.", n))
			complete = false
		}
		if s.End == "" {
			violations = append(violations, fmt.Sprintf("Session #%d: end time is required.", n))
			complete = false
		}
		if !complete {
			continue
		}

		label := s.Name
		start, okS := parseMinutes(s.Start)
		end, okE := parseMinutes(s.End)
		if !okS || !okE {
			violations = append(violations, fmt.Sprintf("Session \"%s\": times must be in HH:MM format.", label))
			continue
		}
		if start >= end {
			violations = append(violations, fmt.Sprintf("Session \"%s\": start time must be before end time.", label))
			continue
		}
		if start < bizStart || end > bizEnd {
			violations = append(violations, fmt.Sprintf("Session \"%s\": must lie within business hours %s - %s.",
				label, h.BusinessStart, h.BusinessEnd))
		}
		if lunchValid && overlaps(start, end, lunchStart, lunchEnd) {
			violations = append(violations, fmt.Sprintf("Session \"%s\": overlaps the lunch break %s - %s.",
				label, h.LunchStart, h.LunchEnd))
		}
		valid = append(valid, interval{name: label, start: start, end: end})
	}

	// Adjacent-pair overlap scan. The end-time tiebreak on equal starts
	// puts the shorter interval first, so two sessions sharing a start
	// are always adjacent and get reported.
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].start != valid[j].start {
			return valid[i].start < valid[j].start
		}
		return valid[i].end < valid[j].end
	})
	for i := 1; i < len(valid); i++ {
		prev, cur := valid[i-1], valid[i]
		if prev.end > cur.start {
			violations = append(violations, fmt.Sprintf("Sessions \"%s\" and \"%s\" overlap.", prev.name, cur.name))
		}
	}

	return violations
}
