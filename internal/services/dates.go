package services

import "time"

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, invalidf("%s must be a YYYY-MM-DD date", field)
	}
	return &t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
