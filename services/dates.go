package services

import "time"

// NormalizeDate wandelt ein partielles Registry-Datum ("2024", "2024-03",
// "2024-03-15") in einen vollen Kalendertag um. Fehlende Monate und Tage werden
// auf 01 gesetzt. Leere oder unparsbare Werte ergeben nil.
func NormalizeDate(dateStr string) *time.Time {
	if dateStr == "" {
		return nil
	}

	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return &t
		}
	}
	return nil
}
