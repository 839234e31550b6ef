package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VisitRow is one parsed CSV record before it becomes a monthly_visit row.
// Measure fields stay nil when the source cell is blank; blanks must reach
// the database as NULL, never zero, or averages and variability deflate.
type VisitRow struct {
	Region   string
	ParkCode string
	Year     int
	Month    int

	RecreationVisits            *int64
	NonRecreationVisits         *int64
	ConcessionerLodging         *int64
	ConcessionerCamping         *int64
	TentCampers                 *int64
	RVCampers                   *int64
	Backcountry                 *int64
	NonRecreationOvernightStays *int64
	MiscellaneousOvernightStays *int64
}

var visitColumns = []string{
	"Region",
	"UnitCode",
	"Year",
	"Month",
	"RecreationVisits",
	"NonRecreationVisits",
	"ConcessionerLodging",
	"ConcessionerCamping",
	"TentCampers",
	"RVCampers",
	"Backcountry",
	"NonRecreationOvernightStays",
	"MiscellaneousOvernightStays",
}

// ParseVisitsCSV reads one NPS visitation CSV. Numbers may carry comma
// thousands separators; park codes are upper-cased.
func ParseVisitsCSV(path string) ([]VisitRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range visitColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	seen := map[string]bool{}
	var out []VisitRow

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		parkCode := strings.ToUpper(get("UnitCode"))
		if parkCode == "" {
			return nil, fmt.Errorf("row %d: UnitCode is required", rowIdx+1)
		}

		year, err := requiredInt(get("Year"))
		if err != nil {
			return nil, fmt.Errorf("row %d: Year: %w", rowIdx+1, err)
		}
		month, err := requiredInt(get("Month"))
		if err != nil {
			return nil, fmt.Errorf("row %d: Month: %w", rowIdx+1, err)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("row %d: Month must be 1-12 (got %d)", rowIdx+1, month)
		}

		key := fmt.Sprintf("%s/%d/%d", parkCode, year, month)
		if seen[key] {
			return nil, fmt.Errorf("row %d: duplicate observation %s", rowIdx+1, key)
		}
		seen[key] = true

		row := VisitRow{
			Region:   get("Region"),
			ParkCode: parkCode,
			Year:     year,
			Month:    month,
		}
		for name, dst := range map[string]**int64{
			"RecreationVisits":            &row.RecreationVisits,
			"NonRecreationVisits":         &row.NonRecreationVisits,
			"ConcessionerLodging":         &row.ConcessionerLodging,
			"ConcessionerCamping":         &row.ConcessionerCamping,
			"TentCampers":                 &row.TentCampers,
			"RVCampers":                   &row.RVCampers,
			"Backcountry":                 &row.Backcountry,
			"NonRecreationOvernightStays": &row.NonRecreationOvernightStays,
			"MiscellaneousOvernightStays": &row.MiscellaneousOvernightStays,
		} {
			v, err := optionalCount(get(name))
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", rowIdx+1, name, err)
			}
			*dst = v
		}

		out = append(out, row)
	}

	return out, nil
}

func requiredInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("is blank")
	}
	v, err := strconv.Atoi(stripThousands(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

// optionalCount parses a non-negative measure cell; blank means absent.
func optionalCount(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(stripThousands(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	if v < 0 {
		return nil, fmt.Errorf("must be non-negative (got %d)", v)
	}
	return &v, nil
}

func stripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
