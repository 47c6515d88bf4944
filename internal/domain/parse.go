package domain

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Alias candidates per field, in precedence order: the first alias whose
// cell is non-empty wins. Sheets from different wind farms disagree on
// header naming, so every spelling seen in the wild is listed here.
var (
	nameAliases      = []string{"name", "turbine", "id", "identifier"}
	statusAliases    = []string{"status", "state"}
	latitudeAliases  = []string{"lat", "latitude"}
	longitudeAliases = []string{"lng", "longitude"}
	capacityAliases  = []string{"capacity_mw", "capacity", "mw"}
	locationAliases  = []string{"location", "site", "address"}
)

// ParseTurbineCSV converts raw CSV text into turbine records, one per data
// row, in input order. The first line is the header. Parsing never fails:
// malformed rows are skipped and bad cells degrade to defaults, keeping
// ingestion permissive toward messy spreadsheet input. Duplicate names are
// all emitted; reconciliation order is the caller's concern.
func ParseTurbineCSV(rawText string) []Turbine {
	r := csv.NewReader(strings.NewReader(rawText))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	importedAt := clock.Now()

	var records []Turbine
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				cells[col] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, turbineFromRow(cells, importedAt))
	}
	return records
}

func turbineFromRow(cells map[string]string, importedAt time.Time) Turbine {
	name := firstAlias(cells, nameAliases)
	if name == "" {
		name = DefaultName
	}
	status := firstAlias(cells, statusAliases)
	if status == "" {
		status = DefaultStatus
	}

	var location *string
	if loc := firstAlias(cells, locationAliases); loc != "" {
		location = &loc
	}

	return Turbine{
		Name:       name,
		Status:     TitleCase(status),
		Latitude:   parseFloatOrNil(firstAlias(cells, latitudeAliases)),
		Longitude:  parseFloatOrNil(firstAlias(cells, longitudeAliases)),
		CapacityMW: parseFloatOrNil(firstAlias(cells, capacityAliases)),
		Location:   location,
		ImportedAt: importedAt,
	}
}

// firstAlias returns the first candidate column holding a non-empty value.
func firstAlias(cells map[string]string, aliases []string) string {
	for _, a := range aliases {
		if v := cells[a]; v != "" {
			return v
		}
	}
	return ""
}

// parseFloatOrNil parses a numeric cell, returning nil for empty cells, the
// NA/N/A sentinels, and anything that does not parse. Absent must stay
// absent: a turbine with no coordinates must not land at (0, 0).
func parseFloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "N/A" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// TitleCase capitalizes the first letter of each word and lowercases the
// rest. Statuses are normalized this way both before storage and before
// filter comparison, so "active", "ACTIVE", and "Active" all match.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
