// Package sheets fetches turbine CSV exports from Google Sheets share links.
package sheets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSheetURL is returned when a share link cannot be decomposed into
// a document ID.
var ErrInvalidSheetURL = errors.New("invalid Google Sheets URL")

// exportMarker identifies a link that is already a CSV export URL.
const exportMarker = "export?format=csv"

// ResolveExportURL converts a Google Sheets share link into its CSV export
// URL. Links already in export form pass through unchanged, so resolution is
// idempotent. A typical share link looks like:
//
//	https://docs.google.com/spreadsheets/d/{docID}/edit?gid={gid}#gid={gid}
//
// The optional gid selects a single tab of a multi-tab spreadsheet and is
// carried over when present. No network access occurs here.
func ResolveExportURL(shareURL string) (string, error) {
	if strings.Contains(shareURL, exportMarker) {
		return shareURL, nil
	}

	_, rest, found := strings.Cut(shareURL, "/d/")
	if !found {
		return "", ErrInvalidSheetURL
	}
	docID, _, _ := strings.Cut(rest, "/")
	if docID == "" {
		return "", ErrInvalidSheetURL
	}

	exportURL := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", docID)
	if _, after, ok := strings.Cut(shareURL, "gid="); ok {
		gid, _, _ := strings.Cut(after, "&")
		if gid != "" {
			exportURL += "&gid=" + gid
		}
	}
	return exportURL, nil
}
