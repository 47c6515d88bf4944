// Package domain models the wind-turbine catalog and the spreadsheet
// ingestion rules.
//
// # Data Source
//
// Turbine records are maintained by operations staff in shared Google
// Sheets. Column naming across those sheets is inconsistent, so ingestion
// resolves each field from an ordered list of header aliases (for example
// "name", "turbine", "id", "identifier" all identify a turbine). Matching
// is case-insensitive on whitespace-trimmed header cells.
//
// # Parsing Conventions
//
// Parsing is deliberately permissive: a single bad cell never fails an
// import. Missing or unparseable values degrade to defaults instead:
//
//	name:    "Unnamed Turbine" when no name-like column has a value
//	status:  "Unknown" when absent; always title-cased ("IN SERVICE" → "In Service")
//	numbers: nil (absent) for "", "NA", "N/A", or anything that does not parse
//
// The distinction between nil and zero matters downstream: a turbine with
// no recorded coordinates must not appear at (0, 0).
//
// # Identity
//
// The turbine name is the domain key. Imports upsert by exact name match:
// an unseen name inserts a new document, a known name fully replaces the
// existing document's data fields. Store-assigned document IDs are opaque
// and only surface as strings at the API boundary.
package domain
