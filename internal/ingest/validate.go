package ingest

import "github.com/spec-kit/ticket-insights/pkg/util"

// RequiredColumns lists every column a ticket export must contain.
// Order here is the order missing columns are reported in.
var RequiredColumns = []string{
	"Request ID",
	"Subject",
	"Status.Name",
	"Group.Name",
	"Sub Category.Name",
	"IPC Feature List",
	"Technician.Name",
	"Requester.Name",
	"Created Date",
	"Completed Time",
	"Last Updated Time",
	"DevOpsRef",
	"Category.Name",
	"Priority.Name",
	"IPC Feature",
	"Responded Time",
}

// MissingColumns returns the required columns absent from the table,
// preserving RequiredColumns order. Row contents are not inspected.
func MissingColumns(t *RawTable) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Validate returns a VALIDATION_FAILED error naming the exact missing
// columns, or nil when the schema conforms. Callers must not normalize
// a table that fails validation.
func Validate(t *RawTable) error {
	missing := MissingColumns(t)
	if len(missing) == 0 {
		return nil
	}
	return util.NewValidationError("missing required columns", map[string]any{
		"missing_columns": missing,
	})
}
