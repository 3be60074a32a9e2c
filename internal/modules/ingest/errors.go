package ingest

import (
	"errors"
	"fmt"
)

// File-level errors abort ingestion of the whole file. Row-level problems
// never surface here; they are counted in ParseStats and logged.
var (
	// ErrUnsupportedFormat - file extension is not .txt, .csv, .xlsx or .xls.
	// Raised before any parsing attempt.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptySheet - spreadsheet has fewer than two rows (header + data)
	ErrEmptySheet = errors.New("sheet has no data rows")
)

// MissingColumnError - no header matched the alias table for a required
// logical field (date, type or amount). Fatal for the whole file.
type MissingColumnError struct {
	Field string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required field: no column matched %q", e.Field)
}

// IsMissingColumn reports whether err is a MissingColumnError.
func IsMissingColumn(err error) bool {
	var mce *MissingColumnError
	return errors.As(err, &mce)
}

// IsFileError reports whether err is one of the file-level parse failures,
// i.e. the uploaded file itself is unusable rather than the server broken.
func IsFileError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptySheet) ||
		IsMissingColumn(err)
}
