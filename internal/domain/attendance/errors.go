package attendance

import "errors"

var (
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrDailyEntryNotFound    = errors.New("attendance entry not found for date")
	ErrUnsupportedFileFormat = errors.New("unsupported attendance file format")
	ErrEmptySheet            = errors.New("attendance sheet has no data rows")
	ErrMissingColumn         = errors.New("attendance sheet is missing a required column")
)
