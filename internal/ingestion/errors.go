package ingestion

import "errors"

// ErrUnsupportedFormat is returned for uploads that are not plain CSV
// text, such as binary spreadsheet exports.
var ErrUnsupportedFormat = errors.New("unsupported file format: export the sheet as CSV and retry")
