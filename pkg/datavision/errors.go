package datavision

import (
	"errors"
	"fmt"
)

// ErrInputFormat indicates the file is not a recognized spreadsheet format.
var ErrInputFormat = errors.New("unrecognized spreadsheet format")

// ErrParse indicates the input bytes could not be decoded as a workbook.
var ErrParse = errors.New("spreadsheet could not be decoded")

// ErrEmptySheet indicates the first sheet of the workbook has no rows.
var ErrEmptySheet = errors.New("file appears to be empty")

// ErrEmptyResponse indicates the model returned no analysis payload.
var ErrEmptyResponse = errors.New("no analysis payload returned by the model")

// ErrSchemaValidation indicates the analysis payload does not match the
// required option shape.
var ErrSchemaValidation = errors.New("analysis payload does not match the option schema")

// ErrChatTransport indicates a streaming chat exchange could not be
// established or broke mid-stream.
var ErrChatTransport = errors.New("chat transport failed")

// ErrTurnInFlight indicates a chat turn was sent while another is streaming.
var ErrTurnInFlight = errors.New("a chat turn is already in progress")

// ErrUnknownLevel indicates no option with the requested tier exists.
var ErrUnknownLevel = errors.New("no option for the requested level")

// ErrNoResult indicates an operation needs an analysis result that has not
// been produced yet.
var ErrNoResult = errors.New("no analysis result available")

// ExtractionError represents an error while reading a workbook preview.
type ExtractionError struct {
	File  string
	Sheet string
	Err   error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Sheet != "":
		return fmt.Sprintf("extraction error in %q (sheet %q): %v", e.File, e.Sheet, e.Err)
	case e.File != "":
		return fmt.Sprintf("extraction error in %q: %v", e.File, e.Err)
	default:
		return fmt.Sprintf("extraction error: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(file, sheet string, err error) *ExtractionError {
	return &ExtractionError{
		File:  file,
		Sheet: sheet,
		Err:   err,
	}
}

// ValidationError describes why an analysis payload was rejected. It matches
// ErrSchemaValidation with errors.Is.
type ValidationError struct {
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", ErrSchemaValidation, e.Detail)
	}
	return fmt.Sprintf("%v: %s: %v", ErrSchemaValidation, e.Detail, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// TransportError wraps a failure of the streaming chat exchange. It matches
// ErrChatTransport with errors.Is.
type TransportError struct {
	// Op is "open" when the stream could not be established and "stream"
	// when it broke after opening.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v (%s): %v", ErrChatTransport, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrChatTransport
}
