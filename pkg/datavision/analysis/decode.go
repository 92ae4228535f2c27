package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

var defaultValidator = sync.OnceValues(compileValidator)

// DecodeResult validates raw against the option schema and decodes it. A
// payload with any malformed option is rejected as a whole; nothing is
// repaired or defaulted.
func DecodeResult(raw string) (*models.AnalysisResult, error) {
	validator, err := defaultValidator()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, datavision.ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &datavision.ValidationError{Detail: "payload is not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &datavision.ValidationError{Detail: "unexpected data after JSON payload"}
	}
	if err := validator.Validate(doc); err != nil {
		return nil, &datavision.ValidationError{Detail: "payload does not match the option schema", Err: err}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &datavision.ValidationError{Detail: "payload could not be decoded", Err: err}
	}
	return &result, nil
}
