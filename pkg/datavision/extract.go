package datavision

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/ukaji3/datavision-go/pkg/datavision/parser"
	"github.com/xuri/excelize/v2"
)

// SupportedExtensions lists the file extensions accepted for upload.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// CheckFileName rejects file names whose extension is not a supported
// spreadsheet format.
func CheckFileName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (expected one of %s)", ErrInputFormat, filepath.Base(name), strings.Join(SupportedExtensions, ", "))
}

// ExtractPreviewFile checks the extension of path and extracts a preview of
// its first sheet.
func ExtractPreviewFile(path string) (*models.SpreadsheetPreview, error) {
	if err := CheckFileName(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	preview, err := ExtractPreview(bytes.NewReader(data))
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			ee.File = filepath.Base(path)
		}
		return nil, err
	}
	return preview, nil
}

// ExtractPreview decodes a workbook and returns the header row and up to
// models.MaxSampleRows data rows of its first sheet. The header row is the
// first row holding a value; blank rows above it and blank columns left of
// the data are ignored.
func ExtractPreview(r io.Reader) (*models.SpreadsheetPreview, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewExtractionError("", "", fmt.Errorf("%w: %v", ErrParse, err))
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, NewExtractionError("", "", ErrEmptySheet)
	}
	sheetName := sheetList[0]

	rows, err := parser.ReadRows(f, sheetName, models.MaxSampleRows+1)
	if err != nil {
		return nil, NewExtractionError("", sheetName, fmt.Errorf("%w: %v", ErrParse, err))
	}
	if len(rows) == 0 {
		return nil, NewExtractionError("", sheetName, ErrEmptySheet)
	}

	headers := make([]string, len(rows[0].C))
	for i, v := range rows[0].C {
		headers[i] = headerText(v)
	}

	sample := make([][]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sample = append(sample, row.C)
	}

	return &models.SpreadsheetPreview{
		SheetName:  sheetName,
		Headers:    headers,
		SampleRows: sample,
	}, nil
}

func headerText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
