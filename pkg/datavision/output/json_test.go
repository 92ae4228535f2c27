package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

func TestToJSON(t *testing.T) {
	preview := &models.SpreadsheetPreview{
		Headers:    []string{"station", "pea_import"},
		SampleRows: [][]any{{"A&B", int64(0)}, {nil, 1.5}},
	}

	got, err := ToJSON(preview, false)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	want := `{"headers":["station","pea_import"],"sampleData":[["A&B",0],[null,1.5]]}`
	if string(got) != want {
		t.Errorf("ToJSON() = %s, want %s", got, want)
	}

	pretty, err := ToJSON(preview, true)
	if err != nil {
		t.Fatalf("ToJSON(pretty) error = %v", err)
	}
	if len(pretty) <= len(got) || pretty[len(pretty)-1] != '}' {
		t.Errorf("ToJSON(pretty) = %s", pretty)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteFile(path, map[string]int{"level": 70}, false); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\"level\":70}\n" {
		t.Errorf("file = %q", data)
	}
}
