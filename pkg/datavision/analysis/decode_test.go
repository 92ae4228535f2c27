package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

func optionDoc(level int) map[string]any {
	return map[string]any{
		"level":               level,
		"title":               "Option",
		"description":         "desc",
		"executiveBenefits":   "exec",
		"operationalBenefits": "ops",
		"technologies":        []string{"Go", "Grafana"},
		"developmentTools":    "Go",
		"visualization":       "dashboards",
		"concreteOutputs":     []string{"alert", "dashboard", "map"},
	}
}

func payload(t *testing.T, opts ...map[string]any) string {
	t.Helper()
	if opts == nil {
		opts = []map[string]any{}
	}
	b, err := json.Marshal(map[string]any{"options": opts})
	require.NoError(t, err)
	return string(b)
}

func TestDecodeResultDefaultPayload(t *testing.T) {
	result, err := DecodeResult(llm.DefaultFakePayload())
	require.NoError(t, err)
	require.Len(t, result.Options, 4)

	for i, level := range models.Levels {
		assert.Equal(t, level, result.Options[i].Level)
		assert.GreaterOrEqual(t, len(result.Options[i].ConcreteOutputs), MinConcreteOutputs)
	}
}

func TestDecodeResultRoundTrip(t *testing.T) {
	want := []models.SolutionOption{
		{
			Level:               70,
			Title:               "Energy Balance Web Platform",
			Description:         "Web ingestion with validation",
			ExecutiveBenefits:   "Import/export trends",
			OperationalBenefits: "No manual cross-checks",
			Technologies:        []string{"React", "Go", "Go"},
			DevelopmentTools:    "React + Go",
			Visualization:       "Drill-down dashboards",
			ConcreteOutputs:     []string{"Validation report", "Import/export dashboard", "Heatmap", "Trend graph"},
		},
		{
			Level:               20,
			Title:               "Workbook",
			Description:         "Validation rules",
			ExecutiveBenefits:   "Cheap",
			OperationalBenefits: "Highlights",
			Technologies:        []string{"Excel"},
			DevelopmentTools:    "Excel Macro",
			Visualization:       "Pivot charts",
			ConcreteOutputs:     []string{"a", "b", "c"},
		},
	}
	raw, err := json.Marshal(models.AnalysisResult{Options: want})
	require.NoError(t, err)

	result, err := DecodeResult(string(raw))
	require.NoError(t, err)
	assert.Equal(t, want, result.Options)
}

func TestDecodeResultMissingField(t *testing.T) {
	for _, field := range optionFields {
		t.Run(field, func(t *testing.T) {
			broken := optionDoc(70)
			delete(broken, field)
			raw := payload(t, optionDoc(20), optionDoc(50), broken, optionDoc(100))

			result, err := DecodeResult(raw)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, datavision.ErrSchemaValidation)
		})
	}
}

func TestDecodeResultRejects(t *testing.T) {
	wrongLevel := optionDoc(42)
	fewOutputs := optionDoc(50)
	fewOutputs["concreteOutputs"] = []string{"one", "two"}
	wrongType := optionDoc(20)
	wrongType["technologies"] = "Go, React"
	nullTitle := optionDoc(100)
	nullTitle["title"] = nil

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "options: none"},
		{"truncated", `{"options":[{"level":20`},
		{"missing options", `{}`},
		{"empty options", payload(t)},
		{"unknown level", payload(t, wrongLevel)},
		{"too few outputs", payload(t, fewOutputs)},
		{"wrong type", payload(t, wrongType)},
		{"null field", payload(t, nullTitle)},
		{"trailing data", payload(t, optionDoc(20)) + `{"options":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodeResult(tt.raw)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, datavision.ErrSchemaValidation)

			var ve *datavision.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestDecodeResultEmpty(t *testing.T) {
	for _, raw := range []string{"", "  \n"} {
		result, err := DecodeResult(raw)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, datavision.ErrEmptyResponse)
	}
}

func TestDecodeResultKeepsOrderAndPartialTiers(t *testing.T) {
	result, err := DecodeResult(payload(t, optionDoc(100), optionDoc(20)))
	require.NoError(t, err)
	require.Len(t, result.Options, 2)
	assert.Equal(t, 100, result.Options[0].Level)
	assert.Equal(t, 20, result.Options[1].Level)

	opt, ok := result.Option(20)
	assert.True(t, ok)
	assert.Equal(t, 20, opt.Level)
	_, ok = result.Option(50)
	assert.False(t, ok)
}
