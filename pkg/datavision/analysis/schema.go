package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// optionFields lists the nine required option fields in display order.
var optionFields = []string{
	"level",
	"title",
	"description",
	"executiveBenefits",
	"operationalBenefits",
	"technologies",
	"developmentTools",
	"visualization",
	"concreteOutputs",
}

// MinConcreteOutputs is the minimum number of concrete outputs per option.
const MinConcreteOutputs = 3

const schemaURL = "https://datavision.schemas.local/analysis/result.schema.json"

// ResponseSchema returns the output schema sent with the analysis request:
// an object with one "options" array whose items carry all nine fields.
func ResponseSchema() map[string]any {
	str := func(desc string) map[string]any {
		s := map[string]any{"type": "string"}
		if desc != "" {
			s["description"] = desc
		}
		return s
	}
	strList := func(desc string, minItems int) map[string]any {
		s := map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
		if desc != "" {
			s["description"] = desc
		}
		if minItems > 0 {
			s["minItems"] = minItems
		}
		return s
	}

	option := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level":               map[string]any{"type": "integer", "description": "20, 50, 70, or 100"},
			"title":               str(""),
			"description":         str(""),
			"executiveBenefits":   str("Benefits for executives: ROI and decision making"),
			"operationalBenefits": str("Benefits for operators: simplicity and speed"),
			"technologies":        strList("", 0),
			"developmentTools":    str("Main tools used to build it, e.g. Excel Macro, Power Apps, React, Python or an off-the-shelf platform"),
			"visualization":       str("Overall data visualization strategy"),
			"concreteOutputs": strList("At least 3-4 concrete outputs, e.g. a heatmap of station load, "+
				"a dashboard comparing pea_import vs pea_export, an instant alert when a unit value is empty", MinConcreteOutputs),
		},
		"required": append([]string(nil), optionFields...),
		"x-order":  append([]string(nil), optionFields...),
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type":     "array",
				"items":    option,
				"minItems": 1,
			},
		},
		"required": []string{"options"},
	}
}

// validationSchema returns ResponseSchema tightened for post-hoc checks:
// levels must be one of the four tiers.
func validationSchema() map[string]any {
	s := ResponseSchema()
	opts := s["properties"].(map[string]any)["options"].(map[string]any)
	item := opts["items"].(map[string]any)
	props := item["properties"].(map[string]any)

	levels := make([]any, len(models.Levels))
	for i, l := range models.Levels {
		levels[i] = l
	}
	props["level"] = map[string]any{"type": "integer", "enum": levels}
	delete(item, "x-order")
	s["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	return s
}

// compileValidator compiles the validation schema.
func compileValidator() (*jsonschema.Schema, error) {
	doc, err := json.Marshal(validationSchema())
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(string(doc))); err != nil {
		return nil, fmt.Errorf("analysis schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("analysis schema compile failed: %w", err)
	}
	return compiled, nil
}
