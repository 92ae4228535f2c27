package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// marshalCompact renders v as single-line JSON without HTML escaping.
func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// BuildPrompt renders the analysis instruction for a preview. Headers and
// sample rows are embedded as JSON.
func BuildPrompt(preview *models.SpreadsheetPreview, language string) (string, error) {
	if preview == nil {
		return "", fmt.Errorf("analysis: preview is nil")
	}
	headers := preview.Headers
	if headers == nil {
		headers = []string{}
	}
	rows := preview.SampleRows
	if rows == nil {
		rows = [][]any{}
	}
	headersJSON, err := marshalCompact(headers)
	if err != nil {
		return "", err
	}
	rowsJSON, err := marshalCompact(rows)
	if err != nil {
		return "", err
	}
	if language == "" {
		language = datavision.DefaultLanguage
	}

	var b strings.Builder
	b.WriteString("Role: Senior Chief Technology Officer & Data Strategist\n")
	b.WriteString("Task: Analyze the structure of the data from an Excel file and propose 4 options for software development, one per ambition level.\n\n")
	fmt.Fprintf(&b, "Data Headers: %s\n", headersJSON)
	fmt.Fprintf(&b, "Sample Data: %s\n\n", rowsJSON)

	b.WriteString("*** DOMAIN KNOWLEDGE (business rules and vocabulary) ***\n")
	b.WriteString(datavision.DomainVocabulary)
	b.WriteString("\n\n")

	percents := make([]string, len(models.Levels))
	tags := make([]string, len(models.Levels))
	for i, l := range models.Levels {
		percents[i] = fmt.Sprintf("%d%%", l)
		tags[i] = fmt.Sprint(l)
	}
	fmt.Fprintf(&b, "Propose exactly 4 options (%s), setting each option's level to %s. Every option must fill in all of the following:\n\n",
		strings.Join(percents, ", "), strings.Join(tags, ", "))
	b.WriteString("1. Executive Benefits: what management gains, e.g. load balancing, lower costs from import/export analysis.\n")
	b.WriteString("2. Operational Benefits: how daily work gets easier, e.g. alerts when a unit value is empty, recording 0.00 correctly.\n")
	b.WriteString("3. Development Tools: the specific tools used to build it.\n")
	b.WriteString("4. Visualization Strategy: the overall presentation approach.\n")
	fmt.Fprintf(&b, "5. Concrete Outputs (most important): at least %d-4 concrete reports, alerts or visualizations suited to the data, chosen by relevance, e.g.:\n", MinConcreteOutputs)
	b.WriteString("   - Validation: an instant alert when a unit value is empty, a report of stations with incomplete data\n")
	b.WriteString("   - Energy balance: a dashboard comparing pea_import vs pea_export, a trend graph of usage per station\n")
	b.WriteString("   - Map: a heatmap of high-load stations, a map of station locations\n")
	b.WriteString("6. Technologies: the technical stack.\n\n")
	fmt.Fprintf(&b, "Write all free-text fields in %s.\n", language)
	return b.String(), nil
}
