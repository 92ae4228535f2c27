package chat

import (
	"fmt"
	"strings"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// SelectionContext summarizes the selected option for the system
// instruction, or states that nothing is selected yet.
func SelectionContext(selected *models.SolutionOption) string {
	if selected == nil {
		return "User has not selected a specific option yet."
	}
	return fmt.Sprintf("User Selected Option: %s (Level %d%%)\nTools: %s\nVisualization: %s\nConcrete Outputs: %s",
		selected.Title,
		selected.Level,
		selected.DevelopmentTools,
		selected.Visualization,
		strings.Join(selected.ConcreteOutputs, ", "),
	)
}

// BuildSystemInstruction renders the persona, selection context, domain
// vocabulary and answering rules sent with every turn.
func BuildSystemInstruction(selected *models.SolutionOption, language string) string {
	if language == "" {
		language = datavision.DefaultLanguage
	}
	var b strings.Builder
	b.WriteString("You are an AI consultant specializing in energy data management.\n")
	b.WriteString("Context:\n")
	b.WriteString(SelectionContext(selected))
	b.WriteString("\n\nDomain knowledge:\n")
	b.WriteString(datavision.DomainVocabulary)
	b.WriteString("\n\nDuties:\n")
	fmt.Fprintf(&b, "1. Answer in %s, concisely, in a modern and professional tone.\n", language)
	b.WriteString("2. When asked about data quality, focus on checking for empty unit values: an empty unit is a defect, while 0.00 is valid.\n")
	b.WriteString("3. When asked about reports, recommend a dashboard comparing pea_import and pea_export.\n")
	return b.String()
}

// welcomeText greets the user before any option is selected.
func welcomeText() string {
	return "Hello! If you have questions about **the analysis results**, or want help drafting the job description for any part, just ask."
}

// announcementText is appended when the user selects an option.
func announcementText(selected models.SolutionOption) string {
	return fmt.Sprintf("You selected **%s**. Which aspects of %s would you like to know more about?",
		selected.Title, strings.Join(selected.Technologies, ", "))
}

// FallbackText is appended when a chat turn fails.
const FallbackText = "Sorry, the assistant is temporarily unavailable. Please try again."
