package models

// Tier levels, ordered by ambition.
const (
	Level20  = 20
	Level50  = 50
	Level70  = 70
	Level100 = 100
)

// Levels lists the four tiers in ascending order.
var Levels = []int{Level20, Level50, Level70, Level100}

// IsLevel reports whether n is one of the four tiers.
func IsLevel(n int) bool {
	for _, l := range Levels {
		if l == n {
			return true
		}
	}
	return false
}

// SolutionOption is one proposed development strategy.
type SolutionOption struct {
	// Level is the tier: 20, 50, 70 or 100.
	Level int `json:"level"`
	// Title is the short name of the option.
	Title string `json:"title"`
	// Description summarizes the scope of the option.
	Description string `json:"description"`
	// ExecutiveBenefits describes what management gains (ROI, decisions).
	ExecutiveBenefits string `json:"executiveBenefits"`
	// OperationalBenefits describes what day-to-day staff gain.
	OperationalBenefits string `json:"operationalBenefits"`
	// Technologies is the technical stack in display order.
	Technologies []string `json:"technologies"`
	// DevelopmentTools names the primary tools used to build the option.
	DevelopmentTools string `json:"developmentTools"`
	// Visualization is the overall data presentation strategy.
	Visualization string `json:"visualization"`
	// ConcreteOutputs lists concrete reports, alerts or visualizations.
	ConcreteOutputs []string `json:"concreteOutputs"`
}
