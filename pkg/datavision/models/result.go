package models

// AnalysisResult holds the options accepted from one analysis response,
// in the order the model returned them.
type AnalysisResult struct {
	Options []SolutionOption `json:"options"`
}

// Option returns the first option tagged with level.
func (r *AnalysisResult) Option(level int) (SolutionOption, bool) {
	if r == nil {
		return SolutionOption{}, false
	}
	for _, opt := range r.Options {
		if opt.Level == level {
			return opt, true
		}
	}
	return SolutionOption{}, false
}
