// Package datavision extracts bounded spreadsheet previews and holds the
// shared options and errors of the analysis pipeline.
package datavision

// DefaultTemperature keeps analysis output close to deterministic.
const DefaultTemperature float32 = 0.5

// DefaultLanguage is the language the model answers in.
const DefaultLanguage = "Thai"

// Options configures analysis and chat behavior.
type Options struct {
	// Temperature is the sampling temperature of analysis requests.
	// If nil, DefaultTemperature is used.
	Temperature *float32
	// Language is the language of free-text answers.
	// If empty, DefaultLanguage is used.
	Language string
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{}
}

// ResponseTemperature returns the temperature for analysis requests.
func (o Options) ResponseTemperature() float32 {
	if o.Temperature != nil {
		return *o.Temperature
	}
	return DefaultTemperature
}

// ResponseLanguage returns the language of free-text answers.
func (o Options) ResponseLanguage() string {
	if o.Language != "" {
		return o.Language
	}
	return DefaultLanguage
}
