package llm

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"sync"
)

// FakeClient returns deterministic payloads for offline runs and tests.
type FakeClient struct {
	// Payload is returned by GenerateStructured. NewFakeClient sets it to a
	// four-tier energy metering analysis.
	Payload string
	// GenerateErr, when set, is returned by GenerateStructured.
	GenerateErr error
	// Fragments are streamed by StreamChat. When empty, the reply is derived
	// from the incoming message.
	Fragments []string
	// OpenErr, when set, is returned by StreamChat before any fragment.
	OpenErr error
	// StreamErr, when set, is yielded after all fragments.
	StreamErr error

	mu       sync.Mutex
	requests []StructuredRequest
	chats    []ChatRequest
}

// NewFakeClient returns a FakeClient with the default analysis payload.
func NewFakeClient() *FakeClient {
	return &FakeClient{Payload: DefaultFakePayload()}
}

// Name identifies the fake backend in logs.
func (f *FakeClient) Name() string { return "FakeLLM" }
// Close is a no-op.
func (f *FakeClient) Close() error { return nil }

// GenerateStructured records req and returns Payload or GenerateErr.
func (f *FakeClient) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.GenerateErr != nil {
		return "", f.GenerateErr
	}
	return f.Payload, nil
}

// StreamChat records req and streams Fragments, or a reply derived from
// the message when none are set.
func (f *FakeClient) StreamChat(ctx context.Context, req ChatRequest) (iter.Seq2[string, error], error) {
	f.mu.Lock()
	f.chats = append(f.chats, req)
	f.mu.Unlock()
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	fragments := f.Fragments
	if len(fragments) == 0 {
		fragments = splitReply("Noted: " + req.Message)
	}
	streamErr := f.StreamErr
	return func(yield func(string, error) bool) {
		for _, frag := range fragments {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}, nil
}

// Requests returns the structured requests received so far.
func (f *FakeClient) Requests() []StructuredRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StructuredRequest(nil), f.requests...)
}

// Chats returns the chat requests received so far.
func (f *FakeClient) Chats() []ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChatRequest(nil), f.chats...)
}

// splitReply cuts text into word-sized fragments, keeping separators.
func splitReply(text string) []string {
	words := strings.SplitAfter(text, " ")
	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// DefaultFakePayload returns a valid four-tier analysis payload.
func DefaultFakePayload() string {
	type option struct {
		Level               int      `json:"level"`
		Title               string   `json:"title"`
		Description         string   `json:"description"`
		ExecutiveBenefits   string   `json:"executiveBenefits"`
		OperationalBenefits string   `json:"operationalBenefits"`
		Technologies        []string `json:"technologies"`
		DevelopmentTools    string   `json:"developmentTools"`
		Visualization       string   `json:"visualization"`
		ConcreteOutputs     []string `json:"concreteOutputs"`
	}
	options := []option{
		{
			Level:               20,
			Title:               "Validated Excel Workbook",
			Description:         "Add validation rules and a summary sheet to the existing meter workbook.",
			ExecutiveBenefits:   "Monthly import/export totals without extra tooling cost.",
			OperationalBenefits: "Empty unit cells are highlighted while typing; 0.00 is accepted.",
			Technologies:        []string{"Excel", "VBA"},
			DevelopmentTools:    "Excel Macro",
			Visualization:       "Conditional formatting and pivot charts.",
			ConcreteOutputs: []string{
				"Highlight rule for empty unit values",
				"Pivot chart of pea_import vs pea_export",
				"Report of stations with incomplete readings",
			},
		},
		{
			Level:               50,
			Title:               "Low-code Meter Reading App",
			Description:         "Capture readings per station in a form app backed by a shared list.",
			ExecutiveBenefits:   "Near real-time view of energy balance per station.",
			OperationalBenefits: "Mobile entry with mandatory unit field and instant alerts.",
			Technologies:        []string{"Power Apps", "Power Automate", "SharePoint"},
			DevelopmentTools:    "Power Apps",
			Visualization:       "Power BI report embedded in the app.",
			ConcreteOutputs: []string{
				"Line Notify alert when a unit reading is empty",
				"Dashboard comparing pea_import vs pea_export",
				"Daily Webex summary of missing stations",
			},
		},
		{
			Level:               70,
			Title:               "Energy Balance Web Platform",
			Description:         "A web application ingesting meter files with validation and dashboards.",
			ExecutiveBenefits:   "Load balancing decisions backed by import/export trends.",
			OperationalBenefits: "Automatic file checks replace manual cross-checking.",
			Technologies:        []string{"React", "Go", "PostgreSQL", "Grafana"},
			DevelopmentTools:    "React + Go API",
			Visualization:       "Interactive dashboards with drill-down per station.",
			ConcreteOutputs: []string{
				"Validation report for empty unit values",
				"Import/export comparison dashboard",
				"Heatmap of high-load stations",
				"Trend graph of consumption per station",
			},
		},
		{
			Level:               100,
			Title:               "Smart Grid Intelligence Hub",
			Description:         "Streaming ingestion, anomaly detection and forecasting across all stations.",
			ExecutiveBenefits:   "Forecast-driven purchasing from PEA and reduced peak costs.",
			OperationalBenefits: "Anomalies surface automatically with station location context.",
			Technologies:        []string{"Kafka", "Python", "TimescaleDB", "Mapbox"},
			DevelopmentTools:    "Python + streaming platform",
			Visualization:       "Geospatial command center with live map layers.",
			ConcreteOutputs: []string{
				"Live map of station positions and load",
				"Anomaly alerts for missing unit values",
				"Forecast of pea_import demand",
				"Executive energy balance scorecard",
			},
		},
	}
	b, _ := json.Marshal(map[string]any{"options": options})
	return string(b)
}
