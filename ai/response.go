// response.go defines the structured AI response — a closed tagged
// variant over five kinds — and the normalizer that turns a provider's
// raw object into the canonical shape.
//
// The wire shape (fields may be absent) and the internal shape (every
// field present, null when inapplicable) are deliberately separate;
// Normalize is the single translation boundary between them. "Absent"
// never leaks past it.
package ai

// ResponseKind discriminates the structured response variants.
type ResponseKind string

const (
	KindQuery   ResponseKind = "query"
	KindChart   ResponseKind = "chart"
	KindMetric  ResponseKind = "metric"
	KindSchema  ResponseKind = "schema"
	KindMessage ResponseKind = "message"
)

// ChartType is the rendering hint for chart responses.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

// MetricFormat is the display format for metric responses.
type MetricFormat string

const (
	FormatNumber   MetricFormat = "number"
	FormatCurrency MetricFormat = "currency"
	FormatPercent  MetricFormat = "percent"
	FormatDuration MetricFormat = "duration"
)

// TableSummary is one table entry in a schema-kind response.
type TableSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns,omitempty"`
}

// StructuredResponse is the canonical per-turn result. Every field is
// always present when marshalled; fields irrelevant to the active kind
// are explicitly null, never absent. No omitempty here — that is the
// contract.
type StructuredResponse struct {
	Kind    ResponseKind `json:"kind"`
	Message string       `json:"message"`

	SQL                  *string       `json:"sql"`
	Explanation          *string       `json:"explanation"`
	Warning              *string       `json:"warning"`
	RequiresConfirmation *bool         `json:"requiresConfirmation"`
	Title                *string       `json:"title"`
	ChartType            *ChartType    `json:"chartType"`
	XKey                 *string       `json:"xKey"`
	YKeys                []string      `json:"yKeys"`
	Description          *string       `json:"description"`
	Label                *string       `json:"label"`
	Format               *MetricFormat `json:"format"`
	Tables               []TableSummary `json:"tables"`
}

// RawResponse is the wire-shape object decoded from a provider's
// structured output. Fields may be absent (nil) or null.
type RawResponse struct {
	Kind    string  `json:"kind"`
	Message *string `json:"message"`

	SQL                  *string        `json:"sql"`
	Explanation          *string        `json:"explanation"`
	Warning              *string        `json:"warning"`
	RequiresConfirmation *bool          `json:"requiresConfirmation"`
	Title                *string        `json:"title"`
	ChartType            *string        `json:"chartType"`
	XKey                 *string        `json:"xKey"`
	YKeys                []string       `json:"yKeys"`
	Description          *string        `json:"description"`
	Label                *string        `json:"label"`
	Format               *string        `json:"format"`
	Tables               []TableSummary `json:"tables"`
}

// Normalize reconciles a raw provider object into the canonical shape.
// Pure and total: absent fields become null, fields outside the active
// kind's allowed set are forced null, and an unrecognized kind degrades
// to a message response. Malformed kinds are otherwise rejected
// upstream by the generation call's schema constraint.
func Normalize(raw RawResponse) StructuredResponse {
	out := StructuredResponse{Kind: ResponseKind(raw.Kind)}
	if raw.Message != nil {
		out.Message = *raw.Message
	}

	switch out.Kind {
	case KindQuery:
		out.SQL = raw.SQL
		out.Explanation = raw.Explanation
		out.Warning = raw.Warning
		out.RequiresConfirmation = raw.RequiresConfirmation

	case KindChart:
		out.SQL = raw.SQL
		out.Title = raw.Title
		out.ChartType = chartType(raw.ChartType)
		out.XKey = raw.XKey
		out.YKeys = raw.YKeys
		out.Description = raw.Description

	case KindMetric:
		out.SQL = raw.SQL
		out.Label = raw.Label
		out.Format = metricFormat(raw.Format)

	case KindSchema:
		out.Tables = raw.Tables

	case KindMessage:
		// message only

	default:
		out.Kind = KindMessage
	}

	return out
}

func chartType(v *string) *ChartType {
	if v == nil {
		return nil
	}
	ct := ChartType(*v)
	return &ct
}

func metricFormat(v *string) *MetricFormat {
	if v == nil {
		return nil
	}
	mf := MetricFormat(*v)
	return &mf
}
