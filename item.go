package casepipe

// UploadedItem is one uploaded file, already validated upstream. It is owned
// by a single pipeline invocation; any staged copy is reclaimed when the
// invocation ends, whatever the outcome.
type UploadedItem struct {
	Name      string
	Data      []byte
	MediaType string // declared by the uploader, optional
}

// Segment is a timed slice of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ExtractionResult is the outcome of extracting one item. Exactly one of
// Text or Err is meaningful downstream; an Err never aborts sibling items.
// Lane-specific engines populate different subsets of the optional fields.
type ExtractionResult struct {
	File       string    `json:"file"`
	Lane       Lane      `json:"-"`
	Text       string    `json:"text,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Language   string    `json:"language,omitempty"`
	Raw        string    `json:"raw,omitempty"`
	Segments   []Segment `json:"segments,omitempty"`
	Warning    string    `json:"warning,omitempty"`
	Err        string    `json:"error,omitempty"`

	Accepted  []UseCase `json:"accepted_use_cases"`
	Suggested []UseCase `json:"suggested_use_cases"`
}

// AggregateResult is the merged outcome of one pipeline invocation.
// Accepted and Suggested are flat sequences in lane-then-submission order,
// the concatenation of every item's own lists.
type AggregateResult struct {
	PerLane   map[Lane][]ExtractionResult `json:"results"`
	Accepted  []UseCase                   `json:"accepted_use_cases"`
	Suggested []UseCase                   `json:"suggested_use_cases"`
	Warnings  []string                    `json:"warnings,omitempty"`
}
