package model

// ActivityEvent is the best-effort usage record forwarded to the optional
// external log sink.
type ActivityEvent struct {
	Timestamp    string `json:"timestamp"`
	Type         string `json:"type"`
	SourceURL    string `json:"sourceUrl"`
	OriginalText string `json:"originalText"`
}
