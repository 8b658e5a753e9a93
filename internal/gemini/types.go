package gemini

import "encoding/json"

// Part is one content fragment of a turn: inline text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Content is one turn of a conversation. Role is empty for single-turn calls.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

// The response types accept both snake_case and camelCase field spellings the
// endpoint has used over time; only the fields the caller inspects are kept.
type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
	Error          *apiErrorBody   `json:"error"`
}

type candidate struct {
	Content      *candidateContent `json:"content"`
	FinishReason string            `json:"finishReason"`
}

type candidateContent struct {
	Parts []respPart `json:"parts"`
}

type respPart struct {
	Text string `json:"text"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiErrorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}
