package model

import "encoding/json"

type CaptureType string

const (
	CaptureWebpage CaptureType = "PROCESS_WEBPAGE"
	CaptureUpload  CaptureType = "PROCESS_UPLOADED_FILE"
	CapturePaste   CaptureType = "PROCESS_PASTED_TEXT"
	CaptureVoice   CaptureType = "PROCESS_VOICE_NOTE"
)

// CaptureRequest is the envelope every capture surface sends. The payload is
// decoded into the variant selected by Type; unknown types are rejected at
// dispatch.
type CaptureRequest struct {
	Type    CaptureType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WebpagePayload struct {
	TargetID string `json:"target_id"`
}

type UploadPayload struct {
	ImageData  string `json:"imageData"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type PastePayload struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type AudioData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type VoicePayload struct {
	AudioData  *AudioData `json:"audioData"`
	SpokenLang string     `json:"spokenLang"`
}

// Source type tags carried into the reader session.
const (
	SourceWebpage = "webpage"
	SourceImage   = "image"
	SourceText    = "text"
	SourceVoice   = "voice"
)
