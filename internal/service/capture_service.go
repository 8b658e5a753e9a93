package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/badge"
	"github.com/weilunc/clipread/internal/devtool"
	"github.com/weilunc/clipread/internal/gemini"
	"github.com/weilunc/clipread/internal/locale"
	"github.com/weilunc/clipread/internal/mailbox"
	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/pkg/errs"
)

// Recognized text shorter than these thresholds is treated as a failed
// capture, not a success.
const (
	minWebpageTextRunes = 50
	minUploadTextRunes  = 10
)

// Gateway is the slice of the gemini client the capture paths use.
type Gateway interface {
	GenerateParts(ctx context.Context, apiKey, model string, parts []gemini.Part) (string, error)
	Generate(ctx context.Context, apiKey, model string, contents []gemini.Content) (string, error)
}

// Debugger is the slice of the devtool client the webpage path uses.
type Debugger interface {
	ResolveTarget(ctx context.Context, targetID string) (devtool.TargetInfo, error)
	Attach(ctx context.Context, target devtool.TargetInfo) error
	CaptureScreenshot(ctx context.Context, targetID string) (string, error)
}

// ReaderRef points the requesting surface at the freshly filled handoff slot.
type ReaderRef struct {
	ID  string `json:"reader_id"`
	URL string `json:"reader_url"`
}

// CaptureService is the message router: it owns the dispatch table from
// capture-request tags to handlers, writes results into the handoff mailbox
// and fires the best-effort activity log. Requests are not queued or
// serialized against each other.
type CaptureService struct {
	settings *SettingsService
	gateway  Gateway
	debugger Debugger
	box      *mailbox.Box
	badges   *badge.Registry
	activity *ActivityLogger
	uiLocale string
}

func NewCaptureService(settings *SettingsService, gateway Gateway, debugger Debugger, box *mailbox.Box, badges *badge.Registry, activity *ActivityLogger, uiLocale string) *CaptureService {
	return &CaptureService{
		settings: settings,
		gateway:  gateway,
		debugger: debugger,
		box:      box,
		badges:   badges,
		activity: activity,
		uiLocale: uiLocale,
	}
}

func (s *CaptureService) Dispatch(ctx context.Context, req model.CaptureRequest) (ReaderRef, error) {
	switch req.Type {
	case model.CapturePaste:
		var payload model.PastePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return ReaderRef{}, err
		}
		return s.processPastedText(ctx, payload)
	case model.CaptureUpload:
		var payload model.UploadPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return ReaderRef{}, err
		}
		return s.processUpload(ctx, payload)
	case model.CaptureVoice:
		var payload model.VoicePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return ReaderRef{}, err
		}
		return s.processVoice(ctx, payload)
	case model.CaptureWebpage:
		var payload model.WebpagePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return ReaderRef{}, err
		}
		return s.processWebpage(ctx, payload)
	default:
		return ReaderRef{}, fmt.Errorf("%w: unknown capture type %q", errs.ErrInvalidInput, req.Type)
	}
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: malformed payload", errs.ErrInvalidInput)
	}
	return nil
}

func (s *CaptureService) processPastedText(ctx context.Context, payload model.PastePayload) (ReaderRef, error) {
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return ReaderRef{}, fmt.Errorf("%w: empty or blank text", errs.ErrInvalidInput)
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return ReaderRef{}, err
	}
	target := locale.ResolveTarget(payload.TargetLang, settings.DisplayLanguage, s.uiLocale)
	return s.finish(ctx, "paste", "pasted_text", text, target, model.SourceText), nil
}

func (s *CaptureService) processUpload(ctx context.Context, payload model.UploadPayload) (ReaderRef, error) {
	if payload.ImageData == "" {
		return ReaderRef{}, fmt.Errorf("%w: no image data provided", errs.ErrInvalidInput)
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return ReaderRef{}, err
	}
	text, err := s.gateway.GenerateParts(ctx, settings.GeminiAPIKey, settings.TranslationModel,
		gemini.VisionParts(payload.ImageData, "", payload.SourceLang))
	if err != nil {
		return ReaderRef{}, err
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= minUploadTextRunes {
		return ReaderRef{}, fmt.Errorf("%w: insufficient text recognized", errs.ErrCapture)
	}
	target := locale.ResolveTarget(payload.TargetLang, settings.DisplayLanguage, s.uiLocale)
	return s.finish(ctx, "upload_ocr", "uploaded_file", text, target, model.SourceImage), nil
}

func (s *CaptureService) processVoice(ctx context.Context, payload model.VoicePayload) (ReaderRef, error) {
	if payload.AudioData == nil || payload.AudioData.Data == "" {
		return ReaderRef{}, fmt.Errorf("%w: no audio data provided", errs.ErrInvalidInput)
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return ReaderRef{}, err
	}
	text, err := s.gateway.GenerateParts(ctx, settings.GeminiAPIKey, settings.TranslationModel,
		gemini.SpeechParts(payload.AudioData.Data, payload.AudioData.MimeType, payload.SpokenLang))
	if err != nil {
		return ReaderRef{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ReaderRef{}, fmt.Errorf("%w: no speech recognized", errs.ErrCapture)
	}
	return s.finish(ctx, "voice_note", "voice_input", text, "English", model.SourceVoice), nil
}

func (s *CaptureService) processWebpage(ctx context.Context, payload model.WebpagePayload) (ReaderRef, error) {
	target, err := s.debugger.ResolveTarget(ctx, payload.TargetID)
	if err != nil {
		return ReaderRef{}, fmt.Errorf("%w: %v", errs.ErrCapture, err)
	}
	s.badges.Set(target.ID, badge.Attaching)
	if err := s.debugger.Attach(ctx, target); err != nil {
		s.badges.Set(target.ID, badge.Failure)
		return ReaderRef{}, fmt.Errorf("%w: failed to attach debugger, reload the page and retry", errs.ErrCapture)
	}

	s.badges.Set(target.ID, badge.Capturing)
	shot, err := s.debugger.CaptureScreenshot(ctx, target.ID)
	if err != nil {
		s.badges.Set(target.ID, badge.Failure)
		return ReaderRef{}, fmt.Errorf("%w: screenshot capture failed: %v", errs.ErrCapture, err)
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.badges.Set(target.ID, badge.Failure)
		return ReaderRef{}, err
	}
	s.badges.Set(target.ID, badge.Processing)
	text, err := s.gateway.GenerateParts(ctx, settings.GeminiAPIKey, settings.TranslationModel,
		gemini.VisionParts(shot, "image/jpeg", ""))
	if err != nil {
		s.badges.Set(target.ID, badge.Failure)
		return ReaderRef{}, err
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= minWebpageTextRunes {
		s.badges.Set(target.ID, badge.Failure)
		return ReaderRef{}, fmt.Errorf("%w: insufficient text recognized", errs.ErrCapture)
	}
	ref := s.finish(ctx, "webpage_ocr", target.URL, text, "Traditional Chinese", model.SourceWebpage)
	s.badges.Set(target.ID, badge.Success)
	return ref, nil
}

// finish runs the ordered post-steps shared by every successful capture: the
// best-effort activity log, then the handoff slot the reader surface opens.
func (s *CaptureService) finish(ctx context.Context, eventType, sourceURL, text, targetLang, sourceType string) ReaderRef {
	s.activity.Log(ctx, eventType, sourceURL, text)
	id := s.box.Put(mailbox.Result{Text: text, TargetLang: targetLang, SourceType: sourceType})
	logutil.GetLogger(ctx).Info("capture complete",
		zap.String("source_type", sourceType),
		zap.String("target_lang", targetLang),
		zap.Int("text_len", len(text)))
	return ReaderRef{ID: id, URL: "/api/v1/reader/" + id}
}
