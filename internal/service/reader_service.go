package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/filestore"
	"github.com/weilunc/clipread/internal/gemini"
	"github.com/weilunc/clipread/internal/mailbox"
	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/pkg/errs"
)

const exportDelimiter = "----------------------------------------"

type paragraphState int

const (
	stateUntranslated paragraphState = iota
	stateTranslating
	stateTranslated
	stateFailed
)

func (s paragraphState) String() string {
	switch s {
	case stateTranslating:
		return "translating"
	case stateTranslated:
		return "translated"
	case stateFailed:
		return "translation-failed"
	default:
		return "untranslated"
	}
}

type paragraph struct {
	text        string
	state       paragraphState
	translation string
}

type readerSession struct {
	mu         sync.Mutex
	id         string
	targetLang string
	sourceType string
	paragraphs []*paragraph
}

type ParagraphView struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	Status      string `json:"status"`
	Translation string `json:"translation,omitempty"`
}

type ReaderView struct {
	ID         string          `json:"id"`
	TargetLang string          `json:"targetLang"`
	SourceType string          `json:"sourceType"`
	VoiceTool  bool            `json:"voiceTool"`
	Paragraphs []ParagraphView `json:"paragraphs"`
}

// ReaderService consumes handoff slots into server-side reading sessions and
// serves on-demand paragraph translation. Translations are cached so
// toggling a paragraph off and on again does not re-pay the API call.
type ReaderService struct {
	box      *mailbox.Box
	settings *SettingsService
	gateway  Gateway
	store    filestore.Store
	cache    *expirable.LRU[string, string]

	mu       sync.Mutex
	sessions map[string]*readerSession
}

func NewReaderService(box *mailbox.Box, settings *SettingsService, gateway Gateway, store filestore.Store) *ReaderService {
	return &ReaderService{
		box:      box,
		settings: settings,
		gateway:  gateway,
		store:    store,
		cache:    expirable.NewLRU[string, string](10000, nil, 2*time.Hour),
		sessions: make(map[string]*readerSession),
	}
}

// Open consumes the slot exactly once and materializes the reading session.
// Re-opening the same id returns the live session (a refresh), never the
// slot: a second consumer can observe only the session this reader created.
func (s *ReaderService) Open(ctx context.Context, id string) (ReaderView, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return sess.view(), nil
	}
	s.mu.Unlock()

	res, ok := s.box.Take(id)
	if !ok {
		return ReaderView{}, fmt.Errorf("%w: reading session %s", errs.ErrNotFound, id)
	}
	sess := &readerSession{
		id:         id,
		targetLang: res.TargetLang,
		sourceType: res.SourceType,
		paragraphs: splitParagraphs(res.Text),
	}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	logutil.GetLogger(ctx).Info("reader session opened",
		zap.String("id", id),
		zap.String("source_type", res.SourceType),
		zap.Int("paragraphs", len(sess.paragraphs)))
	return sess.view(), nil
}

func splitParagraphs(text string) []*paragraph {
	var out []*paragraph
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, &paragraph{text: line})
	}
	return out
}

func (s *ReaderService) session(id string) (*readerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: reading session %s", errs.ErrNotFound, id)
	}
	return sess, nil
}

// Translate drives the per-paragraph state machine. On an untranslated
// paragraph it fetches a translation; on a translated (or failed) one it
// removes the translation; while a translation is in flight it refuses.
func (s *ReaderService) Translate(ctx context.Context, id string, idx int) (ParagraphView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ParagraphView{}, err
	}
	sess.mu.Lock()
	if idx < 0 || idx >= len(sess.paragraphs) {
		sess.mu.Unlock()
		return ParagraphView{}, fmt.Errorf("%w: paragraph %d out of range", errs.ErrInvalidInput, idx)
	}
	p := sess.paragraphs[idx]
	switch p.state {
	case stateTranslating:
		sess.mu.Unlock()
		return ParagraphView{}, fmt.Errorf("%w: paragraph %d is being translated", errs.ErrBusy, idx)
	case stateTranslated, stateFailed:
		p.state = stateUntranslated
		p.translation = ""
		view := sess.paragraphView(idx)
		sess.mu.Unlock()
		return view, nil
	}
	p.state = stateTranslating
	text := p.text
	target := sess.targetLang
	sess.mu.Unlock()

	translated, err := s.translateText(ctx, text, target)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		p.state = stateFailed
		p.translation = "Translation failed: " + err.Error()
		logutil.GetLogger(ctx).Warn("paragraph translation failed",
			zap.String("id", id), zap.Int("paragraph", idx), zap.Error(err))
	} else {
		p.state = stateTranslated
		p.translation = translated
	}
	return sess.paragraphView(idx), nil
}

func (s *ReaderService) translateText(ctx context.Context, text, target string) (string, error) {
	key := translationCacheKey(text, target)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", err
	}
	out, err := s.gateway.GenerateParts(ctx, settings.GeminiAPIKey, settings.TranslationModel,
		[]gemini.Part{{Text: gemini.TranslationPrompt(text, target)}})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	s.cache.Add(key, out)
	return out, nil
}

func translationCacheKey(text, target string) string {
	hash := sha256.Sum256([]byte(target + "|" + text))
	return hex.EncodeToString(hash[:])
}

// SetTargetLanguage switches the session's translation target and discards
// every shown translation; the originals stay untouched.
func (s *ReaderService) SetTargetLanguage(id, targetLang string) (ReaderView, error) {
	if strings.TrimSpace(targetLang) == "" {
		return ReaderView{}, fmt.Errorf("%w: target language is required", errs.ErrInvalidInput)
	}
	sess, err := s.session(id)
	if err != nil {
		return ReaderView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.targetLang = targetLang
	for _, p := range sess.paragraphs {
		if p.state != stateTranslating {
			p.state = stateUntranslated
			p.translation = ""
		}
	}
	return sess.viewLocked(), nil
}

// TranslateAll translates the whole session text in one call, used by the
// voice-note translation tool.
func (s *ReaderService) TranslateAll(ctx context.Context, id, targetLang string) (string, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	lines := make([]string, 0, len(sess.paragraphs))
	for _, p := range sess.paragraphs {
		lines = append(lines, p.text)
	}
	if targetLang == "" {
		targetLang = sess.targetLang
	}
	sess.mu.Unlock()
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: session has no text", errs.ErrInvalidInput)
	}
	return s.translateText(ctx, strings.Join(lines, "\n"), targetLang)
}

// Export renders the session as plain text, original paragraphs interleaved
// with their translations, and archives it in the export store.
func (s *ReaderService) Export(ctx context.Context, id string) (string, string, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", "", err
	}
	sess.mu.Lock()
	var b strings.Builder
	for i, p := range sess.paragraphs {
		fmt.Fprintf(&b, "[Original %d]\n%s\n\n", i+1, p.text)
		if p.state == stateTranslated {
			fmt.Fprintf(&b, "[Translation %d]\n%s\n\n", i+1, p.translation)
		}
		b.WriteString(exportDelimiter + "\n\n")
	}
	sess.mu.Unlock()

	content := b.String()
	key := id + ".txt"
	if err := s.store.Save(ctx, key, []byte(content)); err != nil {
		return "", "", fmt.Errorf("archive export: %w", err)
	}
	return key, content, nil
}

// OpenExport streams a previously archived export.
func (s *ReaderService) OpenExport(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: export %s", errs.ErrNotFound, key)
	}
	return r, nil
}

func (sess *readerSession) view() ReaderView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

func (sess *readerSession) viewLocked() ReaderView {
	view := ReaderView{
		ID:         sess.id,
		TargetLang: sess.targetLang,
		SourceType: sess.sourceType,
		VoiceTool:  sess.sourceType == model.SourceVoice,
		Paragraphs: make([]ParagraphView, 0, len(sess.paragraphs)),
	}
	for i := range sess.paragraphs {
		view.Paragraphs = append(view.Paragraphs, sess.paragraphView(i))
	}
	return view
}

func (sess *readerSession) paragraphView(idx int) ParagraphView {
	p := sess.paragraphs[idx]
	return ParagraphView{
		Index:       idx,
		Text:        p.text,
		Status:      p.state.String(),
		Translation: p.translation,
	}
}
