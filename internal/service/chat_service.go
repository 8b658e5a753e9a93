package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/gemini"
	"github.com/weilunc/clipread/internal/pkg/errs"
)

const (
	// MaxRounds is the hard cap on user turns per chat session; reaching it
	// closes the session for good.
	MaxRounds = 12
	// MaxStagedImages and MaxStagedDocuments bound what can be attached to a
	// single outgoing message.
	MaxStagedImages    = 4
	MaxStagedDocuments = 1
)

// Attachment is a staged inline payload waiting for the next send.
type Attachment struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type chatTurn struct {
	role  string
	parts []gemini.Part
}

type chatSession struct {
	mu         sync.Mutex
	id         string
	model      string
	turns        []chatTurn
	images       []Attachment
	document     *Attachment
	documentSent bool
	userRounds   int
	closed       bool
	sending      bool
}

type ChatSessionView struct {
	ID             string `json:"id"`
	Model          string `json:"model"`
	Rounds         int    `json:"rounds"`
	MaxRounds      int    `json:"maxRounds"`
	Closed         bool   `json:"closed"`
	StagedImages   int    `json:"stagedImages"`
	StagedDocument bool   `json:"stagedDocument"`
}

type ChatReply struct {
	Text   string `json:"text"`
	Rounds int    `json:"rounds"`
	Closed bool   `json:"closed"`
}

type ChatTurnView struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatService holds the multi-turn conversation state. Sessions are
// independent of reading sessions and of each other.
type ChatService struct {
	settings *SettingsService
	gateway  Gateway

	mu       sync.Mutex
	sessions map[string]*chatSession
	entropy  *ulid.MonotonicEntropy
}

func NewChatService(settings *SettingsService, gateway Gateway) *ChatService {
	return &ChatService{
		settings: settings,
		gateway:  gateway,
		sessions: make(map[string]*chatSession),
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// NewSession opens a session pinned to a model. An empty model falls back to
// the configured translation model for the life of the session.
func (s *ChatService) NewSession(ctx context.Context, modelName string) (ChatSessionView, error) {
	if modelName == "" {
		settings, err := s.settings.Load(ctx)
		if err != nil {
			return ChatSessionView{}, err
		}
		modelName = settings.TranslationModel
	}
	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	sess := &chatSession{id: id, model: modelName}
	s.sessions[id] = sess
	s.mu.Unlock()
	logutil.GetLogger(ctx).Info("chat session opened", zap.String("id", id), zap.String("model", modelName))
	return sess.view(), nil
}

func (s *ChatService) session(id string) (*chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: chat session %s", errs.ErrNotFound, id)
	}
	return sess, nil
}

// Delete discards a session and everything staged in it.
func (s *ChatService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: chat session %s", errs.ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// StageImage attaches an image to the next outgoing message.
func (s *ChatService) StageImage(id string, att Attachment) (ChatSessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, err
	}
	if att.Data == "" {
		return ChatSessionView{}, fmt.Errorf("%w: empty image data", errs.ErrInvalidInput)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.images) >= MaxStagedImages {
		return ChatSessionView{}, fmt.Errorf("%w: at most %d images per message", errs.ErrAttachmentLimit, MaxStagedImages)
	}
	if att.MimeType == "" {
		att.MimeType = "image/jpeg"
	}
	sess.images = append(sess.images, att)
	return sess.viewLocked(), nil
}

// StageDocument attaches the single document the session allows. The limit
// is per session, not per message: once a document has been sent, staging
// another is rejected.
func (s *ChatService) StageDocument(id string, att Attachment) (ChatSessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, err
	}
	if att.Data == "" || att.MimeType == "" {
		return ChatSessionView{}, fmt.Errorf("%w: document data and mime type are required", errs.ErrInvalidInput)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.document != nil || sess.documentSent {
		return ChatSessionView{}, fmt.Errorf("%w: at most %d document per session", errs.ErrAttachmentLimit, MaxStagedDocuments)
	}
	sess.document = &att
	return sess.viewLocked(), nil
}

// RemoveStagedImage unstages a single image by position.
func (s *ChatService) RemoveStagedImage(id string, idx int) (ChatSessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if idx < 0 || idx >= len(sess.images) {
		return ChatSessionView{}, fmt.Errorf("%w: staged image %d out of range", errs.ErrInvalidInput, idx)
	}
	sess.images = append(sess.images[:idx], sess.images[idx+1:]...)
	return sess.viewLocked(), nil
}

// RemoveStagedDocument unstages the document.
func (s *ChatService) RemoveStagedDocument(id string) (ChatSessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.document = nil
	return sess.viewLocked(), nil
}

// ClearStaged drops everything staged for the next message.
func (s *ChatService) ClearStaged(id string) (ChatSessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.images = nil
	sess.document = nil
	return sess.viewLocked(), nil
}

// Send appends a user turn, calls the model with the recent history window
// and appends the reply. A failed call rolls the user turn back and restores
// the staged attachments so the message can be retried as-is.
func (s *ChatService) Send(ctx context.Context, id, text string) (ChatReply, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatReply{}, err
	}
	text = strings.TrimSpace(text)

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return ChatReply{}, fmt.Errorf("%w: session reached %d rounds", errs.ErrTurnLimit, MaxRounds)
	}
	if sess.sending {
		sess.mu.Unlock()
		return ChatReply{}, fmt.Errorf("%w: a message is already in flight", errs.ErrBusy)
	}
	if text == "" && len(sess.images) == 0 && sess.document == nil {
		sess.mu.Unlock()
		return ChatReply{}, fmt.Errorf("%w: empty message", errs.ErrInvalidInput)
	}
	sess.sending = true
	images := sess.images
	document := sess.document
	sess.images = nil
	sess.document = nil
	if document != nil {
		sess.documentSent = true
	}

	parts := make([]gemini.Part, 0, len(images)+2)
	for _, img := range images {
		parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{MimeType: img.MimeType, Data: img.Data}})
	}
	if document != nil {
		parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{MimeType: document.MimeType, Data: document.Data}})
	}
	if text != "" {
		parts = append(parts, gemini.Part{Text: text})
	}
	sess.turns = append(sess.turns, chatTurn{role: "user", parts: parts})
	window := historyWindow(sess.turns)
	modelName := sess.model
	sess.mu.Unlock()

	settings, err := s.settings.Load(ctx)
	var reply string
	if err == nil {
		reply, err = s.gateway.Generate(ctx, settings.GeminiAPIKey, modelName, window)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.sending = false
	if err != nil {
		sess.turns = sess.turns[:len(sess.turns)-1]
		sess.images = images
		sess.document = document
		if document != nil {
			sess.documentSent = false
		}
		logutil.GetLogger(ctx).Warn("chat send failed", zap.String("id", id), zap.Error(err))
		return ChatReply{}, err
	}
	sess.turns = append(sess.turns, chatTurn{role: "model", parts: []gemini.Part{{Text: reply}}})
	sess.userRounds++
	if sess.userRounds >= MaxRounds {
		sess.closed = true
		logutil.GetLogger(ctx).Info("chat session closed", zap.String("id", id))
	}
	return ChatReply{Text: reply, Rounds: sess.userRounds, Closed: sess.closed}, nil
}

// historyWindow keeps only the most recent turns so long sessions do not
// grow the request without bound.
func historyWindow(turns []chatTurn) []gemini.Content {
	const limit = 2 * MaxRounds
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]gemini.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, gemini.Content{Role: t.role, Parts: t.parts})
	}
	return out
}

// History returns the text transcript of a session.
func (s *ChatService) History(id string) (ChatSessionView, []ChatTurnView, error) {
	sess, err := s.session(id)
	if err != nil {
		return ChatSessionView{}, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	turns := make([]ChatTurnView, 0, len(sess.turns))
	for _, t := range sess.turns {
		var texts []string
		for _, p := range t.parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		turns = append(turns, ChatTurnView{Role: t.role, Text: strings.Join(texts, "\n")})
	}
	return sess.viewLocked(), turns, nil
}

func (sess *chatSession) view() ChatSessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

func (sess *chatSession) viewLocked() ChatSessionView {
	return ChatSessionView{
		ID:             sess.id,
		Model:          sess.model,
		Rounds:         sess.userRounds,
		MaxRounds:      MaxRounds,
		Closed:         sess.closed,
		StagedImages:   len(sess.images),
		StagedDocument: sess.document != nil,
	}
}
