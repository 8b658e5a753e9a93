package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/pkg/errs"
	"github.com/weilunc/clipread/internal/repo"
	"github.com/weilunc/clipread/internal/service"
)

type chatEnv struct {
	svc     *service.ChatService
	gateway *fakeGateway
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	settings := service.NewSettingsService(repo.NewSettingsRepo(db))
	require.NoError(t, settings.Save(context.Background(), model.Settings{GeminiAPIKey: "test-key"}))

	env := &chatEnv{gateway: &fakeGateway{}}
	env.svc = service.NewChatService(settings, env.gateway)
	return env
}

func TestNewSessionDefaultsModel(t *testing.T) {
	env := newChatEnv(t)
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, model.DefaultTranslationModel, view.Model)
	require.Equal(t, service.MaxRounds, view.MaxRounds)
	require.False(t, view.Closed)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	env := newChatEnv(t)
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)
	_, err = env.svc.Send(context.Background(), view.ID, "   ")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSendAllowsAttachmentOnlyMessage(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.reply = "a picture of a cat"
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)
	_, err = env.svc.StageImage(view.ID, service.Attachment{Data: "img"})
	require.NoError(t, err)

	reply, err := env.svc.Send(context.Background(), view.ID, "")
	require.NoError(t, err)
	require.Equal(t, "a picture of a cat", reply.Text)
	require.Len(t, env.gateway.lastContents[0].Parts, 1)
	require.NotNil(t, env.gateway.lastContents[0].Parts[0].InlineData)
}

func TestDeleteSession(t *testing.T) {
	env := newChatEnv(t)
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(view.ID))
	require.ErrorIs(t, env.svc.Delete(view.ID), errs.ErrNotFound)
	_, _, err = env.svc.History(view.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSendUnknownSession(t *testing.T) {
	env := newChatEnv(t)
	_, err := env.svc.Send(context.Background(), "no-such-session", "hi")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSendAppendsBothTurns(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.reply = "model reply"
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	reply, err := env.svc.Send(context.Background(), view.ID, "hello")
	require.NoError(t, err)
	require.Equal(t, "model reply", reply.Text)
	require.Equal(t, 1, reply.Rounds)

	// request carried the single user turn
	require.Len(t, env.gateway.lastContents, 1)
	require.Equal(t, "user", env.gateway.lastContents[0].Role)

	_, turns, err := env.svc.History(view.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, "user", turns[0].Role)
	require.Equal(t, "model", turns[1].Role)
}

func TestSendFailureRollsBack(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.err = errors.New("upstream down")
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	staged, err := env.svc.StageImage(view.ID, service.Attachment{Data: "img"})
	require.NoError(t, err)
	require.Equal(t, 1, staged.StagedImages)

	_, err = env.svc.Send(context.Background(), view.ID, "hello")
	require.Error(t, err)

	// the user turn is gone and the attachment is staged again for retry
	after, turns, err := env.svc.History(view.ID)
	require.NoError(t, err)
	require.Empty(t, turns)
	require.Equal(t, 0, after.Rounds)
	require.Equal(t, 1, after.StagedImages)
}

func TestStagedAttachmentsTravelWithMessage(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.reply = "ok"
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	_, err = env.svc.StageImage(view.ID, service.Attachment{MimeType: "image/png", Data: "img1"})
	require.NoError(t, err)
	_, err = env.svc.StageImage(view.ID, service.Attachment{Data: "img2"})
	require.NoError(t, err)
	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc"})
	require.NoError(t, err)

	_, err = env.svc.Send(context.Background(), view.ID, "describe these")
	require.NoError(t, err)

	userTurn := env.gateway.lastContents[0]
	require.Len(t, userTurn.Parts, 4) // two images, one document, the text
	require.Equal(t, "image/png", userTurn.Parts[0].InlineData.MimeType)
	require.Equal(t, "image/jpeg", userTurn.Parts[1].InlineData.MimeType)
	require.Equal(t, "application/pdf", userTurn.Parts[2].InlineData.MimeType)
	require.Equal(t, "describe these", userTurn.Parts[3].Text)

	after, _, err := env.svc.History(view.ID)
	require.NoError(t, err)
	require.Equal(t, 0, after.StagedImages)
	require.False(t, after.StagedDocument)
}

func TestStagingLimits(t *testing.T) {
	env := newChatEnv(t)
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	for i := 0; i < service.MaxStagedImages; i++ {
		_, err = env.svc.StageImage(view.ID, service.Attachment{Data: fmt.Sprintf("img%d", i)})
		require.NoError(t, err)
	}
	_, err = env.svc.StageImage(view.ID, service.Attachment{Data: "one too many"})
	require.ErrorIs(t, err, errs.ErrAttachmentLimit)

	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc"})
	require.NoError(t, err)
	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc2"})
	require.ErrorIs(t, err, errs.ErrAttachmentLimit)

	cleared, err := env.svc.ClearStaged(view.ID)
	require.NoError(t, err)
	require.Equal(t, 0, cleared.StagedImages)
	require.False(t, cleared.StagedDocument)
}

func TestRemoveStagedAttachments(t *testing.T) {
	env := newChatEnv(t)
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	_, err = env.svc.StageImage(view.ID, service.Attachment{Data: "img0"})
	require.NoError(t, err)
	staged, err := env.svc.StageImage(view.ID, service.Attachment{Data: "img1"})
	require.NoError(t, err)
	require.Equal(t, 2, staged.StagedImages)

	after, err := env.svc.RemoveStagedImage(view.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, after.StagedImages)

	_, err = env.svc.RemoveStagedImage(view.ID, 5)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc"})
	require.NoError(t, err)
	after, err = env.svc.RemoveStagedDocument(view.ID)
	require.NoError(t, err)
	require.False(t, after.StagedDocument)
}

func TestDocumentLimitIsPerSession(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.reply = "ok"
	view, err := env.svc.NewSession(context.Background(), "")
	require.NoError(t, err)

	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc"})
	require.NoError(t, err)
	_, err = env.svc.Send(context.Background(), view.ID, "summarize")
	require.NoError(t, err)

	// the session already carried its one document
	_, err = env.svc.StageDocument(view.ID, service.Attachment{MimeType: "application/pdf", Data: "doc2"})
	require.ErrorIs(t, err, errs.ErrAttachmentLimit)
}

func TestSessionClosesAtRoundLimit(t *testing.T) {
	env := newChatEnv(t)
	env.gateway.reply = "ok"
	view, err := env.svc.NewSession(context.Background(), "custom-model")
	require.NoError(t, err)
	require.Equal(t, "custom-model", view.Model)

	var reply service.ChatReply
	for i := 0; i < service.MaxRounds; i++ {
		reply, err = env.svc.Send(context.Background(), view.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}
	require.True(t, reply.Closed)
	require.Equal(t, service.MaxRounds, reply.Rounds)

	_, err = env.svc.Send(context.Background(), view.ID, "one more")
	require.ErrorIs(t, err, errs.ErrTurnLimit)

	// the last request never exceeds the history window
	require.LessOrEqual(t, len(env.gateway.lastContents), 2*service.MaxRounds)
}
