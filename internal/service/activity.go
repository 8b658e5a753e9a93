package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/model"
)

// ActivityLogger forwards usage records to the optional external sink. It is
// strictly best-effort: every failure is logged locally and swallowed so it
// can never block or fail a capture.
type ActivityLogger struct {
	settings *SettingsService
	hc       *http.Client
	nowFunc  func() time.Time
}

func NewActivityLogger(settings *SettingsService, hc *http.Client) *ActivityLogger {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &ActivityLogger{settings: settings, hc: hc, nowFunc: time.Now}
}

func (l *ActivityLogger) Log(ctx context.Context, eventType, sourceURL, originalText string) {
	logger := logutil.GetLogger(ctx).With(zap.String("event", eventType))
	settings, err := l.settings.Load(ctx)
	if err != nil || settings.LogEndpoint == "" {
		return
	}
	event := model.ActivityEvent{
		Timestamp:    l.nowFunc().UTC().Format(time.RFC3339),
		Type:         eventType,
		SourceURL:    sourceURL,
		OriginalText: originalText,
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Warn("encode activity event failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.LogEndpoint, bytes.NewReader(body))
	if err != nil {
		logger.Warn("build activity request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", settings.LogKey)
	resp, err := l.hc.Do(req)
	if err != nil {
		logger.Warn("send activity log failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}
