package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/mailbox"
)

// MailboxSweepJob drops handoff slots that were never opened by a reader.
type MailboxSweepJob struct {
	box *mailbox.Box
}

func NewMailboxSweepJob(box *mailbox.Box) *MailboxSweepJob {
	return &MailboxSweepJob{box: box}
}

func (j *MailboxSweepJob) Name() string {
	return "mailbox_sweep"
}

func (j *MailboxSweepJob) Run(ctx context.Context) error {
	if j.box == nil {
		return nil
	}
	removed := j.box.Sweep(time.Now())
	if removed > 0 {
		logutil.GetLogger(ctx).Info("swept unconsumed handoff slots", zap.Int("removed", removed))
	}
	return nil
}
