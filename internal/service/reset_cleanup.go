package service

import (
	"context"
	"time"

	"iskacare/clinic-api/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ResetCodeCleanup periodically clears password reset codes that expired more
// than grace ago. Until then a late attempt still reports the code as expired.
type ResetCodeCleanup struct {
	cron     *cron.Cron
	accounts *store.Accounts
	grace    time.Duration
	now      func() time.Time
}

func NewResetCodeCleanup(accounts *store.Accounts, grace time.Duration) *ResetCodeCleanup {
	return &ResetCodeCleanup{
		cron:     cron.New(),
		accounts: accounts,
		grace:    grace,
		now:      time.Now,
	}
}

// Start schedules the cleanup with a standard five field cron spec
func (r *ResetCodeCleanup) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, func() { r.Run(context.Background()) }); err != nil {
		return err
	}

	zap.L().Debug("Reset code cleanup attached", zap.String("schedule", spec), zap.Duration("grace", r.grace))

	r.cron.Start()
	return nil
}

// Stop waits for a running cleanup to finish
func (r *ResetCodeCleanup) Stop() {
	<-r.cron.Stop().Done()
}

func (r *ResetCodeCleanup) Run(ctx context.Context) {
	n, err := r.accounts.ClearExpiredResetCodes(ctx, r.now().Add(-r.grace))
	if err != nil {
		zap.L().Error("Failed to clean up reset codes", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired reset codes", zap.Int64("count", n))
	}
}
