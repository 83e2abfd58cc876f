package healthcheck

import (
	"context"
	"fmt"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
)

// JournalLengther reports how many observed anomalies are journaled.
type JournalLengther interface {
	Length(ctx context.Context) (int64, error)
}

// AnomalyJournalChecker reports unhealthy while observed anomalies are waiting
// in the journal for an operator to review and clear.
type AnomalyJournalChecker struct {
	journal JournalLengther
}

// NewAnomalyJournalChecker creates a new anomaly journal health checker.
func NewAnomalyJournalChecker(journal JournalLengther) *AnomalyJournalChecker {
	return &AnomalyJournalChecker{journal: journal}
}

// Name returns the name of this health checker.
func (c *AnomalyJournalChecker) Name() string {
	return "anomaly_journal"
}

// Check performs the health check.
func (c *AnomalyJournalChecker) Check(ctx context.Context) appcore.HealthStatus {
	count, err := c.journal.Length(ctx)
	if err != nil {
		return appcore.FailedHealthStatus("failed to read anomaly journal", err)
	}

	return appcore.NewHealthStatus(count == 0,
		fmt.Sprintf("anomaly journal: %d observed signals", count),
		map[string]any{"observed_signals": count},
	)
}
