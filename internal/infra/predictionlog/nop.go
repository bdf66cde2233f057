package predictionlog

import (
	"context"

	"github.com/yanqian/flightpulse/internal/domain/prediction"
)

// NopLog discards entries. Used when no audit database is configured.
type NopLog struct{}

func (NopLog) Append(context.Context, prediction.AuditEntry) error { return nil }

var _ prediction.AuditLog = NopLog{}
