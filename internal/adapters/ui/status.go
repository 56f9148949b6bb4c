package ui

import (
	"errors"
	"saferoom-locator/internal/domain"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StatusReport describes the last position failure, if any.
type StatusReport struct {
	Failures int
	Code     string
	Message  string
	At       time.Time
}

// StatusBoard is a StatusSink that remembers the last position failure.
type StatusBoard struct {
	log *zap.Logger
	now func() time.Time

	mu     sync.Mutex
	report StatusReport
}

func NewStatusBoard(log *zap.Logger) *StatusBoard {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusBoard{log: log.Named("status"), now: time.Now}
}

func (b *StatusBoard) PositionFailed(err error) {
	code := "unavailable"
	var pe *domain.PositionError
	if errors.As(err, &pe) {
		code = pe.Code.String()
	}

	b.mu.Lock()
	b.report.Failures++
	b.report.Code = code
	b.report.Message = err.Error()
	b.report.At = b.now()
	b.mu.Unlock()

	b.log.Warn("position unavailable", zap.String("code", code), zap.Error(err))
}

func (b *StatusBoard) Report() StatusReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.report
}
