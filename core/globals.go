package core

import (
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/outwriter"
	"go.uber.org/zap"
)

var (
	// logger receives structured diagnostics from executors
	logger = zap.NewNop()

	// clock is the time source used by executors
	clock contract.Clock = contract.SystemClock{}

	// writer renders executor results
	writer = outwriter.NewOutWriter()
)

// SetLogger replaces the logger used by executors. A nil logger is ignored.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}
