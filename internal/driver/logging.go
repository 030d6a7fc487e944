package driver

import (
	"fabricmux/internal/domain"
	"fabricmux/internal/logger"
)

// Logging wraps another Driver and logs every Program call at Info level.
// It is the default driver a fabric daemon uses when no hardware has been
// configured for a matrix: every route still gets planned and claimed
// exactly as with real hardware, just not actuated.
type Logging struct {
	name string
	next domain.Driver
	lgr  logger.Logger
}

// NewLogging wraps next (which may be nil, for a pure no-op crossbar) with
// logging identified by name.
func NewLogging(name string, next domain.Driver, lgr logger.Logger) *Logging {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Logging{name: name, next: next, lgr: lgr}
}

func (d *Logging) Program(outputIdx, inputIdx int) {
	d.lgr.Info("programming crossbar",
		logger.F("matrix", d.name),
		logger.F("output", outputIdx),
		logger.F("input", inputIdx),
	)
	if d.next != nil {
		d.next.Program(outputIdx, inputIdx)
	}
}
