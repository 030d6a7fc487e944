// Package fabric implements the cascading matrix-switch routing core: the
// Matrix crossbar abstraction, its MatrixOutput ports, and the recursive
// claim/release algorithm that realizes a "route source S to output O"
// request across a tree of matrices.
package fabric

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"fabricmux/internal/domain"
	"fabricmux/internal/logger"
)

// MatrixOutput is one output port of a Matrix. It holds the source currently
// programmed onto it, a reference-counted lock, and an optional downstream
// sink that is notified whenever the programmed source changes.
//
// The lock count is a go.uber.org/atomic.Int64 rather than a plain int
// guarded by a mutex: §5 of the design requires that independent goroutines
// be able to claim/release a shared output without corrupting the count,
// while every other field here is only ever touched under the serialization
// the caller (or the owning Matrix) already provides.
type MatrixOutput struct {
	owner *Matrix
	idx   int

	source     *domain.Source
	sem        atomic.Int64
	downstream domain.Sink

	lgr logger.Logger
}

// newMatrixOutput constructs an output owned by m at position idx. Only
// Matrix.New uses this; MatrixOutputs are never constructed standalone.
func newMatrixOutput(m *Matrix, idx int) *MatrixOutput {
	return &MatrixOutput{
		owner: m,
		idx:   idx,
		lgr:   m.lgr,
	}
}

func (o *MatrixOutput) String() string {
	return fmt.Sprintf("%s.outputs[%d]", o.owner.name, o.idx)
}

// ConnectedTo installs sink as the downstream notification target for this
// output. Called by a parent Matrix at construction time, when this output
// is used as one of the parent's inputs.
func (o *MatrixOutput) ConnectedTo(sink domain.Sink) {
	o.downstream = sink
}

// Source returns the source currently programmed onto this output, or nil.
func (o *MatrixOutput) Source() *domain.Source {
	return o.source
}

// UUID returns the identifier of the currently programmed source, or the
// zero UUID if none is programmed.
func (o *MatrixOutput) UUID() uuid.UUID {
	if o.source == nil {
		return uuid.UUID{}
	}
	return o.source.UUID
}

// Locked reports whether this output currently has any live claim on it.
func (o *MatrixOutput) Locked() bool {
	return o.sem.Load() > 0
}

// Claim increments the lock count, recording one more live user of whatever
// is currently routed to this output.
func (o *MatrixOutput) Claim() {
	o.sem.Inc()
}

// Release decrements the lock count. A release that would take the count
// negative is rejected with AlreadyUnlockedError and the count is left
// unchanged; otherwise the owning Matrix is given a chance to free the
// upstream input that fed this output, now that one fewer user remains.
func (o *MatrixOutput) Release() error {
	if o.sem.Dec() < 0 {
		o.sem.Inc()
		return &domain.AlreadyUnlockedError{Output: o.String()}
	}
	return o.owner.release(o.idx)
}

// Select realizes src on this output.
//
// If src is already the source live on this output (by UUID), this is a
// mirror: the physical path is already correct and is not reprogrammed, but
// the claim still happens unless nolock is set — this is how two downstream
// paths come to share one already-routed upstream output. Otherwise, if the
// output is locked on a different source, selection fails with
// LockedOutputError. Otherwise the owning Matrix is asked to realize src on
// this output index; on success the new source is recorded and fanned out
// to the downstream sink before the claim (if any) is taken, so that a
// reader observing the output after Select returns always sees the new
// source.
func (o *MatrixOutput) Select(src *domain.Source, nolock bool) error {
	if o.source == nil || o.source.UUID != src.UUID {
		if o.Locked() {
			return &domain.LockedOutputError{Output: o.String()}
		}
		if err := o.owner.selectInternal(o.idx, src); err != nil {
			return err
		}
		o.sourceChanged(src)
	}
	if !nolock {
		o.Claim()
	}
	return nil
}

// SourceChanged updates the source identity carried by this output without
// reprogramming any crossbar, and fans the change out downstream. Used both
// locally (after a real reprogram) and as the domain.Sink callback when an
// upstream output this one feeds from changes identity underneath it.
func (o *MatrixOutput) SourceChanged(newSource *domain.Source) {
	o.sourceChanged(newSource)
}

func (o *MatrixOutput) sourceChanged(newSource *domain.Source) {
	if o.source == newSource {
		return
	}
	o.source = newSource
	if o.downstream != nil {
		o.downstream.SourceChanged(newSource)
	}
}
