package fabric

import (
	"github.com/google/uuid"

	"fabricmux/internal/domain"
	"fabricmux/internal/logger"
)

// Input is the value carried at one position of a Matrix's input list. A
// valid Input is one of:
//   - *domain.Source: a raw leaf signal
//   - *MatrixOutput:  another matrix's output, cascaded in as this input
//   - nil:            an unpopulated input slot
//
// Enumeration (iterSources) dispatches on this with a type switch, per the
// "tagged variant with two cases" modeling called for by the design.
type Input any

// AvailableSource is a candidate route surfaced while enumerating the
// sources reachable through a Matrix's inputs.
type AvailableSource struct {
	InputIdx int
	PathLen  int
	Path     Input
	Source   *domain.Source
}

// Option configures a Matrix at construction time.
type Option func(*Matrix)

// WithLogger sets the logger used by the Matrix and the MatrixOutputs it
// owns.
func WithLogger(l logger.Logger) Option {
	return func(m *Matrix) { m.lgr = l }
}

// Matrix is a single crossbar switch: N inputs (each a raw Source, another
// matrix's output, or empty), M owned outputs, and the routing algorithm
// that realizes a source on one of those outputs by claiming a path back to
// a raw Source, recursing through any intermediate matrices along the way.
type Matrix struct {
	name    string
	driver  domain.Driver
	inputs  []Input
	outputs []*MatrixOutput

	// current maps output index to the input index last programmed for it.
	// Entries are never pruned on release: a stale entry is harmless because
	// release is guarded by the output's lock counter, not by this map, and
	// the next select on that output overwrites the entry anyway.
	current map[int]int

	lgr logger.Logger
}

// matrixInputSink is the weak back-reference a Matrix installs on any
// upstream MatrixOutput it takes as an input, so that a source change on
// that output is relayed to whichever of this matrix's own outputs are
// currently routed through it — without the upstream output holding any
// owning reference back.
type matrixInputSink struct {
	m   *Matrix
	idx int
}

func (s *matrixInputSink) SourceChanged(newSource *domain.Source) {
	s.m.inputChanged(s.idx, newSource)
}

// New constructs a Matrix with nrOutputs freshly-owned MatrixOutputs. Any
// input that is already a *MatrixOutput has this matrix installed as its
// downstream sink, so upstream reprograms and replugs propagate here.
func New(name string, driver domain.Driver, inputs []Input, nrOutputs int, opts ...Option) *Matrix {
	m := &Matrix{
		name:    name,
		driver:  driver,
		inputs:  inputs,
		outputs: make([]*MatrixOutput, nrOutputs),
		current: make(map[int]int),
		lgr:     &logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := range m.outputs {
		m.outputs[i] = newMatrixOutput(m, i)
	}
	for idx, inp := range inputs {
		if mo, ok := inp.(*MatrixOutput); ok {
			mo.ConnectedTo(&matrixInputSink{m: m, idx: idx})
		}
	}
	return m
}

// Name returns the matrix's name, as given at construction.
func (m *Matrix) Name() string { return m.name }

// NumOutputs returns the number of outputs this matrix owns.
func (m *Matrix) NumOutputs() int { return len(m.outputs) }

// Output returns the matrix's output at idx.
func (m *Matrix) Output(idx int) *MatrixOutput { return m.outputs[idx] }

// iterSources enumerates every AvailableSource currently reachable through
// this matrix's inputs. It is finite and acyclic by construction: the
// fabric is a DAG, and a locked upstream output is never recursed into —
// its route is fixed, so only the source it currently carries is surfaced,
// at path_len 0.
func (m *Matrix) iterSources() []AvailableSource {
	var out []AvailableSource
	for idx, inp := range m.inputs {
		switch v := inp.(type) {
		case *MatrixOutput:
			if v.Locked() {
				out = append(out, AvailableSource{
					InputIdx: idx,
					PathLen:  0,
					Path:     v,
					Source:   v.Source(),
				})
				continue
			}
			for _, upstream := range v.owner.iterSources() {
				out = append(out, AvailableSource{
					InputIdx: idx,
					PathLen:  upstream.PathLen + 1,
					Path:     v,
					Source:   upstream.Source,
				})
			}
		case *domain.Source:
			if v != nil {
				out = append(out, AvailableSource{InputIdx: idx, PathLen: 1, Path: v, Source: v})
			}
		}
	}
	return out
}

// AvailableSources returns the deduplicated set of sources reachable through
// this matrix, keyed by UUID so the same source reached through two paths
// is only reported once.
func (m *Matrix) AvailableSources() []*domain.Source {
	seen := make(map[uuid.UUID]*domain.Source)
	order := make([]uuid.UUID, 0)
	for _, r := range m.iterSources() {
		if r.Source == nil {
			continue
		}
		key := r.Source.UUID
		if _, ok := seen[key]; !ok {
			seen[key] = r.Source
			order = append(order, key)
		}
	}
	out := make([]*domain.Source, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

// Select sets output idx to connect to source, propagating up the fabric as
// necessary. This is a thin wrapper: MatrixOutput.Select owns the
// mirror-vs-reprogram decision and calls back into selectInternal only when
// an actual reprogram is needed.
func (m *Matrix) Select(idx int, source *domain.Source) error {
	return m.outputs[idx].Select(source, true)
}

// selectInternal performs the actual routing work for output idx, invoked
// by MatrixOutput.Select once it has determined this is a real reprogram
// rather than a mirror claim.
func (m *Matrix) selectInternal(idx int, source *domain.Source) error {
	m.lgr.Info("selecting route", logger.F("output", idx), logger.FSource("source", source))

	if err := m.release(idx); err != nil {
		return err
	}

	var best *AvailableSource
	for _, r := range m.iterSources() {
		if r.Source == nil || r.Source.UUID != source.UUID {
			continue
		}
		route := r
		if best == nil || route.PathLen < best.PathLen {
			best = &route
		}
	}
	if best == nil {
		return &domain.UnroutableOutputError{Output: m.outputs[idx].String(), Source: source.Name}
	}

	if upstream, ok := best.Path.(*MatrixOutput); ok {
		m.lgr.Debug("using upstream output", logger.F("output", idx), logger.F("path_len", best.PathLen))
		if err := upstream.Select(source, false); err != nil {
			return err
		}
	}

	m.driver.Program(idx, best.InputIdx)
	m.current[idx] = best.InputIdx
	return nil
}

// release frees the upstream reservation (if any) feeding output idx, so
// that a subsequent select is free to claim a different path. Missing
// entries and raw-Source (or empty) inputs are silently ignored, matching
// the idempotent-release discipline of never-claimed outputs; a genuine
// unbalanced release on the upstream output still propagates as
// AlreadyUnlockedError.
func (m *Matrix) release(idx int) error {
	inputIdx, ok := m.current[idx]
	if !ok {
		return nil
	}
	if inputIdx < 0 || inputIdx >= len(m.inputs) {
		return nil
	}
	upstream, ok := m.inputs[inputIdx].(*MatrixOutput)
	if !ok {
		return nil
	}
	err := upstream.Release()
	m.lgr.Debug("released upstream reservation", logger.F("output", idx), logger.F("input", inputIdx))
	return err
}

// inputChanged fans a source-identity change at input idx out to every
// output currently routed through it, without touching any crossbar: the
// physical path is unchanged, only the signal identity riding it.
func (m *Matrix) inputChanged(idx int, newSource *domain.Source) {
	for outIdx, inIdx := range m.current {
		if inIdx == idx {
			m.outputs[outIdx].SourceChanged(newSource)
		}
	}
}

// ReplugInput rewires input idx to a new Source or MatrixOutput and
// propagates the resulting source-identity change to every output currently
// routed through it. If newInput is a MatrixOutput belonging to a different
// matrix, that matrix's downstream binding is (re)installed here so that
// future reprograms of newInput keep notifying this matrix.
func (m *Matrix) ReplugInput(idx int, newInput Input) {
	var newSource *domain.Source
	switch v := newInput.(type) {
	case *domain.Source:
		newSource = v
	case *MatrixOutput:
		newSource = v.Source()
		v.ConnectedTo(&matrixInputSink{m: m, idx: idx})
	}
	m.inputChanged(idx, newSource)
	m.inputs[idx] = newInput
}
