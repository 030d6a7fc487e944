package group

import (
	"sync"

	"fabricmux/internal/domain"
	"fabricmux/internal/fabric"
	"fabricmux/internal/logger"
)

// MatrixGroup coordinates a named set of matrices and the SourceGroup that
// ties their sources together. A user-facing Select call on one matrix also
// routes that source's companions to their preferred outputs, unlocked.
//
// The routing core itself takes no lock around Matrix.Select/release (see
// the MatrixOutput doc in internal/fabric): it assumes the caller serializes access
// per matrix. MatrixGroup is that caller, holding one sync.Mutex per named
// matrix so two concurrent RPCs targeting the same matrix (e.g. over gRPC)
// never interleave a select and a release.
type MatrixGroup struct {
	signals  *SourceGroup
	matrices map[string]*fabric.Matrix
	locks    map[string]*sync.Mutex
	lgr      logger.Logger
}

// NewMatrixGroup constructs a MatrixGroup over the given signal groups and named
// matrices.
func NewMatrixGroup(signals *SourceGroup, matrices map[string]*fabric.Matrix, lgr logger.Logger) *MatrixGroup {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	locks := make(map[string]*sync.Mutex, len(matrices))
	for name := range matrices {
		locks[name] = &sync.Mutex{}
	}
	return &MatrixGroup{signals: signals, matrices: matrices, locks: locks, lgr: lgr}
}

// Select routes src onto output idx of the named matrix, then — unless
// noCompanions is set — routes every companion of src to its preferred
// output, unlocked. Companion routes are deliberately unlocked: they are
// convenience mirrors, not primary selections, and must never block a
// future primary select. An error routing a companion (e.g. an unroutable
// companion) is a real failure and propagates; a companion with no
// preferred output, or whose preferred output is the one just programmed,
// is skipped silently (logged at Debug).
//
// Access to matrixName is serialized against any other Select/Release
// targeting the same matrix.
func (g *MatrixGroup) Select(matrixName string, idx int, src *domain.Source, noCompanions bool) error {
	mat, ok := g.matrices[matrixName]
	if !ok {
		return &domain.UnroutableOutputError{Output: matrixName, Source: src.Name}
	}

	if lock := g.locks[matrixName]; lock != nil {
		lock.Lock()
		defer lock.Unlock()
	}

	if err := mat.Select(idx, src); err != nil {
		return err
	}
	var matOut domain.Output = mat.Output(idx)

	if noCompanions {
		return nil
	}
	for _, companion := range g.signals.GetCompanions(src) {
		preferred := companion.PreferredOut
		if preferred == nil || preferred == matOut {
			g.lgr.Debug("skipping companion, no distinct preferred output",
				logger.FSource("companion", companion))
			continue
		}
		if err := preferred.Select(companion, true); err != nil {
			return err
		}
	}
	return nil
}

// Release releases output idx of the named matrix, serialized against any
// Select/Release targeting the same matrix. Returns false if the matrix is
// unknown.
func (g *MatrixGroup) Release(matrixName string, idx int) (bool, error) {
	mat, ok := g.matrices[matrixName]
	if !ok {
		return false, nil
	}
	if lock := g.locks[matrixName]; lock != nil {
		lock.Lock()
		defer lock.Unlock()
	}
	return true, mat.Output(idx).Release()
}

// GetOutput returns output idx of the named matrix, or nil if the matrix is
// unknown.
func (g *MatrixGroup) GetOutput(name string, idx int) *fabric.MatrixOutput {
	mat, ok := g.matrices[name]
	if !ok {
		return nil
	}
	return mat.Output(idx)
}

// NumOutputs returns the number of outputs the named matrix owns, and
// whether the matrix is known at all.
func (g *MatrixGroup) NumOutputs(name string) (int, bool) {
	mat, ok := g.matrices[name]
	if !ok {
		return 0, false
	}
	return mat.NumOutputs(), true
}

// Available returns the sources currently reachable through the named
// matrix, or nil if the matrix is unknown.
func (g *MatrixGroup) Available(name string) []*domain.Source {
	mat, ok := g.matrices[name]
	if !ok {
		return nil
	}
	return mat.AvailableSources()
}
