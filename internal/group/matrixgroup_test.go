package group

import (
	"errors"
	"testing"

	"fabricmux/internal/domain"
	"fabricmux/internal/driver"
	"fabricmux/internal/fabric"
)

// TestMatrixGroup_CompanionRouting covers scenario S6: selecting a source on
// one matrix also routes its companion (by shared group index) to the
// companion's preferred output on a different matrix, unlocked.
func TestMatrixGroup_CompanionRouting(t *testing.T) {
	videoA := domain.NewSource("video-A")
	audioA := domain.NewSource("audio-A")

	videoDriver := driver.NewRecording()
	videoMatrix := fabric.New("video", videoDriver, []fabric.Input{videoA}, 1)

	audioDriver := driver.NewRecording()
	audioMatrix := fabric.New("audio", audioDriver, []fabric.Input{audioA}, 1)

	var audioPreferred domain.Output = audioMatrix.Output(0)
	sg := NewSourceGroup(map[string][]*domain.Source{
		"video": {videoA},
		"audio": {audioA},
	}, OutputAssignment{Group: "audio", Output: audioPreferred})

	mg := NewMatrixGroup(sg, map[string]*fabric.Matrix{
		"video": videoMatrix,
		"audio": audioMatrix,
	}, nil)

	if err := mg.Select("video", 0, videoA, false); err != nil {
		t.Fatalf("select: %v", err)
	}

	if videoMatrix.Output(0).Source() != videoA {
		t.Fatalf("video output source = %v, want %v", videoMatrix.Output(0).Source(), videoA)
	}
	if audioMatrix.Output(0).Source() != audioA {
		t.Fatalf("companion audio output source = %v, want %v", audioMatrix.Output(0).Source(), audioA)
	}
	if audioMatrix.Output(0).Locked() {
		t.Fatalf("expected companion route to be unlocked")
	}
}

// TestMatrixGroup_NoCompanionsSuppressesFanout verifies that noCompanions
// skips companion routing entirely.
func TestMatrixGroup_NoCompanionsSuppressesFanout(t *testing.T) {
	videoA := domain.NewSource("video-A")
	audioA := domain.NewSource("audio-A")

	videoDriver := driver.NewRecording()
	videoMatrix := fabric.New("video", videoDriver, []fabric.Input{videoA}, 1)
	audioDriver := driver.NewRecording()
	audioMatrix := fabric.New("audio", audioDriver, []fabric.Input{audioA}, 1)

	var audioPreferred domain.Output = audioMatrix.Output(0)
	sg := NewSourceGroup(map[string][]*domain.Source{
		"video": {videoA},
		"audio": {audioA},
	}, OutputAssignment{Group: "audio", Output: audioPreferred})

	mg := NewMatrixGroup(sg, map[string]*fabric.Matrix{
		"video": videoMatrix,
		"audio": audioMatrix,
	}, nil)

	if err := mg.Select("video", 0, videoA, true); err != nil {
		t.Fatalf("select: %v", err)
	}
	if audioMatrix.Output(0).Source() != nil {
		t.Fatalf("expected companion untouched with noCompanions set, got %v", audioMatrix.Output(0).Source())
	}
}

// TestMatrixGroup_CompanionWithoutPreferredOutputSkipped verifies that a
// companion with no PreferredOut is skipped without error.
func TestMatrixGroup_CompanionWithoutPreferredOutputSkipped(t *testing.T) {
	videoA := domain.NewSource("video-A")
	audioA := domain.NewSource("audio-A")

	videoDriver := driver.NewRecording()
	videoMatrix := fabric.New("video", videoDriver, []fabric.Input{videoA}, 1)

	sg := NewSourceGroup(map[string][]*domain.Source{
		"video": {videoA},
		"audio": {audioA},
	})

	mg := NewMatrixGroup(sg, map[string]*fabric.Matrix{
		"video": videoMatrix,
	}, nil)

	if err := mg.Select("video", 0, videoA, false); err != nil {
		t.Fatalf("expected no error from a companion with no preferred output, got %v", err)
	}
}

// TestMatrixGroup_UnknownMatrixName verifies that selecting on an
// unregistered matrix name fails with UnroutableOutputError.
func TestMatrixGroup_UnknownMatrixName(t *testing.T) {
	videoA := domain.NewSource("video-A")
	sg := NewSourceGroup(map[string][]*domain.Source{"video": {videoA}})
	mg := NewMatrixGroup(sg, map[string]*fabric.Matrix{}, nil)

	err := mg.Select("nonexistent", 0, videoA, false)
	var ue *domain.UnroutableOutputError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnroutableOutputError, got %v", err)
	}
}

// TestMatrixGroup_GetOutputAndAvailable exercises the thin read accessors.
func TestMatrixGroup_GetOutputAndAvailable(t *testing.T) {
	a := domain.NewSource("A")
	d := driver.NewRecording()
	m := fabric.New("m", d, []fabric.Input{a}, 1)
	mg := NewMatrixGroup(NewSourceGroup(nil), map[string]*fabric.Matrix{"m": m}, nil)

	if mg.GetOutput("m", 0) != m.Output(0) {
		t.Fatalf("GetOutput returned wrong output")
	}
	avail := mg.Available("m")
	if len(avail) != 1 || avail[0] != a {
		t.Fatalf("Available = %v, want [A]", avail)
	}

	if n, ok := mg.NumOutputs("m"); !ok || n != 1 {
		t.Fatalf("NumOutputs(m) = (%d, %v), want (1, true)", n, ok)
	}
	if _, ok := mg.NumOutputs("ghost"); ok {
		t.Fatal("expected NumOutputs for unknown matrix to report ok=false")
	}
}

// TestMatrixGroup_ReleaseUnknownMatrix verifies Release reports the matrix
// as unknown rather than panicking on a missing entry.
func TestMatrixGroup_ReleaseUnknownMatrix(t *testing.T) {
	mg := NewMatrixGroup(NewSourceGroup(nil), map[string]*fabric.Matrix{}, nil)
	known, err := mg.Release("ghost", 0)
	if known {
		t.Fatal("expected known=false for an unregistered matrix")
	}
	if err != nil {
		t.Fatalf("expected nil error when matrix is unknown, got %v", err)
	}
}

// TestMatrixGroup_SelectThenReleaseUnlocks verifies MatrixGroup.Release
// drops the claim a locking MatrixOutput.Select took on the same output.
func TestMatrixGroup_SelectThenReleaseUnlocks(t *testing.T) {
	a := domain.NewSource("A")
	d := driver.NewRecording()
	m := fabric.New("m", d, []fabric.Input{a}, 1)
	mg := NewMatrixGroup(NewSourceGroup(nil), map[string]*fabric.Matrix{"m": m}, nil)

	if err := m.Output(0).Select(a, false); err != nil {
		t.Fatalf("claim select: %v", err)
	}
	if !m.Output(0).Locked() {
		t.Fatal("expected output to be locked after a locking select")
	}
	known, err := mg.Release("m", 0)
	if !known || err != nil {
		t.Fatalf("Release: known=%v err=%v", known, err)
	}
	if m.Output(0).Locked() {
		t.Fatal("expected output to be unlocked after Release")
	}
}
