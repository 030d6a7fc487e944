package trace

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateTraceID_PrefixedAndUnique(t *testing.T) {
	a := GenerateTraceID("fabricd")
	b := GenerateTraceID("fabricd")
	if a == b {
		t.Fatalf("expected distinct trace ids, both got %s", a)
	}
	if !strings.HasPrefix(a, "fabricd-") {
		t.Fatalf("GenerateTraceID = %q, want fabricd-<uuid> prefix", a)
	}
}

func TestAttachAndGetTraceID(t *testing.T) {
	ctx, id := AttachTraceID(context.Background(), "fabricd")
	if id == "" {
		t.Fatal("expected a non-empty trace id")
	}
	if got := GetTraceID(ctx); got != id {
		t.Fatalf("GetTraceID = %q, want %q", got, id)
	}
}

func TestGetTraceID_AbsentReturnsEmpty(t *testing.T) {
	if got := GetTraceID(context.Background()); got != "" {
		t.Fatalf("GetTraceID on bare context = %q, want empty", got)
	}
}
