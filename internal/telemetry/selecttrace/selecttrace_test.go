package selecttrace

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc"
)

// useRecordingProvider installs an in-memory span recorder as the global
// TracerProvider for the duration of the test, so ServerInterceptor's spans
// are actually captured instead of going to the default no-op provider.
func useRecordingProvider(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestServerInterceptor_StartsSpanForSelectAndRelease(t *testing.T) {
	for _, method := range []string{"/fabricmux.Fabric/Select", "/fabricmux.Fabric/Release"} {
		sr := useRecordingProvider(t)
		interceptor := ServerInterceptor()

		handler := func(ctx context.Context, req any) (any, error) { return nil, nil }
		if _, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, handler); err != nil {
			t.Fatalf("interceptor(%s): %v", method, err)
		}

		if got := len(sr.Ended()); got != 1 {
			t.Fatalf("method %s: recorded %d spans, want 1", method, got)
		}
		if name := sr.Ended()[0].Name(); name != method {
			t.Fatalf("span name = %q, want %q", name, method)
		}
	}
}

func TestServerInterceptor_SkipsUntracedMethods(t *testing.T) {
	sr := useRecordingProvider(t)
	interceptor := ServerInterceptor()

	var handlerCalled bool
	handler := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "reply", nil
	}

	reply, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/fabricmux.Fabric/GetOutput"}, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if !handlerCalled {
		t.Fatal("expected the underlying handler to run even for an untraced method")
	}
	if reply != "reply" {
		t.Fatalf("reply = %v, want reply", reply)
	}
	if got := len(sr.Ended()); got != 0 {
		t.Fatalf("recorded %d spans for an untraced method, want 0", got)
	}
}

func TestClientInterceptor_InvokesForTracedAndUntracedMethods(t *testing.T) {
	sr := useRecordingProvider(t)
	interceptor := ClientInterceptor()

	var invoked int
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		invoked++
		return nil
	}

	if err := interceptor(context.Background(), "/fabricmux.Fabric/Select", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor(Select): %v", err)
	}
	if err := interceptor(context.Background(), "/fabricmux.Fabric/GetOutput", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor(GetOutput): %v", err)
	}
	if invoked != 2 {
		t.Fatalf("invoker called %d times, want 2", invoked)
	}
	if got := len(sr.Ended()); got != 1 {
		t.Fatalf("recorded %d client spans, want 1 (only Select is traced)", got)
	}
}

func TestTraced(t *testing.T) {
	cases := map[string]bool{
		"/fabricmux.Fabric/Select":           true,
		"/fabricmux.Fabric/Release":          true,
		"/fabricmux.Fabric/GetOutput":        false,
		"/fabricmux.Fabric/AvailableSources": false,
	}
	for method, want := range cases {
		if got := traced(method); got != want {
			t.Errorf("traced(%s) = %v, want %v", method, got, want)
		}
	}
}
