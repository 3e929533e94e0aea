package grpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	mdwlog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/pkg/core/logging"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"parse mismatch", mdwerror.New("expected +, got 1").WithCode(mdwerror.CodeParseMismatch), codes.InvalidArgument},
		{"lexical wrapped", fmt.Errorf("tokenize: %w", mdwerror.New("x").WithCode(mdwerror.CodeLexical)), codes.InvalidArgument},
		{"overflow", mdwerror.New("overflow").WithCode(mdwerror.CodeEvaluation), codes.OutOfRange},
		{"database", mdwerror.New("locked").WithCode(mdwerror.CodeDatabaseError), codes.Internal},
		{"canceled", context.Canceled, codes.Canceled},
		{"plain", errors.New("boom"), codes.Internal},
		{"status passthrough", status.Error(codes.NotFound, "gone"), codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(ToStatus(tt.err)))
		})
	}
	assert.NoError(t, ToStatus(nil))
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(status.Error(codes.InvalidArgument, "out of tokens"))
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeInvalidInput))
	assert.Equal(t, "out of tokens", err.Error())

	plain := errors.New("plain")
	assert.Same(t, plain, FromStatus(plain))
	assert.NoError(t, FromStatus(nil))
}

func testInterceptors(buf *bytes.Buffer) *Interceptors {
	base := mdwlog.Discard()
	if buf != nil {
		base = mdwlog.New().WithLevel(mdwlog.LevelDebug).WithFormat(mdwlog.FormatJSON).WithOutput(buf)
	}
	return NewInterceptors(logging.Wrap(base))
}

func TestErrorInterceptor(t *testing.T) {
	interceptor := testInterceptors(nil).Errors()
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, mdwerror.New("too long").WithCode(mdwerror.CodeInvalidLength)
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, handler)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := testInterceptors(&buf).Recovery()
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, handler)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), "gRPC panic recovered")
}

func TestLoggingInterceptor_Levels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"ok", nil, "info"},
		{"rejected input", status.Error(codes.InvalidArgument, "out of tokens"), "info"},
		{"server fault", status.Error(codes.Internal, "boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := testInterceptors(&buf).Logging()
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.err
			}

			ctx := WithRequestID(context.Background(), "req-1")
			_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/frege.v1.ParserService/Parse"}, handler)
			assert.Equal(t, tt.err, err)

			out := buf.String()
			assert.Contains(t, out, `"level":"`+tt.level+`"`)
			assert.Contains(t, out, "/frege.v1.ParserService/Parse")
			assert.Contains(t, out, "req-1")
		})
	}
}

func TestInterceptors_Chains(t *testing.T) {
	ic := NewInterceptors(nil)
	assert.Len(t, ic.Unary(), 4)
	assert.Len(t, ic.Stream(), 2)
}

func TestRequestID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc"))
	assert.Equal(t, "abc", GetRequestID(ctx))

	assert.Equal(t, "xyz", GetRequestID(WithRequestID(context.Background(), "xyz")))
	assert.Empty(t, GetRequestID(context.Background()))

	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	}
	_, err := testInterceptors(nil).RequestID()(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	assert.NoError(t, err)
	assert.Len(t, seen, 36, "generated UUID")
}
