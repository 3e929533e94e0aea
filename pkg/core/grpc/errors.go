package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// ToStatus converts an error into a gRPC status error. Foundation errors keep their
// message and are mapped by code; status errors pass through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	if mdwErr, ok := mdwerror.As(err); ok {
		return status.Error(CodeFor(mdwErr.Code()), mdwErr.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// CodeFor maps a foundation error code to a gRPC status code
func CodeFor(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeInvalidInput, mdwerror.CodeValidationFailed, mdwerror.CodeInvalidLength,
		mdwerror.CodeLexical, mdwerror.CodeParseMismatch, mdwerror.CodeParseExhausted,
		mdwerror.CodeIncompleteInput:
		return codes.InvalidArgument
	case mdwerror.CodeEvaluation:
		return codes.OutOfRange
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeCanceled:
		return codes.Canceled
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeConnectionFailed, mdwerror.CodeNetworkError:
		return codes.Unavailable
	case mdwerror.CodeConfigError, mdwerror.CodeMissingConfig, mdwerror.CodeInvalidConfig:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// FromStatus converts a gRPC status error back into a foundation error
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	code := mdwerror.CodeInternal
	switch st.Code() {
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.OutOfRange:
		code = mdwerror.CodeEvaluation
	case codes.NotFound:
		code = mdwerror.CodeNotFound
	case codes.DeadlineExceeded:
		code = mdwerror.CodeTimeout
	case codes.Canceled:
		code = mdwerror.CodeCanceled
	case codes.Unavailable:
		code = mdwerror.CodeServiceUnavailable
	case codes.FailedPrecondition:
		code = mdwerror.CodeConfigError
	}
	return mdwerror.New(st.Message()).
		WithCode(code).
		WithDetail("grpc_code", st.Code().String())
}
