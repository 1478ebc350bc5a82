package grpc

import (
	"errors"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит ошибку usecase-слоя в статус gRPC.
func GRPCErrorResponse(err error) error {
	var verr *e.ValidationError
	msg := ""
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		msg = verr.Fields[0].Message
	}

	switch {
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, orDefault(msg, "invalid request"))
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, orDefault(msg, "not found"))
	case errors.Is(err, e.ErrUnauthorized), errors.Is(err, e.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
