package api

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/gacha-arena/internal/account"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/match"
	"github.com/xtding233/gacha-arena/internal/session"
	"github.com/xtding233/gacha-arena/internal/storage"
	"github.com/xtding233/gacha-arena/internal/token"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{gacha.ErrInsufficientFunds, codes.FailedPrecondition},
	{gacha.ErrInvalidCount, codes.InvalidArgument},
	{token.ErrCostOverflow, codes.InvalidArgument},
	{match.ErrInvalidRoundIndex, codes.InvalidArgument},
	{match.ErrEmptyHand, codes.InvalidArgument},
	{match.ErrAlreadyStarted, codes.FailedPrecondition},
	{match.ErrNotInProgress, codes.FailedPrecondition},
	{match.ErrNotCompleted, codes.FailedPrecondition},
	{match.ErrShortDeal, codes.Internal},
	{session.ErrInvalidSelection, codes.InvalidArgument},
	{session.ErrNoMatch, codes.FailedPrecondition},
	{session.ErrForbidden, codes.PermissionDenied},
	{session.ErrUnknownSession, codes.Unauthenticated},
	{account.ErrInvalidCredentials, codes.Unauthenticated},
	{account.ErrInvalidUsername, codes.InvalidArgument},
	{account.ErrWeakPassword, codes.InvalidArgument},
	{storage.ErrNotFound, codes.NotFound},
	{storage.ErrAlreadyExists, codes.AlreadyExists},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus converts a domain error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return status.Error(ec.code, err.Error())
		}
	}
	log.Printf("[api] internal error: %v", err)
	return status.Error(codes.Internal, "internal error")
}

// warning splits a persistence failure off err. The caller still returns a
// result when only a warning is left.
func warning(err error) (string, error) {
	if err != nil && session.IsPersistence(err) {
		return err.Error(), nil
	}
	return "", err
}
