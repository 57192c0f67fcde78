package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
)

var (
	errAmountRequired = errors.New("amount is required")
	errDealInactive   = errors.New("deal is no longer available")
	errUnknownUser    = errors.New("user does not exist")
)

// toConnectError maps domain errors to Connect codes. Errors that are
// already Connect errors pass through.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var validationErr *allocation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrReferenceConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, allocation.ErrAllocationExceedsTotal), errors.Is(err, allocation.ErrRateTableInvalid):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func parseMode(s string) (models.PurchaseMode, error) {
	mode := models.PurchaseMode(s)
	if s == "" {
		mode = models.ModeSelf
	}
	if !mode.Valid() {
		return "", connect.NewError(connect.CodeInvalidArgument, &allocation.ValidationError{Field: "mode", Value: s, Err: allocation.ErrUnknownMode})
	}
	return mode, nil
}
