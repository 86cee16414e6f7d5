package handler

import (
	"errors"

	"poe-item-bank/internal/service"
	"poe-item-bank/pkg/apierror"
)

// mapServiceError translates service-level sentinel errors into API errors.
// Anything unrecognized surfaces as a 500.
func mapServiceError(err error) *apierror.Error {
	var unknownItem service.ErrUnknownItem
	switch {
	case errors.As(err, &unknownItem):
		return apierror.BadRequest(unknownItem.Error())
	case errors.Is(err, service.ErrBlankUser),
		errors.Is(err, service.ErrNoQuantities),
		errors.Is(err, service.ErrNegativeQuantity),
		errors.Is(err, service.ErrBadBankBuyPercent),
		errors.Is(err, service.ErrBadTarget),
		errors.Is(err, service.ErrBadDivines):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, service.ErrQueueChanged):
		return apierror.Conflict(err.Error())
	case errors.Is(err, service.ErrDepositNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return apierror.Unauthorized(err.Error())
	case errors.Is(err, service.ErrInvalidSession):
		return apierror.Unauthorized(err.Error())
	default:
		return apierror.InternalError("")
	}
}
