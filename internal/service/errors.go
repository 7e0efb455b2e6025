package service

import (
	"errors"

	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

// storeError maps a repository failure onto the error taxonomy. Errors that are
// already typed pass through so nested service calls keep their meaning.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrCheckViolation) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "record violates a data integrity rule")
	}
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, appErrors.ErrStorageUnavailable.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func permissionError(message string) error {
	return appErrors.Clone(appErrors.ErrForbidden, message)
}

func notFoundError(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}
