package errors

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrNodeNotFound    = errors.New("node not found")

	ErrResolverFailure   = errors.New("grant resolver failure")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
)
