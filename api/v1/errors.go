package v1

import "errors"

var (
	ErrFetchCtx    = errors.New("fetch request missing in context")
	ErrURLRequired = errors.New("url is required")
	ErrContentType = errors.New("Content-Type must be application/json")
)
