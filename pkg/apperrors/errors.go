package apperrors

import "errors"

var (
	ErrConfig           = errors.New("invalid graph configuration")
	ErrNoPath           = errors.New("no join path within hop bound")
	ErrCorrectionFailed = errors.New("query could not be repaired")
	ErrUnfixable        = errors.New("reasoner reported query as unfixable")
)
