package member

import "errors"

// Sentinel errors for the member service layer.
var (
	ErrNotFound   = errors.New("member not found")
	ErrConflict   = errors.New("member already exists")
	ErrValidation = errors.New("invalid member payload")
	ErrTxFailed   = errors.New("transaction failed")
)
