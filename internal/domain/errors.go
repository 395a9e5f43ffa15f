package domain

import "errors"

var (
	ErrNotFound    = errors.New("resource not found")
	ErrNoDocuments = errors.New("document supply is empty")
)
