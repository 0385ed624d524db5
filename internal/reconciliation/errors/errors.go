package errors

import "errors"

var (
	ErrNotFound = errors.New("reconciliation result not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrUploadNotFound = errors.New("upload not found")

	ErrDuplicateChecksum = errors.New("upload with the same checksum already exists")
)
