package apperrors

import "errors"

var (
	ErrSessionNotFound   = errors.New("clarification session not found")
	ErrEmptyAnswer       = errors.New("answer contains no selected values")
	ErrMissingQuestionID = errors.New("catalog row is missing a question id")
)
