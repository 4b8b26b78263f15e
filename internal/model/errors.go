package model

import "errors"

var (
	ErrInvalidK         = errors.New("k must be at least 1")
	ErrNotClassifier    = errors.New("model was not trained for label prediction")
	ErrEmptyInput       = errors.New("empty token sequence")
	ErrTargetOutOfRange = errors.New("target label out of range")
	ErrNoNegatives      = errors.New("negative table holds no label other than the target")
	ErrCountsMismatch   = errors.New("target counts length does not match label count")
	ErrNoTargetCounts   = errors.New("target counts not set")
)
