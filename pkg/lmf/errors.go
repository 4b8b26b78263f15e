package lmf

import "errors"

var (
	ErrInvalidMagic       = errors.New("invalid LMF magic")
	ErrUnsupportedVersion = errors.New("unsupported LMF version")
	ErrCorruptFile        = errors.New("corrupt LMF file")
)
