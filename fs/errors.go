package fs

import (
	"github.com/mit-pdos/simplefs/common"
)

var (
	ErrNotMounted     = common.ErrNotMounted
	ErrAlreadyMounted = common.ErrAlreadyMounted
	ErrNotFormatted   = common.ErrNotFormatted
	ErrDeviceTooSmall = common.ErrDeviceTooSmall
	ErrInvalidInumber = common.ErrInvalidInumber
	ErrOutOfSpace     = common.ErrOutOfSpace
	ErrOutOfInodes    = common.ErrOutOfInodes
	ErrFileTooLarge   = common.ErrFileTooLarge
	ErrCorrupt        = common.ErrCorrupt
)
