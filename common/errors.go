package common

import "errors"

var (
	ErrNotMounted     = errors.New("file system not mounted")
	ErrAlreadyMounted = errors.New("file system already mounted")
	ErrNotFormatted   = errors.New("device not formatted")
	ErrDeviceTooSmall = errors.New("device too small")
	ErrInvalidInumber = errors.New("invalid inumber")
	ErrOutOfSpace     = errors.New("out of space")
	ErrOutOfInodes    = errors.New("out of inodes")
	ErrFileTooLarge   = errors.New("file too large")
	ErrCorrupt        = errors.New("file system corrupt")
)
