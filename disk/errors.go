package disk

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("block address out of bounds")
	ErrBlockSize   = errors.New("buffer is not block-sized")
)

func checkAddr(a uint64, numBlocks uint64) error {
	if a >= numBlocks {
		return fmt.Errorf("%w: %d >= %d", ErrOutOfBounds, a, numBlocks)
	}
	return nil
}

func checkBlock(b Block) error {
	if uint64(len(b)) != BlockSize {
		return fmt.Errorf("%w: %d bytes", ErrBlockSize, len(b))
	}
	return nil
}
