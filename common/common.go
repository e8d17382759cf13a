package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	BlockSize uint64 = disk.BlockSize

	// Magic identifies a formatted device in block 0.
	Magic uint32 = 0xf0f03410

	INODESZ  uint64 = 32 // on-disk size
	INODEBLK uint64 = BlockSize / INODESZ

	PTRSZ     uint64 = 4
	NDIRECT   uint64 = 5
	NINDIRECT uint64 = BlockSize / PTRSZ
	MAXBLOCKS uint64 = NDIRECT + NINDIRECT

	MaxFileSize uint64 = MAXBLOCKS * BlockSize

	// one inode-table block per InodeRatio device blocks, rounded up
	InodeRatio uint64 = 10
)

type Inum uint64
type Bnum = uint64

const (
	NULLINUM  Inum = 0
	NULLBNUM  Bnum = 0
	SUPERBNUM Bnum = 0
)
