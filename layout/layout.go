// Package layout encodes and decodes the on-disk block kinds.
//
// Every field is a little-endian u32 at a fixed offset, so the layout does
// not depend on in-memory struct layout:
//
//	superblock:    magic, nblocks, ninodeblocks, ninodes, zero...
//	inode record:  valid, size, direct[NDIRECT], indirect
//	pointer block: ptr[NINDIRECT]
package layout

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/util"
)

// Kind tags how a block's bytes are interpreted.
type Kind uint8

const (
	KindRaw Kind = iota
	KindSuper
	KindInodes
	KindPointers
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindSuper:
		return "superblock"
	case KindInodes:
		return "inode-table"
	case KindPointers:
		return "pointers"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Block is one decoded disk block.
type Block interface {
	Kind() Kind
	Encode() disk.Block
}

// Decode interprets blk as the given kind.
func Decode(k Kind, blk disk.Block) (Block, error) {
	if uint64(len(blk)) != common.BlockSize {
		return nil, fmt.Errorf("decode %v: expected %d bytes, got %d", k, common.BlockSize, len(blk))
	}
	switch k {
	case KindRaw:
		return Raw(util.CloneByteSlice(blk)), nil
	case KindSuper:
		return DecodeSuper(blk), nil
	case KindInodes:
		return DecodeInodeBlock(blk), nil
	case KindPointers:
		return DecodePointerBlock(blk), nil
	}
	return nil, fmt.Errorf("decode: unknown block kind %v", k)
}

// Raw is a data block. Raw(nil).Encode() is a zeroed block.
type Raw disk.Block

func (r Raw) Kind() Kind { return KindRaw }

func (r Raw) Encode() disk.Block {
	blk := make(disk.Block, common.BlockSize)
	copy(blk, r)
	return blk
}

type Superblock struct {
	Magic        uint32
	NBlocks      uint32
	NInodeBlocks uint32
	NInodes      uint32
}

func (sb *Superblock) Kind() Kind { return KindSuper }

func (sb *Superblock) Encode() disk.Block {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(sb.NBlocks)
	enc.PutInt32(sb.NInodeBlocks)
	enc.PutInt32(sb.NInodes)
	return enc.Finish()
}

func DecodeSuper(blk disk.Block) *Superblock {
	dec := marshal.NewDec(blk)
	sb := &Superblock{}
	sb.Magic = dec.GetInt32()
	sb.NBlocks = dec.GetInt32()
	sb.NInodeBlocks = dec.GetInt32()
	sb.NInodes = dec.GetInt32()
	return sb
}

// Inode is the in-memory form of one inode record.
type Inode struct {
	Valid    bool
	Size     uint64
	Direct   [common.NDIRECT]common.Bnum
	Indirect common.Bnum
}

func (ino *Inode) encode(enc marshal.Enc) {
	var valid uint32
	if ino.Valid {
		valid = 1
	}
	enc.PutInt32(valid)
	enc.PutInt32(uint32(ino.Size))
	for _, bn := range ino.Direct {
		enc.PutInt32(uint32(bn))
	}
	enc.PutInt32(uint32(ino.Indirect))
}

func (ino *Inode) decode(dec marshal.Dec) {
	ino.Valid = dec.GetInt32() != 0
	ino.Size = uint64(dec.GetInt32())
	for i := range ino.Direct {
		ino.Direct[i] = common.Bnum(dec.GetInt32())
	}
	ino.Indirect = common.Bnum(dec.GetInt32())
}

// EncodeInode returns the INODESZ-byte record for ino.
func EncodeInode(ino *Inode) []byte {
	enc := marshal.NewEnc(common.INODESZ)
	ino.encode(enc)
	return enc.Finish()
}

// DecodeInode parses one INODESZ-byte record.
func DecodeInode(b []byte) *Inode {
	ino := &Inode{}
	ino.decode(marshal.NewDec(b[:common.INODESZ]))
	return ino
}

// InodeBlock is one block of the inode table.
type InodeBlock struct {
	Inodes [common.INODEBLK]Inode
}

func (ib *InodeBlock) Kind() Kind { return KindInodes }

func (ib *InodeBlock) Encode() disk.Block {
	enc := marshal.NewEnc(common.BlockSize)
	for i := range ib.Inodes {
		ib.Inodes[i].encode(enc)
	}
	return enc.Finish()
}

func DecodeInodeBlock(blk disk.Block) *InodeBlock {
	dec := marshal.NewDec(blk)
	ib := &InodeBlock{}
	for i := range ib.Inodes {
		ib.Inodes[i].decode(dec)
	}
	return ib
}

// PointerBlock is an indirect block: NINDIRECT block numbers, 0 for unset.
type PointerBlock struct {
	Ptrs [common.NINDIRECT]common.Bnum
}

func (pb *PointerBlock) Kind() Kind { return KindPointers }

func (pb *PointerBlock) Encode() disk.Block {
	enc := marshal.NewEnc(common.BlockSize)
	for _, bn := range pb.Ptrs {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

func DecodePointerBlock(blk disk.Block) *PointerBlock {
	dec := marshal.NewDec(blk)
	pb := &PointerBlock{}
	for i := range pb.Ptrs {
		pb.Ptrs[i] = common.Bnum(dec.GetInt32())
	}
	return pb
}
