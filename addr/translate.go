package addr

import (
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/util"
)

// Mapper resolves a logical block slot of a file to a disk block.
//
// Slots [0, NDIRECT) are the inode's direct pointers and slots
// [NDIRECT, MAXBLOCKS) the entries of its indirect block.
type Mapper interface {
	Bmap(slot uint64) (common.Bnum, error)
}

// Extent is the part of a byte range that falls in one block slot.
type Extent struct {
	Slot  uint64
	Blkno common.Bnum // NULLBNUM if the slot is unset
	Off   uint64      // start within the block
	Len   uint64
	Pos   uint64 // offset of this extent from the start of the range
}

func (e Extent) Addr() Addr {
	return MkAddr(e.Blkno, e.Off)
}

// Iter walks the extents covering [off, off+length) in slot order.
type Iter struct {
	m      Mapper
	off    uint64
	length uint64
	pos    uint64
	ext    Extent
	err    error
}

// Translate returns an iterator over [off, off+length). The range is cut
// short at MaxFileSize; m may be nil, in which case every Blkno is
// NULLBNUM.
func Translate(m Mapper, off uint64, length uint64) *Iter {
	if off >= common.MaxFileSize {
		length = 0
	} else {
		length = util.Min(length, common.MaxFileSize-off)
	}
	return &Iter{m: m, off: off, length: length}
}

// Length is the number of bytes the iterator covers, after clamping.
func (it *Iter) Length() uint64 {
	return it.length
}

// Next advances to the next extent, resolving its block through the
// Mapper. It returns false when the range is covered or Bmap fails.
func (it *Iter) Next() bool {
	if it.err != nil || it.pos >= it.length {
		return false
	}
	cur := it.off + it.pos
	slot := cur / common.BlockSize
	start := cur % common.BlockSize
	n := util.Min(it.length-it.pos, common.BlockSize-start)
	var bn common.Bnum
	if it.m != nil {
		b, err := it.m.Bmap(slot)
		if err != nil {
			it.err = err
			return false
		}
		bn = b
	}
	it.ext = Extent{Slot: slot, Blkno: bn, Off: start, Len: n, Pos: it.pos}
	it.pos += n
	return true
}

func (it *Iter) Extent() Extent {
	return it.ext
}

// Err is the error from the Mapper that stopped the walk, if any.
func (it *Iter) Err() error {
	return it.err
}

// Reset restarts the walk from the beginning of the range.
func (it *Iter) Reset() {
	it.pos = 0
	it.ext = Extent{}
	it.err = nil
}

// Extents collects every extent of [off, off+length) without resolving
// blocks.
func Extents(off uint64, length uint64) []Extent {
	var exts []Extent
	it := Translate(nil, off, length)
	for it.Next() {
		exts = append(exts, it.Extent())
	}
	return exts
}
