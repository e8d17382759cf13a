package alloc

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/util"
)

// Alloc is the in-memory free-block map. Bit n is set iff block n is in
// use. Blocks below start (superblock and inode table) are always in use
// and are never handed out or freed.
type Alloc struct {
	bits  *bitset.BitSet
	start uint64
	max   uint64
}

// MkAlloc returns a map over max blocks with [0, start) in use.
func MkAlloc(start uint64, max uint64) *Alloc {
	if start > max {
		start = max
	}
	a := &Alloc{
		bits:  bitset.New(uint(max)),
		start: start,
		max:   max,
	}
	for bn := uint64(0); bn < start; bn++ {
		a.bits.Set(uint(bn))
	}
	return a
}

func (a *Alloc) inRange(bn common.Bnum) bool {
	return bn >= a.start && bn < a.max
}

// MarkUsed marks bn in use. Numbers outside the data region are ignored.
func (a *Alloc) MarkUsed(bn common.Bnum) {
	if !a.inRange(bn) {
		return
	}
	a.bits.Set(uint(bn))
}

// AllocNum finds the lowest free block, marks it used, and returns it.
func (a *Alloc) AllocNum() (common.Bnum, error) {
	n, ok := a.bits.NextClear(uint(a.start))
	if !ok || uint64(n) >= a.max {
		util.DPrintf(1, "AllocNum: no free block of %d\n", a.max)
		return common.NULLBNUM, fmt.Errorf("%w: all %d blocks in use",
			common.ErrOutOfSpace, a.max)
	}
	a.bits.Set(n)
	util.DPrintf(10, "AllocNum: %d\n", n)
	return common.Bnum(n), nil
}

// FreeNum marks bn free. Numbers outside the data region and blocks
// already free are ignored.
func (a *Alloc) FreeNum(bn common.Bnum) {
	if !a.inRange(bn) {
		return
	}
	a.bits.Clear(uint(bn))
}

func (a *Alloc) IsUsed(bn common.Bnum) bool {
	if bn >= a.max {
		return false
	}
	return a.bits.Test(uint(bn))
}

func (a *Alloc) NumFree() uint64 {
	return a.max - uint64(a.bits.Count())
}

// Len is the number of blocks the map covers.
func (a *Alloc) Len() uint64 {
	return a.max
}

// Used lists every block marked in use, in increasing order.
func (a *Alloc) Used() []common.Bnum {
	var used []common.Bnum
	for i, ok := a.bits.NextSet(0); ok && uint64(i) < a.max; i, ok = a.bits.NextSet(i + 1) {
		used = append(used, common.Bnum(i))
	}
	return used
}
