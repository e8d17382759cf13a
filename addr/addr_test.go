package addr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/simplefs/common"
)

const bs = common.BlockSize

func TestExtentsWithinBlock(t *testing.T) {
	exts := Extents(10, 5)
	assert.Equal(t, []Extent{{Slot: 0, Off: 10, Len: 5, Pos: 0}}, exts)

	exts = Extents(bs, bs)
	assert.Equal(t, []Extent{{Slot: 1, Off: 0, Len: bs, Pos: 0}}, exts,
		"aligned full block")
}

func TestExtentsCrossBlocks(t *testing.T) {
	exts := Extents(bs-3, bs+10)
	assert.Equal(t, []Extent{
		{Slot: 0, Off: bs - 3, Len: 3, Pos: 0},
		{Slot: 1, Off: 0, Len: bs, Pos: 3},
		{Slot: 2, Off: 0, Len: 7, Pos: bs + 3},
	}, exts)

	var total uint64
	for _, e := range exts {
		total += e.Len
	}
	assert.Equal(t, bs+10, total)
}

func TestExtentsDirectIndirectBoundary(t *testing.T) {
	off := common.NDIRECT*bs - 1
	exts := Extents(off, 2)
	assert.Equal(t, []Extent{
		{Slot: common.NDIRECT - 1, Off: bs - 1, Len: 1, Pos: 0},
		{Slot: common.NDIRECT, Off: 0, Len: 1, Pos: 1},
	}, exts)
}

func TestExtentsClamped(t *testing.T) {
	assert := assert.New(t)
	assert.Empty(Extents(0, 0), "empty range")
	assert.Empty(Extents(common.MaxFileSize, 10), "starts past the end")

	it := Translate(nil, common.MaxFileSize-5, 100)
	assert.Equal(uint64(5), it.Length())
	assert.True(it.Next())
	assert.Equal(Extent{Slot: common.MAXBLOCKS - 1, Off: bs - 5, Len: 5}, it.Extent())
	assert.False(it.Next())

	exts := Extents(0, common.MaxFileSize)
	assert.Equal(int(common.MAXBLOCKS), len(exts), "whole file is one extent per slot")
	assert.Equal(common.MAXBLOCKS-1, exts[len(exts)-1].Slot)
}

type fakeMap struct {
	calls []uint64
	limit uint64
}

var errFull = errors.New("full")

func (m *fakeMap) Bmap(slot uint64) (common.Bnum, error) {
	m.calls = append(m.calls, slot)
	if slot >= m.limit {
		return 0, errFull
	}
	return 100 + slot, nil
}

func TestTranslateMapper(t *testing.T) {
	assert := assert.New(t)
	m := &fakeMap{limit: 2}
	it := Translate(m, 5, 3*bs)

	assert.True(it.Next())
	assert.Equal(common.Bnum(100), it.Extent().Blkno)
	assert.Equal(MkAddr(100, 5), it.Extent().Addr())
	assert.True(it.Next())
	assert.Equal(common.Bnum(101), it.Extent().Blkno)
	assert.False(it.Next(), "mapper fails on slot 2")
	assert.Equal(errFull, it.Err())
	assert.False(it.Next(), "iterator stays stopped")
	assert.Equal([]uint64{0, 1, 2}, m.calls)

	m.limit = 10
	it.Reset()
	var n uint64
	for it.Next() {
		n += it.Extent().Len
	}
	assert.Nil(it.Err())
	assert.Equal(3*bs, n, "restarted walk covers the whole range")
}
