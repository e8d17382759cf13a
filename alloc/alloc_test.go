package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/simplefs/common"
)

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(1, max)

	assert.Equal(max-1, a.NumFree(), "everything (but 0) should be initially free")

	n, err := a.AllocNum()
	assert.Nil(err)
	assert.NotEqual(uint64(0), n, "should not allocate 0")

	a.MarkUsed(n + 1)
	n2, err := a.AllocNum()
	assert.Nil(err)
	assert.NotEqual(n+1, n2, "should not allocate something marked used")

	assert.Equal(max-4, a.NumFree(), "should have used 4 items")

	a.FreeNum(n)
	a.FreeNum(n2)
	assert.Equal(max-2, a.NumFree(), "should have freed")
}

func TestAllocLowestFirst(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(3, 10)
	assert.Equal([]common.Bnum{0, 1, 2}, a.Used(), "metadata is always used")

	for want := common.Bnum(3); want < 10; want++ {
		bn, err := a.AllocNum()
		assert.Nil(err)
		assert.Equal(want, bn, "consecutive allocations are distinct")
		assert.True(a.IsUsed(bn))
	}

	_, err := a.AllocNum()
	assert.True(errors.Is(err, common.ErrOutOfSpace))

	a.FreeNum(6)
	bn, err := a.AllocNum()
	assert.Nil(err)
	assert.Equal(common.Bnum(6), bn, "freed block is reused")
}

func TestFreeIgnoresMetadata(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(3, 10)
	a.FreeNum(0)
	a.FreeNum(2)
	a.FreeNum(10)
	a.FreeNum(1000)
	assert.True(a.IsUsed(0))
	assert.True(a.IsUsed(2))
	assert.False(a.IsUsed(1000))
	assert.Equal(uint64(7), a.NumFree())

	a.FreeNum(5)
	assert.Equal(uint64(7), a.NumFree(), "freeing a free block is a no-op")

	a.MarkUsed(1)
	a.MarkUsed(50)
	assert.Equal(uint64(7), a.NumFree(), "metadata and out-of-range marks are ignored")
}

type fakeWalker []common.Bnum

func (w fakeWalker) WalkBlocks(visit func(bn common.Bnum)) error {
	for _, bn := range w {
		visit(bn)
	}
	return nil
}

type failWalker struct{}

var errWalk = errors.New("walk failed")

func (failWalker) WalkBlocks(visit func(bn common.Bnum)) error {
	return errWalk
}

func TestRebuild(t *testing.T) {
	assert := assert.New(t)
	a, err := Rebuild(3, 20, fakeWalker{0, 5, 7, 7, 1, 2, 19, 20, 999})
	assert.Nil(err)
	assert.Equal([]common.Bnum{0, 1, 2, 5, 7, 19}, a.Used())
	assert.Equal(uint64(14), a.NumFree())

	a, err = Rebuild(3, 20, fakeWalker{})
	assert.Nil(err)
	assert.Equal([]common.Bnum{0, 1, 2}, a.Used(), "fresh file system")

	_, err = Rebuild(3, 20, failWalker{})
	assert.Equal(errWalk, err)
}
