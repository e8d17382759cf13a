package alloc

import (
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/util"
)

// Walker enumerates the blocks reachable from valid inodes: every direct
// pointer, every indirect block, and every entry of those indirect blocks.
type Walker interface {
	WalkBlocks(visit func(bn common.Bnum)) error
}

// Rebuild reconstructs the free-block map for a max-block device whose
// data region starts at start. Nothing is persisted; reachability from
// the inode table is the only record of which blocks are in use.
// Pointers outside the data region are not trusted and leave no mark.
func Rebuild(start uint64, max uint64, w Walker) (*Alloc, error) {
	a := MkAlloc(start, max)
	err := w.WalkBlocks(func(bn common.Bnum) {
		if bn == common.NULLBNUM {
			return
		}
		if !a.inRange(bn) {
			util.DPrintf(5, "Rebuild: ignoring pointer %d\n", bn)
			return
		}
		a.bits.Set(uint(bn))
	})
	if err != nil {
		return nil, err
	}
	util.DPrintf(1, "Rebuild: %d of %d blocks free\n", a.NumFree(), max)
	return a, nil
}
