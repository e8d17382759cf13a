package fs

import (
	"fmt"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/inode"
)

// Check verifies the mounted file system: every pointer of a valid inode
// is unset or names a data block, no block is referenced twice, sizes fit
// the addressable range, and the free-block map matches reachability.
// The first problem is returned wrapped in ErrCorrupt.
func (fs *FileSystem) Check() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return common.ErrNotMounted
	}
	owner := make(map[common.Bnum]common.Inum)
	claim := func(inum common.Inum, what string, bn common.Bnum) error {
		if bn == common.NULLBNUM {
			return nil
		}
		if !fs.sb.IsDataBnum(bn) {
			return fmt.Errorf("%w: inode %d %s points at block %d outside the data region",
				common.ErrCorrupt, inum, what, bn)
		}
		if prev, ok := owner[bn]; ok {
			return fmt.Errorf("%w: block %d referenced by inode %d and inode %d",
				common.ErrCorrupt, bn, prev, inum)
		}
		owner[bn] = inum
		if !fs.alloc.IsUsed(bn) {
			return fmt.Errorf("%w: block %d of inode %d is marked free",
				common.ErrCorrupt, bn, inum)
		}
		return nil
	}
	err := fs.inodes.Each(func(ino *inode.Inode) error {
		if ino.Size > common.MaxFileSize {
			return fmt.Errorf("%w: inode %d size %d exceeds %d",
				common.ErrCorrupt, ino.Inum, ino.Size, common.MaxFileSize)
		}
		for i, bn := range ino.Direct {
			if err := claim(ino.Inum, fmt.Sprintf("direct[%d]", i), bn); err != nil {
				return err
			}
		}
		if err := claim(ino.Inum, "indirect", ino.Indirect); err != nil {
			return err
		}
		if ino.Indirect == common.NULLBNUM {
			return nil
		}
		ind, err := fs.inodes.ReadIndirect(ino.Indirect)
		if err != nil {
			return err
		}
		for i, bn := range ind.Ptrs {
			if err := claim(ino.Inum, fmt.Sprintf("indirect[%d]", i), bn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, bn := range fs.alloc.Used() {
		if bn < fs.sb.DataStart() {
			continue
		}
		if _, ok := owner[bn]; !ok {
			return fmt.Errorf("%w: block %d is marked used but unreachable",
				common.ErrCorrupt, bn)
		}
	}
	return nil
}
