package fs

import (
	"fmt"
	"io"
	"strings"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/layout"
	"github.com/mit-pdos/simplefs/super"
)

type Stats struct {
	NBlocks      uint64
	NInodeBlocks uint64
	NInodes      uint64
	FreeBlocks   uint64
	FreeInodes   uint64
}

// Stat reports the geometry and free space of the mounted file system.
func (fs *FileSystem) Stat() (Stats, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return Stats{}, common.ErrNotMounted
	}
	var used uint64
	err := fs.inodes.Each(func(ino *inode.Inode) error {
		used++
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		NBlocks:      fs.sb.Size,
		NInodeBlocks: fs.sb.NInodeBlk,
		NInodes:      fs.sb.NInode(),
		FreeBlocks:   fs.alloc.NumFree(),
		FreeInodes:   fs.sb.NInode() - used,
	}, nil
}

func formatBnums(bns []common.Bnum) string {
	var s []string
	for _, bn := range bns {
		if bn != common.NULLBNUM {
			s = append(s, fmt.Sprintf("%d", bn))
		}
	}
	return strings.Join(s, " ")
}

// Debug writes a human-readable dump of the superblock and every valid
// inode to w. It does not need a mounted session.
func (fs *FileSystem) Debug(w io.Writer) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	blk, err := fs.d.Read(common.SUPERBNUM)
	if err != nil {
		return err
	}
	dec, err := layout.Decode(layout.KindSuper, blk)
	if err != nil {
		return err
	}
	sb := dec.(*layout.Superblock)
	fmt.Fprintf(w, "superblock:\n")
	if sb.Magic == common.Magic {
		fmt.Fprintf(w, "    magic number is valid\n")
	} else {
		fmt.Fprintf(w, "    magic number is invalid (%#x)\n", sb.Magic)
	}
	fmt.Fprintf(w, "    %d blocks\n", sb.NBlocks)
	fmt.Fprintf(w, "    %d inode blocks\n", sb.NInodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sb.NInodes)

	fsb := fs.sb
	tbl := fs.inodes
	if fsb == nil {
		fsb, err = super.Load(fs.d)
		if err != nil {
			return err
		}
		tbl = inode.MkTable(fs.d, fsb)
	}
	return tbl.Each(func(ino *inode.Inode) error {
		fmt.Fprintf(w, "inode %d:\n", ino.Inum)
		fmt.Fprintf(w, "    size: %d bytes\n", ino.Size)
		fmt.Fprintf(w, "    direct blocks: %s\n", formatBnums(ino.Direct[:]))
		if ino.Indirect == common.NULLBNUM {
			return nil
		}
		fmt.Fprintf(w, "    indirect block: %d\n", ino.Indirect)
		if !fsb.IsDataBnum(ino.Indirect) {
			return nil
		}
		ind, err := tbl.ReadIndirect(ino.Indirect)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "    indirect data blocks: %s\n", formatBnums(ind.Ptrs[:]))
		return nil
	})
}
