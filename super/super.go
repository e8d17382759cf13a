package super

import (
	"fmt"

	"github.com/mit-pdos/simplefs/addr"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/layout"
	"github.com/mit-pdos/simplefs/util"
)

// FsSuper is the geometry of a file system:
//
//	[ super | inode table (NInodeBlk) | data blocks ... ]
//	  0       1                         DataStart()      Size
type FsSuper struct {
	Size      uint64
	NInodeBlk uint64
	nInode    uint64
}

// MkFsSuper computes the geometry for a device of sz blocks.
func MkFsSuper(sz uint64) (*FsSuper, error) {
	if sz < 2 {
		return nil, fmt.Errorf("%w: %d blocks", common.ErrDeviceTooSmall, sz)
	}
	if sz > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%d blocks does not fit a 32-bit block number", sz)
	}
	ninodeblk := util.RoundUp(sz, common.InodeRatio)
	return &FsSuper{
		Size:      sz,
		NInodeBlk: ninodeblk,
		nInode:    ninodeblk * common.INODEBLK,
	}, nil
}

// Validate parses block 0 of a device of devSize blocks.
func Validate(blk disk.Block, devSize uint64) (*FsSuper, error) {
	dec, err := layout.Decode(layout.KindSuper, blk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNotFormatted, err)
	}
	sb := dec.(*layout.Superblock)
	if sb.Magic != common.Magic {
		return nil, fmt.Errorf("%w: bad magic %#x", common.ErrNotFormatted, sb.Magic)
	}
	fs := &FsSuper{
		Size:      uint64(sb.NBlocks),
		NInodeBlk: uint64(sb.NInodeBlocks),
		nInode:    uint64(sb.NInodes),
	}
	if fs.Size > devSize {
		return nil, fmt.Errorf("%w: %d blocks on a %d block device",
			common.ErrNotFormatted, fs.Size, devSize)
	}
	if fs.NInodeBlk == 0 || fs.NInodeBlk >= fs.Size {
		return nil, fmt.Errorf("%w: %d inode blocks of %d",
			common.ErrNotFormatted, fs.NInodeBlk, fs.Size)
	}
	if fs.nInode != fs.NInodeBlk*common.INODEBLK {
		return nil, fmt.Errorf("%w: %d inodes in %d inode blocks",
			common.ErrNotFormatted, fs.nInode, fs.NInodeBlk)
	}
	return fs, nil
}

// Load reads and validates the superblock of d.
func Load(d disk.Disk) (*FsSuper, error) {
	sz, err := d.Size()
	if err != nil {
		return nil, err
	}
	blk, err := d.Read(common.SUPERBNUM)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	return Validate(blk, sz)
}

func (fs *FsSuper) Encode() disk.Block {
	sb := &layout.Superblock{
		Magic:        common.Magic,
		NBlocks:      uint32(fs.Size),
		NInodeBlocks: uint32(fs.NInodeBlk),
		NInodes:      uint32(fs.nInode),
	}
	return sb.Encode()
}

// Format writes the superblock and a zeroed inode table.
func (fs *FsSuper) Format(d disk.Disk) error {
	util.DPrintf(1, "Format: %d blocks, %d inode blocks, %d inodes\n",
		fs.Size, fs.NInodeBlk, fs.nInode)
	if err := d.Write(common.SUPERBNUM, fs.Encode()); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	zero := make(disk.Block, common.BlockSize)
	for bn := fs.InodeStart(); bn < fs.DataStart(); bn++ {
		if err := d.Write(bn, zero); err != nil {
			return fmt.Errorf("writing inode block %d: %w", bn, err)
		}
	}
	return d.Barrier()
}

func (fs *FsSuper) MaxBnum() common.Bnum {
	return common.Bnum(fs.Size)
}

func (fs *FsSuper) InodeStart() common.Bnum {
	return common.SUPERBNUM + 1
}

func (fs *FsSuper) DataStart() common.Bnum {
	return fs.InodeStart() + common.Bnum(fs.NInodeBlk)
}

func (fs *FsSuper) NInode() uint64 {
	return fs.nInode
}

// IsDataBnum reports whether bn may be referenced by an inode.
func (fs *FsSuper) IsDataBnum(bn common.Bnum) bool {
	return bn >= fs.DataStart() && bn < fs.MaxBnum()
}

// Inum2Addr locates an inode's record: block number and byte offset.
func (fs *FsSuper) Inum2Addr(inum common.Inum) (addr.Addr, bool) {
	if inum == common.NULLINUM || uint64(inum) > fs.nInode {
		return addr.Addr{}, false
	}
	n := uint64(inum) - 1
	return addr.MkAddr(fs.InodeStart()+n/common.INODEBLK,
		(n%common.INODEBLK)*common.INODESZ), true
}

// Addr2Inum is the inverse of Inum2Addr.
func (fs *FsSuper) Addr2Inum(a addr.Addr) common.Inum {
	slot := a.Off / common.INODESZ
	return common.Inum((a.Blkno-fs.InodeStart())*common.INODEBLK + slot + 1)
}
