// Package fs is a minimal inode file system on a block device.
//
// Files are named by inumber and hold a byte stream of at most
// common.MaxFileSize bytes, addressed through NDIRECT direct pointers and
// one indirect block. The free-block map is not stored on disk; Mount
// rebuilds it from the inode table.
//
// A FileSystem is one mount session. Its methods are serialized, and only
// one session may drive a device at a time.
package fs

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/simplefs/addr"
	"github.com/mit-pdos/simplefs/alloc"
	"github.com/mit-pdos/simplefs/buf"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/layout"
	"github.com/mit-pdos/simplefs/super"
	"github.com/mit-pdos/simplefs/util"
)

type FileSystem struct {
	mu     *sync.Mutex
	d      disk.Disk
	sb     *super.FsSuper // nil until mounted
	inodes *inode.Table
	alloc  *alloc.Alloc
}

// New returns an unmounted session on d.
func New(d disk.Disk) *FileSystem {
	return &FileSystem{
		mu: new(sync.Mutex),
		d:  d,
	}
}

func (fs *FileSystem) mounted() bool {
	return fs.sb != nil
}

// Format writes a fresh superblock and an empty inode table, sized from
// the device. It refuses to run while the session is mounted.
func (fs *FileSystem) Format() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.mounted() {
		return fmt.Errorf("format: %w", common.ErrAlreadyMounted)
	}
	sz, err := fs.d.Size()
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	sb, err := super.MkFsSuper(sz)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := sb.Format(fs.d); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// Mount validates the superblock and rebuilds the free-block map.
func (fs *FileSystem) Mount() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.mounted() {
		return fmt.Errorf("mount: %w", common.ErrAlreadyMounted)
	}
	sb, err := super.Load(fs.d)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	tbl := inode.MkTable(fs.d, sb)
	a, err := alloc.Rebuild(sb.DataStart(), sb.Size, tbl)
	if err != nil {
		return fmt.Errorf("mount: rebuilding free map: %w", err)
	}
	fs.sb = sb
	fs.inodes = tbl
	fs.alloc = a
	util.DPrintf(1, "Mount: %d blocks, %d inodes, %d free blocks\n",
		sb.Size, sb.NInode(), a.NumFree())
	return nil
}

// Unmount flushes the device and drops the session's in-memory state.
func (fs *FileSystem) Unmount() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return fmt.Errorf("unmount: %w", common.ErrNotMounted)
	}
	err := fs.d.Barrier()
	fs.sb = nil
	fs.inodes = nil
	fs.alloc = nil
	return err
}

// Create allocates an empty inode.
func (fs *FileSystem) Create() (common.Inum, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return common.NULLINUM, common.ErrNotMounted
	}
	return fs.inodes.Create()
}

// Delete frees inum's blocks and invalidates it.
func (fs *FileSystem) Delete(inum common.Inum) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return common.ErrNotMounted
	}
	return fs.inodes.Delete(inum, fs.alloc)
}

func (fs *FileSystem) GetSize(inum common.Inum) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return 0, common.ErrNotMounted
	}
	return fs.inodes.GetSize(inum)
}

// Read copies up to len(p) bytes of inum starting at off into p.
//
// The count is short at the end of the file and at the first hole (an
// unset block pointer) in the range.
func (fs *FileSystem) Read(inum common.Inum, p []byte, off uint64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return 0, common.ErrNotMounted
	}
	ino, err := fs.inodes.Lookup(inum)
	if err != nil {
		return 0, err
	}
	if off >= ino.Size {
		return 0, nil
	}
	length := util.Min(uint64(len(p)), ino.Size-off)

	m := &readMap{sb: fs.sb, tbl: fs.inodes, ino: ino}
	it := addr.Translate(m, off, length)
	var n uint64
	for it.Next() {
		e := it.Extent()
		if e.Blkno == common.NULLBNUM {
			util.DPrintf(5, "Read: inum %d hole at slot %d\n", inum, e.Slot)
			break
		}
		b, err := buf.MkBufLoad(fs.d, e.Blkno)
		if err != nil {
			return int(n), err
		}
		copy(p[e.Pos:e.Pos+e.Len], b.Object(e.Addr(), e.Len))
		n += e.Len
	}
	return int(n), it.Err()
}

// Write copies p into inum at off, allocating blocks for unset slots.
//
// On ErrOutOfSpace or ErrFileTooLarge the returned count is the prefix of
// p that was written, and the inode keeps it.
func (fs *FileSystem) Write(inum common.Inum, p []byte, off uint64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.mounted() {
		return 0, common.ErrNotMounted
	}
	ino, err := fs.inodes.Lookup(inum)
	if err != nil {
		return 0, err
	}

	if util.SumOverflows(off, uint64(len(p))) {
		return 0, fmt.Errorf("%w: write of %d bytes at %d", common.ErrFileTooLarge, len(p), off)
	}

	m := &writeMap{
		sb:    fs.sb,
		d:     fs.d,
		alloc: fs.alloc,
		ino:   ino,
		fresh: make(map[common.Bnum]bool),
	}
	it := addr.Translate(m, off, uint64(len(p)))
	var n uint64
	var werr error
	for it.Next() {
		e := it.Extent()
		var b *buf.Buf
		if m.fresh[e.Blkno] {
			b = buf.MkBuf(e.Blkno, layout.Raw(nil).Encode())
		} else {
			b, werr = buf.MkBufLoad(fs.d, e.Blkno)
			if werr != nil {
				break
			}
		}
		b.Install(e.Addr(), p[e.Pos:e.Pos+e.Len])
		if werr = b.WriteDirect(fs.d); werr != nil {
			if m.fresh[e.Blkno] {
				m.release(e.Slot, e.Blkno)
			}
			break
		}
		delete(m.fresh, e.Blkno)
		n += e.Len
	}
	if werr == nil {
		werr = it.Err()
	}
	if werr == nil && n < uint64(len(p)) {
		werr = fmt.Errorf("%w: write of %d bytes at %d", common.ErrFileTooLarge, len(p), off)
	}
	if werr != nil {
		util.DPrintf(1, "Write: inum %d wrote %d of %d: %v\n", inum, n, len(p), werr)
	}

	// data before the pointers that reference it, the inode last
	if err := fs.d.Barrier(); err != nil {
		return int(n), err
	}
	if m.ind != nil && m.ind.IsDirty() {
		if err := m.ind.WriteDirect(fs.d); err != nil {
			return int(n), err
		}
	}
	if sz := util.Max(ino.Size, off+n); n > 0 && sz != ino.Size {
		ino.Size = sz
		m.inoDirty = true
	}
	if m.inoDirty {
		if err := fs.inodes.Persist(ino); err != nil {
			return int(n), err
		}
	}
	return int(n), werr
}
