// Package inode manages the inode table: a linear array of fixed-size
// records packed INODEBLK to a block in blocks [1, 1+NInodeBlk).
//
// Inumbers are 1-based positions in the table. A record keeps its slot for
// good; delete clears it and flips its valid flag, and create reuses the
// lowest invalid slot.
package inode

import (
	"fmt"

	"github.com/mit-pdos/simplefs/addr"
	"github.com/mit-pdos/simplefs/alloc"
	"github.com/mit-pdos/simplefs/buf"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/layout"
	"github.com/mit-pdos/simplefs/super"
	"github.com/mit-pdos/simplefs/util"
)

// Inode is a decoded inode record together with its location.
type Inode struct {
	layout.Inode
	Inum common.Inum
	addr addr.Addr
}

// Table reads and writes inode records. Inode-table blocks are cached
// once an operation has touched them; writes go straight through.
type Table struct {
	d     disk.Disk
	sb    *super.FsSuper
	cache *buf.BufMap
}

func MkTable(d disk.Disk, sb *super.FsSuper) *Table {
	return &Table{
		d:     d,
		sb:    sb,
		cache: buf.MkBufMap(),
	}
}

func (t *Table) loadBlock(bn common.Bnum) (*buf.Buf, error) {
	b := t.cache.Lookup(bn)
	if b != nil {
		return b, nil
	}
	b, err := buf.MkBufLoad(t.d, bn)
	if err != nil {
		return nil, err
	}
	t.cache.Insert(b)
	return b, nil
}

// peekBlock is loadBlock without filling the cache.
func (t *Table) peekBlock(bn common.Bnum) (*buf.Buf, error) {
	b := t.cache.Lookup(bn)
	if b != nil {
		return b, nil
	}
	return buf.MkBufLoad(t.d, bn)
}

func (t *Table) decode(b *buf.Buf, a addr.Addr) *Inode {
	rec := layout.DecodeInode(b.Object(a, common.INODESZ))
	return &Inode{Inode: *rec, Inum: t.sb.Addr2Inum(a), addr: a}
}

// Create claims the first invalid slot and returns its inumber.
func (t *Table) Create() (common.Inum, error) {
	for bn := t.sb.InodeStart(); bn < t.sb.DataStart(); bn++ {
		b, err := t.loadBlock(bn)
		if err != nil {
			return common.NULLINUM, err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			a := addr.MkAddr(bn, slot*common.INODESZ)
			ino := t.decode(b, a)
			if ino.Valid {
				continue
			}
			ino.Inode = layout.Inode{Valid: true}
			if err := t.Persist(ino); err != nil {
				return common.NULLINUM, err
			}
			util.DPrintf(1, "Create: inum %d\n", ino.Inum)
			return ino.Inum, nil
		}
	}
	return common.NULLINUM, fmt.Errorf("%w: all %d inodes in use",
		common.ErrOutOfInodes, t.sb.NInode())
}

// Lookup returns a copy of a valid inode's record.
func (t *Table) Lookup(inum common.Inum) (*Inode, error) {
	a, ok := t.sb.Inum2Addr(inum)
	if !ok {
		return nil, fmt.Errorf("%w: %d out of range", common.ErrInvalidInumber, inum)
	}
	b, err := t.loadBlock(a.Blkno)
	if err != nil {
		return nil, err
	}
	ino := t.decode(b, a)
	if !ino.Valid {
		return nil, fmt.Errorf("%w: %d not in use", common.ErrInvalidInumber, inum)
	}
	return ino, nil
}

// Persist writes ino back to its slot and the containing block to disk.
func (t *Table) Persist(ino *Inode) error {
	b, err := t.loadBlock(ino.addr.Blkno)
	if err != nil {
		return err
	}
	b.Install(ino.addr, layout.EncodeInode(&ino.Inode))
	return b.WriteDirect(t.d)
}

func (t *Table) GetSize(inum common.Inum) (uint64, error) {
	ino, err := t.Lookup(inum)
	if err != nil {
		return 0, err
	}
	return ino.Size, nil
}

// ReadIndirect loads the pointer block at bn.
func (t *Table) ReadIndirect(bn common.Bnum) (*layout.PointerBlock, error) {
	blk, err := t.d.Read(bn)
	if err != nil {
		return nil, fmt.Errorf("reading indirect block %d: %w", bn, err)
	}
	dec, err := layout.Decode(layout.KindPointers, blk)
	if err != nil {
		return nil, fmt.Errorf("decoding indirect block %d: %w", bn, err)
	}
	return dec.(*layout.PointerBlock), nil
}

// walkInode visits each in-range block ino references: direct pointers,
// the indirect block, then the indirect block's entries.
func (t *Table) walkInode(ino *Inode, visit func(bn common.Bnum)) error {
	for _, bn := range ino.Direct {
		if t.sb.IsDataBnum(bn) {
			visit(bn)
		}
	}
	if !t.sb.IsDataBnum(ino.Indirect) {
		return nil
	}
	visit(ino.Indirect)
	ind, err := t.ReadIndirect(ino.Indirect)
	if err != nil {
		return err
	}
	for _, bn := range ind.Ptrs {
		if t.sb.IsDataBnum(bn) {
			visit(bn)
		}
	}
	return nil
}

// Blocks lists the in-range blocks ino references, each indirect block
// before its entries.
func (t *Table) Blocks(ino *Inode) ([]common.Bnum, error) {
	var bns []common.Bnum
	err := t.walkInode(ino, func(bn common.Bnum) {
		bns = append(bns, bn)
	})
	return bns, err
}

// Each calls f on every valid inode in inumber order.
func (t *Table) Each(f func(ino *Inode) error) error {
	for bn := t.sb.InodeStart(); bn < t.sb.DataStart(); bn++ {
		b, err := t.peekBlock(bn)
		if err != nil {
			return err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := t.decode(b, addr.MkAddr(bn, slot*common.INODESZ))
			if !ino.Valid {
				continue
			}
			if err := f(ino); err != nil {
				return err
			}
		}
	}
	return nil
}

// WalkBlocks visits every block reachable from a valid inode. It
// implements alloc.Walker.
func (t *Table) WalkBlocks(visit func(bn common.Bnum)) error {
	return t.Each(func(ino *Inode) error {
		return t.walkInode(ino, visit)
	})
}

var _ alloc.Walker = (*Table)(nil)

// Delete frees every block of inum, then clears and invalidates its slot.
func (t *Table) Delete(inum common.Inum, a *alloc.Alloc) error {
	ino, err := t.Lookup(inum)
	if err != nil {
		return err
	}
	freed, err := t.Blocks(ino)
	if err != nil {
		return err
	}
	for _, bn := range freed {
		a.FreeNum(bn)
	}
	ino.Inode = layout.Inode{}
	util.DPrintf(1, "Delete: inum %d freed %d blocks\n", inum, len(freed))
	return t.Persist(ino)
}

// Cached reports how many inode-table blocks are held in memory.
func (t *Table) Cached() int {
	return t.cache.Len()
}
