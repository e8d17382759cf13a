package fs

import (
	"github.com/mit-pdos/simplefs/addr"
	"github.com/mit-pdos/simplefs/alloc"
	"github.com/mit-pdos/simplefs/buf"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/inode"
	"github.com/mit-pdos/simplefs/layout"
	"github.com/mit-pdos/simplefs/super"
)

// readMap resolves slots for reading. Unset and out-of-range pointers
// come back as NULLBNUM.
type readMap struct {
	sb  *super.FsSuper
	tbl *inode.Table
	ino *inode.Inode
	ind *layout.PointerBlock
}

var _ addr.Mapper = (*readMap)(nil)

func (m *readMap) Bmap(slot uint64) (common.Bnum, error) {
	var bn common.Bnum
	if slot < common.NDIRECT {
		bn = m.ino.Direct[slot]
	} else {
		if !m.sb.IsDataBnum(m.ino.Indirect) {
			return common.NULLBNUM, nil
		}
		if m.ind == nil {
			ind, err := m.tbl.ReadIndirect(m.ino.Indirect)
			if err != nil {
				return common.NULLBNUM, err
			}
			m.ind = ind
		}
		bn = m.ind.Ptrs[slot-common.NDIRECT]
	}
	if !m.sb.IsDataBnum(bn) {
		return common.NULLBNUM, nil
	}
	return bn, nil
}

// writeMap resolves slots for writing, allocating blocks for unset
// slots. The indirect block is allocated the first time a slot past
// NDIRECT needs one.
type writeMap struct {
	sb    *super.FsSuper
	d     disk.Disk
	alloc *alloc.Alloc
	ino   *inode.Inode
	ind   *buf.Buf

	inoDirty bool
	// blocks handed out during this write; they hold no data yet
	fresh map[common.Bnum]bool
}

var _ addr.Mapper = (*writeMap)(nil)

func (m *writeMap) allocate() (common.Bnum, error) {
	bn, err := m.alloc.AllocNum()
	if err != nil {
		return common.NULLBNUM, err
	}
	m.fresh[bn] = true
	return bn, nil
}

func (m *writeMap) indirect() (*buf.Buf, error) {
	if m.ind != nil {
		return m.ind, nil
	}
	if m.sb.IsDataBnum(m.ino.Indirect) {
		b, err := buf.MkBufLoad(m.d, m.ino.Indirect)
		if err != nil {
			return nil, err
		}
		m.ind = b
		return b, nil
	}
	bn, err := m.allocate()
	if err != nil {
		return nil, err
	}
	m.ino.Indirect = bn
	m.inoDirty = true
	m.ind = buf.MkBuf(bn, make(disk.Block, common.BlockSize))
	m.ind.SetDirty()
	return m.ind, nil
}

func (m *writeMap) Bmap(slot uint64) (common.Bnum, error) {
	if slot < common.NDIRECT {
		bn := m.ino.Direct[slot]
		if m.sb.IsDataBnum(bn) {
			return bn, nil
		}
		bn, err := m.allocate()
		if err != nil {
			return common.NULLBNUM, err
		}
		m.ino.Direct[slot] = bn
		m.inoDirty = true
		return bn, nil
	}
	ind, err := m.indirect()
	if err != nil {
		return common.NULLBNUM, err
	}
	off := (slot - common.NDIRECT) * common.PTRSZ
	bn := ind.BnumGet(off)
	if m.sb.IsDataBnum(bn) {
		return bn, nil
	}
	bn, err = m.allocate()
	if err != nil {
		return common.NULLBNUM, err
	}
	ind.BnumPut(off, bn)
	return bn, nil
}

// release undoes the allocation of bn for slot after its first write
// failed, so the slot does not point at a block with stale contents.
func (m *writeMap) release(slot uint64, bn common.Bnum) {
	if slot < common.NDIRECT {
		m.ino.Direct[slot] = common.NULLBNUM
	} else {
		m.ind.BnumPut((slot-common.NDIRECT)*common.PTRSZ, common.NULLBNUM)
	}
	delete(m.fresh, bn)
	m.alloc.FreeNum(bn)
}
