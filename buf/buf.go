// buf holds disk blocks in memory and gives access to the fixed-size
// objects (inode records, block pointers) packed inside them.
package buf

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/simplefs/addr"
	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/util"
)

// A Buf is an in-memory copy of one disk block
type Buf struct {
	Blkno common.Bnum
	Blk   disk.Block
	dirty bool // has this block been written to?
}

func MkBuf(blkno common.Bnum, blk disk.Block) *Buf {
	b := &Buf{
		Blkno: blkno,
		Blk:   blk,
		dirty: false,
	}
	return b
}

// MkBufLoad reads block blkno from d into a new buf
func MkBufLoad(d disk.Disk, blkno common.Bnum) (*Buf, error) {
	blk, err := d.Read(blkno)
	if err != nil {
		return nil, fmt.Errorf("loading block %d: %w", blkno, err)
	}
	return MkBuf(blkno, blk), nil
}

// Object returns the sz bytes at a inside the block. The slice aliases
// the buffer.
func (buf *Buf) Object(a addr.Addr, sz uint64) []byte {
	if a.Blkno != buf.Blkno || a.Off+sz > common.BlockSize {
		panic(fmt.Errorf("object %v+%d not in block %d", a, sz, buf.Blkno))
	}
	return buf.Blk[a.Off : a.Off+sz]
}

// Install copies data over the object at a and marks the buf dirty
func (buf *Buf) Install(a addr.Addr, data []byte) {
	copy(buf.Object(a, uint64(len(data))), data)
	buf.SetDirty()
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

// WriteDirect writes the block to d and marks it clean
func (buf *Buf) WriteDirect(d disk.Disk) error {
	util.DPrintf(20, "WriteDirect: %d\n", buf.Blkno)
	if err := d.Write(buf.Blkno, buf.Blk); err != nil {
		return fmt.Errorf("writing block %d: %w", buf.Blkno, err)
	}
	buf.dirty = false
	return nil
}

func (buf *Buf) BnumGet(off uint64) common.Bnum {
	dec := marshal.NewDec(buf.Blk[off : off+common.PTRSZ])
	return common.Bnum(dec.GetInt32())
}

func (buf *Buf) BnumPut(off uint64, v common.Bnum) {
	enc := marshal.NewEnc(common.PTRSZ)
	enc.PutInt32(uint32(v))
	copy(buf.Blk[off:off+common.PTRSZ], enc.Finish())
	buf.SetDirty()
}
