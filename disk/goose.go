package disk

import (
	"github.com/tchajed/goose/machine/disk"
)

var _ Disk = (*gooseDisk)(nil)

// gooseDisk adapts a goose machine disk, which panics on bad addresses,
// to Disk.
type gooseDisk struct {
	d disk.Disk
}

// FromGoose wraps a goose disk (eg, disk.NewMemDisk or disk.NewFileDisk
// from github.com/tchajed/goose/machine/disk).
func FromGoose(d disk.Disk) Disk {
	return gooseDisk{d: d}
}

func (g gooseDisk) ReadTo(a uint64, buf Block) error {
	if err := checkBlock(buf); err != nil {
		return err
	}
	if err := checkAddr(a, g.d.Size()); err != nil {
		return err
	}
	copy(buf, g.d.Read(a))
	return nil
}

func (g gooseDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := g.ReadTo(a, buf)
	return buf, err
}

func (g gooseDisk) Write(a uint64, v Block) error {
	if err := checkBlock(v); err != nil {
		return err
	}
	if err := checkAddr(a, g.d.Size()); err != nil {
		return err
	}
	g.d.Write(a, v)
	return nil
}

func (g gooseDisk) Size() (uint64, error) {
	return g.d.Size(), nil
}

func (g gooseDisk) Barrier() error {
	g.d.Barrier()
	return nil
}

func (g gooseDisk) Close() error {
	g.d.Close()
	return nil
}
