package fs

import (
	"errors"
	"io"

	"github.com/mit-pdos/simplefs/common"
)

// File is a byte-stream view of one inode.
type File struct {
	fs   *FileSystem
	inum common.Inum
}

var _ io.ReaderAt = (*File)(nil)
var _ io.WriterAt = (*File)(nil)

// Open returns a File for a valid inode.
func (fs *FileSystem) Open(inum common.Inum) (*File, error) {
	if _, err := fs.GetSize(inum); err != nil {
		return nil, err
	}
	return &File{fs: fs, inum: inum}, nil
}

func (f *File) Inum() common.Inum {
	return f.inum
}

func (f *File) Size() (int64, error) {
	sz, err := f.fs.GetSize(f.inum)
	return int64(sz), err
}

// ReadAt returns io.EOF whenever it reads fewer than len(p) bytes.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	n, err := f.fs.Read(f.inum, p, uint64(off))
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	return f.fs.Write(f.inum, p, uint64(off))
}
