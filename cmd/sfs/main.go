// Command sfs drives a file-backed disk image. Every invocation mounts the
// image, runs one operation, and unmounts.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/simplefs/common"
	"github.com/mit-pdos/simplefs/disk"
	"github.com/mit-pdos/simplefs/fs"
	"github.com/mit-pdos/simplefs/util"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		util.Log.Fatal(err)
	}
	if err := newApp(config).Run(os.Args); err != nil {
		util.Log.Fatal(err)
	}
}

func newApp(config *Config) *cli.App {
	return &cli.App{
		Name:  "sfs",
		Usage: "a minimal inode file system on a disk image",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "disk",
				Aliases: []string{"d"},
				Usage:   "path to the disk image",
				Value:   config.Disk,
			},
			&cli.Uint64Flag{
				Name:  "blocks",
				Usage: "image size in blocks, used by format",
				Value: config.Blocks,
			},
			&cli.Uint64Flag{
				Name:  "debug",
				Usage: "debug log level",
				Value: config.Debug,
			},
		},
		Before: func(ctx *cli.Context) error {
			config.Disk = ctx.String("disk")
			config.Blocks = ctx.Uint64("blocks")
			config.Debug = ctx.Uint64("debug")
			util.SetDebug(config.Debug)
			return config.Validate()
		},
		Commands: []*cli.Command{{
			Name:  "format",
			Usage: "write an empty file system to the image",
			Action: func(ctx *cli.Context) error {
				d, err := disk.NewFileDisk(config.Disk, config.Blocks)
				if err != nil {
					return err
				}
				defer d.Close()
				return fs.New(d).Format()
			},
		}, {
			Name:  "debug",
			Usage: "dump the superblock and every valid inode",
			Action: withImage(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				return fsys.Debug(os.Stdout)
			}),
		}, {
			Name:  "stat",
			Usage: "print geometry and free space",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				st, err := fsys.Stat()
				if err != nil {
					return err
				}
				fmt.Printf("blocks:       %d (%d free)\n", st.NBlocks, st.FreeBlocks)
				fmt.Printf("inode blocks: %d\n", st.NInodeBlocks)
				fmt.Printf("inodes:       %d (%d free)\n", st.NInodes, st.FreeInodes)
				return nil
			}),
		}, {
			Name:  "check",
			Usage: "verify block pointers and the free-block map",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				if err := fsys.Check(); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			}),
		}, {
			Name:  "create",
			Usage: "allocate an empty inode and print its inumber",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				inum, err := fsys.Create()
				if err != nil {
					return err
				}
				fmt.Println(inum)
				return nil
			}),
		}, {
			Name:      "delete",
			Aliases:   []string{"rm"},
			Usage:     "free an inode and its blocks",
			ArgsUsage: "INUM",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				inum, err := inumArg(ctx)
				if err != nil {
					return err
				}
				return fsys.Delete(inum)
			}),
		}, {
			Name:      "size",
			Usage:     "print the size of an inode in bytes",
			ArgsUsage: "INUM",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				inum, err := inumArg(ctx)
				if err != nil {
					return err
				}
				sz, err := fsys.GetSize(inum)
				if err != nil {
					return err
				}
				fmt.Println(sz)
				return nil
			}),
		}, {
			Name:      "cat",
			Usage:     "copy an inode's contents to stdout",
			ArgsUsage: "INUM",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				inum, err := inumArg(ctx)
				if err != nil {
					return err
				}
				f, err := fsys.Open(inum)
				if err != nil {
					return err
				}
				sz, err := f.Size()
				if err != nil {
					return err
				}
				_, err = io.Copy(os.Stdout, io.NewSectionReader(f, 0, sz))
				return err
			}),
		}, {
			Name:      "put",
			Usage:     "write stdin into an inode",
			ArgsUsage: "INUM [OFFSET]",
			Action: withFs(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
				inum, err := inumArg(ctx)
				if err != nil {
					return err
				}
				var off int64
				if ctx.NArg() > 1 {
					off, err = strconv.ParseInt(ctx.Args().Get(1), 10, 64)
					if err != nil {
						return fmt.Errorf("parsing offset: %w", err)
					}
				}
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				f, err := fsys.Open(inum)
				if err != nil {
					return err
				}
				n, err := f.WriteAt(data, off)
				if err != nil {
					return fmt.Errorf("wrote %d of %d bytes: %w", n, len(data), err)
				}
				return nil
			}),
		}},
	}
}

func inumArg(ctx *cli.Context) (common.Inum, error) {
	if ctx.NArg() < 1 {
		return common.NULLINUM, fmt.Errorf("missing required argument: INUM")
	}
	n, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return common.NULLINUM, fmt.Errorf("parsing inumber: %w", err)
	}
	return common.Inum(n), nil
}

// withImage opens the image for an action that does not mount.
func withImage(
	config *Config,
	f func(*fs.FileSystem, *cli.Context) error,
) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		d, err := disk.NewFileDisk(config.Disk, 0)
		if err != nil {
			return err
		}
		defer d.Close()
		return f(fs.New(d), ctx)
	}
}

// withFs mounts the image around an action.
func withFs(
	config *Config,
	f func(*fs.FileSystem, *cli.Context) error,
) cli.ActionFunc {
	return withImage(config, func(fsys *fs.FileSystem, ctx *cli.Context) error {
		if err := fsys.Mount(); err != nil {
			return err
		}
		if err := f(fsys, ctx); err != nil {
			if uerr := fsys.Unmount(); uerr != nil {
				util.DPrintf(1, "unmount after failed %s: %v\n", ctx.Command.Name, uerr)
			}
			return err
		}
		return fsys.Unmount()
	})
}
