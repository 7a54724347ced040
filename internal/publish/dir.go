package publish

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DirPublisher mirrors the artifact into a local directory, such as one
// served by a web server. The previous tree is replaced wholesale: the new
// tree is copied next to the destination and swapped in with renames.
type DirPublisher struct {
	Dest string
}

// NewDirPublisher returns a DirPublisher writing to dest.
func NewDirPublisher(dest string) *DirPublisher {
	return &DirPublisher{Dest: dest}
}

func (p *DirPublisher) Name() string { return "dir" }

func (p *DirPublisher) Publish(ctx context.Context, dir string) error {
	dest, err := filepath.Abs(p.Dest)
	if err != nil {
		return p.fail("resolve destination", err)
	}
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return p.fail("create parent", err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".new-")
	if err != nil {
		return p.fail("create staging", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := os.CopyFS(staging, os.DirFS(dir)); err != nil {
		return p.fail("copy artifact", err)
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		return p.fail("chmod staging", err)
	}
	if err := ctx.Err(); err != nil {
		return p.fail("copy artifact", err)
	}

	var previous string
	if _, err := os.Stat(dest); err == nil {
		previous = filepath.Join(parent, "."+filepath.Base(dest)+".old")
		_ = os.RemoveAll(previous)
		if err := os.Rename(dest, previous); err != nil {
			return p.fail("move previous tree", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return p.fail("stat destination", err)
	}

	if err := os.Rename(staging, dest); err != nil {
		if previous != "" {
			_ = os.Rename(previous, dest)
		}
		return p.fail("swap in new tree", err)
	}
	if previous != "" {
		_ = os.RemoveAll(previous)
	}
	return nil
}

func (p *DirPublisher) fail(op string, err error) error {
	return &TransferError{Publisher: p.Name(), Target: p.Dest, Op: op, Err: err}
}
