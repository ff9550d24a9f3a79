package stone

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Relocate moves the files in fromDir matching pattern to toDir, keeping their names.
// Files are moved in lexicographic order, and it returns their new paths in that order.
//
// toDir must exist and be a directory. It stops at the first failure, leaving the files
// already moved in place.
func Relocate(fromDir, pattern, toDir string) ([]string, error) {
	info, err := os.Stat(toDir)
	if err != nil {
		return nil, errors.Wrap(err, "relocation destination")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("relocation destination %q is not a directory", toDir)
	}
	files, err := globSorted(fromDir, pattern)
	if err != nil {
		return nil, err
	}
	moved := make([]string, 0, len(files))
	for _, src := range files {
		dst := filepath.Join(toDir, filepath.Base(src))
		if err := moveFile(src, dst); err != nil {
			return moved, err
		}
		klog.V(1).Infof("Moved %s to %s", src, dst)
		moved = append(moved, dst)
	}
	return moved, nil
}

// moveFile renames src to dst, falling back to copy and remove when they are on different devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return errors.Wrapf(err, "failed to move %s", src)
	}
	if err = copyFile(src, dst); err != nil {
		return errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}
	return errors.Wrapf(os.Remove(src), "failed to remove %s after copying it", src)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { ReportError(in.Close()) }()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
