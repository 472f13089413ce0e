package container

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hupe1980/cityroads/internal/fs"
)

// Create writes an empty container at path, replacing any existing file.
func Create(fsys fs.FileSystem, path string) error {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("container: create %s: %w", path, err)
	}

	tail, err := encodeTOC(nil, uint64(len(Magic)))
	if err == nil {
		_, err = f.Write(append([]byte(Magic), tail...))
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("container: create %s: %w", path, err)
	}
	return nil
}

// Writer appends sections to an existing container.
//
// Nothing written through a Writer is visible until Close succeeds. Any
// failure truncates the file to the length it had when it was opened.
type Writer struct {
	path    string
	f       fs.File
	origLen int64
	end     int64
	entries []Entry
	dirty   bool
	closed  bool
}

// OpenExisting opens the container at path for appending. The file must
// already exist and carry a valid table of contents.
func OpenExisting(fsys fs.FileSystem, path string) (*Writer, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("container: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("container: stat %s: %w", path, err)
	}

	entries, _, err := readTOC(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("container: %s: %w", path, err)
	}

	return &Writer{
		path:    path,
		f:       f,
		origLen: info.Size(),
		end:     info.Size(),
		entries: entries,
	}, nil
}

// Entries returns the table of contents as it will be written by Close.
func (w *Writer) Entries() []Entry {
	return slices.Clone(w.entries)
}

// WriteSection appends data under tag. An existing section with the same tag
// is replaced once Close succeeds.
func (w *Writer) WriteSection(tag string, data []byte) error {
	if w.closed {
		return ErrClosed
	}
	if err := validTag(tag); err != nil {
		return err
	}

	if _, err := w.f.Seek(w.end, io.SeekStart); err != nil {
		return w.fail(fmt.Errorf("container: seek %s: %w", w.path, err))
	}
	n, err := w.f.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return w.fail(fmt.Errorf("container: write section %q to %s: %w", tag, w.path, err))
	}

	e := Entry{Tag: tag, Offset: uint64(w.end), Size: uint64(len(data))}
	w.end += int64(len(data))
	w.dirty = true

	if i := slices.IndexFunc(w.entries, func(x Entry) bool { return x.Tag == tag }); i >= 0 {
		w.entries[i] = e
	} else {
		w.entries = append(w.entries, e)
	}
	return nil
}

// Close writes the new table of contents and footer, syncs, and closes the
// file. A Writer with no new sections leaves the file untouched.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if !w.dirty {
		w.closed = true
		return w.f.Close()
	}

	tail, err := encodeTOC(w.entries, uint64(w.end))
	if err != nil {
		return w.fail(fmt.Errorf("container: encode toc for %s: %w", w.path, err))
	}
	if _, err := w.f.Seek(w.end, io.SeekStart); err != nil {
		return w.fail(fmt.Errorf("container: seek %s: %w", w.path, err))
	}
	if _, err := w.f.Write(tail); err != nil {
		return w.fail(fmt.Errorf("container: write toc to %s: %w", w.path, err))
	}
	if err := w.f.Sync(); err != nil {
		return w.fail(fmt.Errorf("container: sync %s: %w", w.path, err))
	}

	w.closed = true
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("container: close %s: %w", w.path, err)
	}
	return nil
}

// Abort discards everything written since OpenExisting and closes the file.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	if !w.dirty {
		w.closed = true
		return w.f.Close()
	}
	return w.fail(nil)
}

// fail restores the original file length and closes the file.
func (w *Writer) fail(cause error) error {
	w.closed = true
	errs := []error{cause}
	if err := w.f.Truncate(w.origLen); err != nil {
		errs = append(errs, fmt.Errorf("container: rollback %s: %w", w.path, err))
	} else if err := w.f.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("container: sync rollback %s: %w", w.path, err))
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("container: close %s: %w", w.path, err))
	}
	return errors.Join(errs...)
}
