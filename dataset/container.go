package dataset

import (
	"fmt"

	"github.com/hupe1980/cityroads/container"
	"github.com/hupe1980/cityroads/internal/fs"
)

// WriteContainer creates a container at path holding w as its dat section.
// An existing file is replaced.
func WriteContainer(fsys fs.FileSystem, path string, w *Writer) error {
	if err := container.Create(fsys, path); err != nil {
		return err
	}
	cw, err := container.OpenExisting(fsys, path)
	if err != nil {
		return err
	}
	if err := cw.WriteSection(container.TagFeatures, w.Bytes()); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	return cw.Close()
}
