// Package mmap maps container files read-only so that sections can be
// decoded in place without copying them onto the heap.
//
//	m, err := mmap.Open(path)
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	data := m.Bytes()
//
// Slices returned by Bytes alias the mapping and become invalid after Close.
// Platforms without mmap read the file into memory instead.
package mmap
