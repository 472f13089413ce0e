// Package fs abstracts the filesystem operations used to read datasets and
// append sections to container files.
//
//   - [LocalFS] is the production implementation backed by package os.
//   - [FaultyFS] wraps another FileSystem and injects write, sync, truncate,
//     open, or close failures, so tests can check that a failed section write
//     leaves the container unchanged.
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_RDWR, 0)
//
// Tests swap in a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".mwm", fs.Fault{FailAfterBytes: 16})
//
// The interfaces take no context.Context: local syscalls are short and not
// interruptible. Remote storage lives behind blobstore, which does.
package fs
