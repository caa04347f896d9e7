package state

import "github.com/symwasm/symwasm/internal/smt"

// FileFlag is the open mode a File was opened with.
type FileFlag int

const (
	FlagRead FileFlag = iota
	FlagWrite
	FlagReadWrite
)

// FileStatus tracks whether a descriptor is still usable.
type FileStatus int

const (
	StatusOpen FileStatus = iota
	StatusClosed
)

// File is one file-descriptor record (spec §3 "File system"). Content is
// either a concrete byte slice, a symbolic bitvector (the whole file is one
// symbol), or — for fd 1/2, which are append-only — a growable list of
// written chunks; Cursor tracks how far fd_read has consumed Content.
type File struct {
	Name    string
	Status  FileStatus
	Flag    FileFlag
	Content []byte     // concrete content, if non-nil
	Symbol  *smt.Expr  // whole-file symbolic content, if Content is nil
	Cursor  int
	Written []byte // appended to by fd_write; distinct from Content so a
	// read-then-write program doesn't confuse its own output with its input
}

// Files is the VM state's file-descriptor table. Standard descriptors 0, 1,
// 2 are always present (spec §3); additional descriptors come from
// config.Context before exploration starts.
type Files struct {
	byFD  map[uint32]*File
	owned bool
}

// NewFiles builds the standard 0/1/2 table plus any configured descriptors.
func NewFiles(extra map[uint32]*File) *Files {
	byFD := map[uint32]*File{
		0: {Name: "stdin", Status: StatusOpen, Flag: FlagRead},
		1: {Name: "stdout", Status: StatusOpen, Flag: FlagWrite},
		2: {Name: "stderr", Status: StatusOpen, Flag: FlagWrite},
	}
	for fd, f := range extra {
		byFD[fd] = f
	}
	return &Files{byFD: byFD, owned: true}
}

func (f *Files) Fork() *Files {
	return &Files{byFD: f.byFD, owned: false}
}

func (f *Files) ensureOwned() {
	if f.owned {
		return
	}
	cp := make(map[uint32]*File, len(f.byFD))
	for fd, file := range f.byFD {
		dup := *file
		cp[fd] = &dup
	}
	f.byFD = cp
	f.owned = true
}

// Get returns the file at fd.
func (f *Files) Get(fd uint32) (*File, bool) {
	file, ok := f.byFD[fd]
	return file, ok
}

// Mutate calls fn with an owned copy of the file at fd, so callers can
// freely mutate Cursor/Written/Status without affecting a sibling fork.
func (f *Files) Mutate(fd uint32, fn func(*File)) {
	f.ensureOwned()
	file, ok := f.byFD[fd]
	if !ok {
		return
	}
	fn(file)
}

// Open installs a new file record at fd (path_open/openat-style models).
func (f *Files) Open(fd uint32, file *File) {
	f.ensureOwned()
	f.byFD[fd] = file
}

// NextFD returns the lowest descriptor number not currently in use, at or
// above floor.
func (f *Files) NextFD(floor uint32) uint32 {
	fd := floor
	for {
		if _, used := f.byFD[fd]; !used {
			return fd
		}
		fd++
	}
}
