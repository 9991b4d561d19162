package location

import (
	"sync"

	"github.com/pkg/errors"

	"cxxindex/pkg/errs"
)

// FileIdTable interns absolute file paths into compact FileIds. FileID 0
// is reserved for the empty path ("no file / unknown") and is bound at
// construction time.
type FileIdTable struct {
	mu       sync.RWMutex
	pathToID map[string]FileID
	idToPath []string
}

// NewFileIdTable creates an empty table with the empty path bound to
// FileID 0.
func NewFileIdTable() *FileIdTable {
	t := &FileIdTable{
		pathToID: make(map[string]FileID),
		idToPath: make([]string, 0, 1),
	}
	t.pathToID[""] = UnknownFileID
	t.idToPath = append(t.idToPath, "")
	return t
}

// Intern returns the FileId bound to path, assigning a fresh one
// (current mapping size) if path has not been seen before. An empty path
// always resolves to UnknownFileID.
func (t *FileIdTable) Intern(path string) (FileID, error) {
	if path == "" {
		return UnknownFileID, nil
	}

	t.mu.RLock()
	if id, ok := t.pathToID[path]; ok {
		t.mu.RUnlock()
		return id, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.pathToID[path]; ok {
		return id, nil
	}
	id := len(t.idToPath)
	if id > MaxFileID {
		return 0, errors.Wrapf(errs.ErrCapacityExceeded, "cannot intern %q: more than %d files in one index", path, MaxFileID+1)
	}
	fid := FileID(id)
	t.pathToID[path] = fid
	t.idToPath = append(t.idToPath, path)
	return fid, nil
}

// Path returns the path bound to id, or "" if id is unknown to this
// table (including UnknownFileID).
func (t *FileIdTable) Path(id FileID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.idToPath) {
		return ""
	}
	return t.idToPath[id]
}

// Len returns the number of distinct paths interned, including the
// sentinel empty path at index 0.
func (t *FileIdTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.idToPath)
}

// Paths returns the path array indexed by FileId, path at index 0 being
// the empty sentinel. This is the FileIdTable's serialized form (§6).
func (t *FileIdTable) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.idToPath))
	copy(out, t.idToPath)
	return out
}

// FromPaths rebuilds a FileIdTable from a path array as produced by
// Paths, e.g. when deserializing an IndexedFile.
func FromPaths(paths []string) (*FileIdTable, error) {
	if len(paths) == 0 || paths[0] != "" {
		return nil, errors.New("file id table: path array must start with the empty sentinel path")
	}
	t := &FileIdTable{
		pathToID: make(map[string]FileID, len(paths)),
		idToPath: make([]string, len(paths)),
	}
	copy(t.idToPath, paths)
	for i, p := range paths {
		if i == 0 {
			continue
		}
		t.pathToID[p] = FileID(i)
	}
	return t, nil
}

// FrontendLocation is the minimal shape every flavor of frontend
// location/cursor the collaborator emits collapses to before Resolve is
// called: an absolute file path (empty means "no file"), plus a 1-based
// line and column.
type FrontendLocation struct {
	File   string
	Line   uint32
	Column uint32
}

// Resolve interns the location's file (if any) and packs the result into
// a Location. Every overload of a frontend location/cursor type the
// frontend adapter deals with must first be converted into a
// FrontendLocation, keeping this the single collapse point spec.md §4.2
// describes.
func (t *FileIdTable) Resolve(loc FrontendLocation, interesting bool) (Location, error) {
	fid, err := t.Intern(loc.File)
	if err != nil {
		return 0, err
	}
	return New(interesting, fid, loc.Line, loc.Column)
}
