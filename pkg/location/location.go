// Package location implements the bit-packed source Location used to
// address every declaration, definition and reference recorded by the
// indexing core, plus the FileId interning table it is built on.
package location

import (
	"fmt"

	"github.com/pkg/errors"

	"cxxindex/pkg/errs"
)

const (
	interestingBits = 1
	fileIDBits      = 29
	lineBits        = 20
	columnBits      = 14

	interestingShift = 0
	fileIDShift      = interestingShift + interestingBits
	lineShift        = fileIDShift + fileIDBits
	columnShift      = lineShift + lineBits

	// MaxFileID is the largest FileId a Location can address.
	MaxFileID = 1<<fileIDBits - 1
	// MaxLine is the largest line number a Location can address.
	MaxLine = 1<<lineBits - 1
	// MaxColumn is the largest column number a Location can address.
	MaxColumn = 1<<columnBits - 1

	interestingMask = uint64(1<<interestingBits-1) << interestingShift
	fileIDMask      = uint64(1<<fileIDBits-1) << fileIDShift
	lineMask        = uint64(1<<lineBits-1) << lineShift
	columnMask      = uint64(1<<columnBits-1) << columnShift
)

// FileID is an opaque, monotonically-assigned interned file handle.
// FileID 0 is the sentinel meaning "no file / unknown".
type FileID uint32

// UnknownFileID is the sentinel FileId bound to the empty path.
const UnknownFileID FileID = 0

// Location is a 64-bit packed (interesting, file_id, line, column) value.
// It is a value type: copying it is copying the location.
type Location uint64

// New packs the four fields into a Location. It returns
// ErrCapacityExceeded if fileID, line or column do not fit their bit width.
func New(interesting bool, fileID FileID, line, column uint32) (Location, error) {
	if uint32(fileID) > MaxFileID {
		return 0, errors.Wrapf(errs.ErrCapacityExceeded, "file id %d exceeds %d-bit capacity", fileID, fileIDBits)
	}
	if line > MaxLine {
		return 0, errors.Wrapf(errs.ErrCapacityExceeded, "line %d exceeds %d-bit capacity", line, lineBits)
	}
	if column > MaxColumn {
		return 0, errors.Wrapf(errs.ErrCapacityExceeded, "column %d exceeds %d-bit capacity", column, columnBits)
	}
	var v uint64
	if interesting {
		v |= 1 << interestingShift
	}
	v |= uint64(fileID) << fileIDShift
	v |= uint64(line) << lineShift
	v |= uint64(column) << columnShift
	return Location(v), nil
}

// MustNew is New, panicking on error. Intended for tests and constants
// where the fields are known to fit.
func MustNew(interesting bool, fileID FileID, line, column uint32) Location {
	loc, err := New(interesting, fileID, line, column)
	if err != nil {
		panic(err)
	}
	return loc
}

// Interesting reports whether the semantically-load-bearing bit is set.
func (l Location) Interesting() bool {
	return uint64(l)&interestingMask != 0
}

// FileID returns the packed file id.
func (l Location) FileID() FileID {
	return FileID((uint64(l) & fileIDMask) >> fileIDShift)
}

// Line returns the packed 1-based line number.
func (l Location) Line() uint32 {
	return uint32((uint64(l) & lineMask) >> lineShift)
}

// Column returns the packed 1-based column number.
func (l Location) Column() uint32 {
	return uint32((uint64(l) & columnMask) >> columnShift)
}

// WithInteresting returns a copy of l with the interesting bit set to b.
// It never mutates l.
func (l Location) WithInteresting(b bool) Location {
	v := uint64(l) &^ interestingMask
	if b {
		v |= interestingMask
	}
	return Location(v)
}

// EqualsIgnoringInteresting compares two locations ignoring the
// interesting bit: it is the equality relation used to deduplicate `uses`.
func (l Location) EqualsIgnoringInteresting(o Location) bool {
	return uint64(l)&^interestingMask == uint64(o)&^interestingMask
}

// Less orders locations lexicographically on (file_id, line, column),
// ignoring the interesting bit.
func (l Location) Less(o Location) bool {
	if l.FileID() != o.FileID() {
		return l.FileID() < o.FileID()
	}
	if l.Line() != o.Line() {
		return l.Line() < o.Line()
	}
	return l.Column() < o.Column()
}

// String renders the textual form: an optional '*' prefix when
// interesting, then "<file_id>:<line>:<column>".
func (l Location) String() string {
	if l.Interesting() {
		return fmt.Sprintf("*%d:%d:%d", l.FileID(), l.Line(), l.Column())
	}
	return fmt.Sprintf("%d:%d:%d", l.FileID(), l.Line(), l.Column())
}

// Parse is the inverse of String: from_string(x.to_string()) == x for
// every well-formed Location.
func Parse(s string) (Location, error) {
	interesting := false
	if len(s) > 0 && s[0] == '*' {
		interesting = true
		s = s[1:]
	}
	var fileID, line, column uint64
	n, err := fmt.Sscanf(s, "%d:%d:%d", &fileID, &line, &column)
	if err != nil || n != 3 {
		return 0, errors.Wrapf(errs.ErrMalformedLocation, "cannot parse location %q", s)
	}
	return New(interesting, FileID(fileID), uint32(line), uint32(column))
}

// MarshalJSON renders the Location using its textual form.
func (l Location) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.String())), nil
}

// UnmarshalJSON parses the Location's textual form.
func (l *Location) UnmarshalJSON(data []byte) error {
	var s string
	if err := jsonUnquote(data, &s); err != nil {
		return err
	}
	loc, err := Parse(s)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// jsonUnquote avoids importing encoding/json just for a string literal.
func jsonUnquote(data []byte, out *string) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.Errorf("location: malformed JSON string %s", data)
	}
	*out = string(data[1 : len(data)-1])
	return nil
}
