package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxxindex/pkg/errs"
)

func TestLocationRoundTrip(t *testing.T) {
	cases := []Location{
		MustNew(false, 0, 0, 0),
		MustNew(true, 1, 42, 7),
		MustNew(false, MaxFileID, MaxLine, MaxColumn),
	}
	for _, want := range cases {
		got, err := Parse(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLocationEqualsIgnoringInteresting(t *testing.T) {
	a := MustNew(false, 3, 10, 4)
	b := MustNew(true, 3, 10, 4)
	assert.True(t, a.EqualsIgnoringInteresting(b))
	assert.NotEqual(t, a, b)
}

func TestLocationWithInterestingIsPure(t *testing.T) {
	a := MustNew(false, 3, 10, 4)
	b := a.WithInteresting(true)
	assert.False(t, a.Interesting())
	assert.True(t, b.Interesting())
}

func TestLocationLess(t *testing.T) {
	a := MustNew(false, 1, 5, 5)
	b := MustNew(false, 1, 5, 6)
	c := MustNew(false, 2, 1, 1)
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestNewCapacityExceeded(t *testing.T) {
	_, err := New(false, MaxFileID+1, 0, 0)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)

	_, err = New(false, 0, MaxLine+1, 0)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)

	_, err = New(false, 0, 0, MaxColumn+1)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("not-a-location")
	assert.ErrorIs(t, err, errs.ErrMalformedLocation)
}

func TestFileIdTableSeedsEmptyPath(t *testing.T) {
	tab := NewFileIdTable()
	assert.Equal(t, 1, tab.Len())
	assert.Equal(t, "", tab.Path(UnknownFileID))
}

func TestFileIdTableInternIsIdempotent(t *testing.T) {
	tab := NewFileIdTable()
	id1, err := tab.Intern("/src/a.cc")
	require.NoError(t, err)
	id2, err := tab.Intern("/src/a.cc")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, UnknownFileID, id1)

	id3, err := tab.Intern("/src/b.cc")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestFileIdTableEmptyPathIsSentinel(t *testing.T) {
	tab := NewFileIdTable()
	id, err := tab.Intern("")
	require.NoError(t, err)
	assert.Equal(t, UnknownFileID, id)
}

func TestFileIdTableResolve(t *testing.T) {
	tab := NewFileIdTable()
	loc, err := tab.Resolve(FrontendLocation{File: "/src/a.cc", Line: 3, Column: 1}, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), loc.Line())
	assert.Equal(t, uint32(1), loc.Column())
	assert.True(t, loc.Interesting())
	assert.Equal(t, "/src/a.cc", tab.Path(loc.FileID()))
}

func TestFileIdTableResolveNoFile(t *testing.T) {
	tab := NewFileIdTable()
	loc, err := tab.Resolve(FrontendLocation{}, false)
	require.NoError(t, err)
	assert.Equal(t, UnknownFileID, loc.FileID())
}

func TestFileIdTablePathsRoundTrip(t *testing.T) {
	tab := NewFileIdTable()
	_, _ = tab.Intern("/src/a.cc")
	_, _ = tab.Intern("/src/b.cc")

	restored, err := FromPaths(tab.Paths())
	require.NoError(t, err)
	assert.Equal(t, tab.Paths(), restored.Paths())
}
