package ir

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathSeparator separates path segments in the rendered form.
const PathSeparator = "/"

// Path is an ordered sequence of category labels addressing one object in a
// collection. Level 0 is the trigger label, level 1 the cut level, level 2
// the pair type and level 3 the charge combination.
//
// Paths are compared segment by segment; segments are NFC-normalised on
// construction so labels built independently by different workers compare
// equal.
type Path []string

// NewPath builds a Path from segments.
// Returns an error for empty segments or segments containing the separator.
func NewPath(segments ...string) (Path, error) {
	p := make(Path, len(segments))
	for i, s := range segments {
		s = norm.NFC.String(s)
		if s == "" {
			return nil, fmt.Errorf("path segment %d is empty", i)
		}
		if strings.Contains(s, PathSeparator) {
			return nil, fmt.Errorf("path segment %q contains %q", s, PathSeparator)
		}
		p[i] = s
	}
	return p, nil
}

// MustPath is like NewPath but panics on error.
func MustPath(segments ...string) Path {
	p, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePath parses the rendered form "/a/b/c".
func ParsePath(s string) (Path, error) {
	s = strings.TrimPrefix(s, PathSeparator)
	if s == "" {
		return Path{}, nil
	}
	return NewPath(strings.Split(s, PathSeparator)...)
}

// String renders the path as "/a/b/c". The empty path renders as "/".
func (p Path) String() string {
	return PathSeparator + strings.Join(p, PathSeparator)
}

// Equal reports whether both paths have identical segments.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Segment returns the segment at level, or "" if the path is shorter.
func (p Path) Segment(level int) string {
	if level < 0 || level >= len(p) {
		return ""
	}
	return p[level]
}

// Key addresses one object: the path it lives under plus its name.
type Key struct {
	Path Path
	Name string
}

// String renders the key as "/a/b/name".
func (k Key) String() string {
	if len(k.Path) == 0 {
		return PathSeparator + k.Name
	}
	return k.Path.String() + PathSeparator + k.Name
}

// Compare orders keys by rendered path then name, giving a total order that
// is independent of insertion history.
func (k Key) Compare(other Key) int {
	if c := slices.Compare(k.Path, other.Path); c != 0 {
		return c
	}
	return strings.Compare(k.Name, other.Name)
}

// ParseKey parses "/a/b/name".
func ParseKey(s string) (Key, error) {
	idx := strings.LastIndex(s, PathSeparator)
	if idx < 0 || idx == len(s)-1 {
		return Key{}, fmt.Errorf("invalid key %q", s)
	}
	p, err := ParsePath(s[:idx])
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return Key{Path: p, Name: norm.NFC.String(s[idx+1:])}, nil
}

// NewKey builds a Key, normalising the name the way path segments are.
func NewKey(p Path, name string) (Key, error) {
	name = norm.NFC.String(name)
	if name == "" || strings.Contains(name, PathSeparator) {
		return Key{}, fmt.Errorf("invalid object name %q", name)
	}
	return Key{Path: p, Name: name}, nil
}
