package domain

import (
	"cmp"
	"path"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Address identifies an entity by the directory that declares it and a name unique within that directory.
// Directories are slash-separated and relative to the build root; the root itself is "".
type Address struct {
	Dir  InternedString
	Name InternedString
}

// NewAddress creates an Address, normalizing the directory.
func NewAddress(dir, name string) Address {
	return Address{
		Dir:  NewInternedString(NormalizeDir(dir)),
		Name: NewInternedString(name),
	}
}

// String renders the address as "dir:name", or "//:name" for the build root.
func (a Address) String() string {
	dir := a.Dir.String()
	if dir == "" {
		dir = "//"
	}
	return dir + ":" + a.Name.String()
}

// ParseAddress parses "dir:name" or "//:name". A missing name is an error.
func ParseAddress(s string) (Address, error) {
	dir, name, ok := strings.Cut(s, ":")
	if !ok || name == "" || strings.Contains(name, ":") {
		return Address{}, zerr.With(ErrInvalidAddress, "address", s)
	}
	if dir == "//" {
		dir = ""
	}
	return NewAddress(dir, name), nil
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare orders addresses by directory, then name.
func (a Address) Compare(b Address) int {
	return cmp.Or(a.Dir.Compare(b.Dir), a.Name.Compare(b.Name))
}

// NormalizeDir cleans a slash-separated relative directory, mapping "." and "/" to "".
func NormalizeDir(dir string) string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	dir = path.Clean("/" + dir)
	return strings.TrimPrefix(dir, "/")
}

// SortAddresses sorts addresses in place and removes duplicates.
func SortAddresses(addrs []Address) []Address {
	slices.SortFunc(addrs, Address.Compare)
	return slices.Compact(addrs)
}
