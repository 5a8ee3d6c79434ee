// file: pkg/diskimg/wildcard.go

package diskimg

import (
	"strconv"
	"strings"
)

// AnyOwner matches entries of every owner
const AnyOwner OwnerFilter = -1

// OwnerFilter selects directory entries by owner id
type OwnerFilter int

// Matches reports whether an owner id passes the filter
func (f OwnerFilter) Matches(owner uint8) bool {
	return f == AnyOwner || int(f) == int(owner)
}

func (f OwnerFilter) String() string {
	if f == AnyOwner {
		return "*"
	}
	return strconv.Itoa(int(f))
}

// MatchFilename reports whether NAME.TYPE matches a case-insensitive pattern
// where * matches any run of characters and ? matches exactly one.
func MatchFilename(name [NameLen]byte, typ [TypeLen]byte, pattern string) bool {
	n := trimField(name[:])
	tp := trimField(typ[:])
	return wildcardMatch(strings.ToUpper(n+"."+tp), strings.ToUpper(pattern))
}

func wildcardMatch(s, p string) bool {
	for len(p) > 0 {
		switch p[0] {
		case '*':
			for len(p) > 0 && p[0] == '*' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if wildcardMatch(s[i:], p) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
		}
		s, p = s[1:], p[1:]
	}
	return len(s) == 0
}

func trimField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
