package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an NMOS API version such as "v1.3".
type Version struct {
	Major int
	Minor int
}

// Known Query API versions.
var (
	V1_0 = Version{1, 0}
	V1_1 = Version{1, 1}
	V1_2 = Version{1, 2}
	V1_3 = Version{1, 3}
)

// Ordering is the result of Compare.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "lt"
	case Equal:
		return "eq"
	case Greater:
		return "gt"
	}
	return "invalid"
}

// ConfigurationError reports a missing or malformed version source.
// Rendering cannot proceed without a valid version.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s (%q)", e.Reason, e.Source)
}

// Parse reads a "vMAJOR.MINOR" token. A trailing slash is tolerated so that
// API root listings ("v1.2/") parse directly.
func Parse(s string) (Version, error) {
	tok := strings.TrimSuffix(strings.TrimSpace(s), "/")
	if !strings.HasPrefix(tok, "v") {
		return Version{}, &ConfigurationError{Source: s, Reason: "version must start with 'v'"}
	}
	major, minor, ok := strings.Cut(tok[1:], ".")
	if !ok {
		return Version{}, &ConfigurationError{Source: s, Reason: "version must be vMAJOR.MINOR"}
	}
	maj, err := number(major)
	if err != nil {
		return Version{}, &ConfigurationError{Source: s, Reason: "invalid major version"}
	}
	min, err := number(minor)
	if err != nil {
		return Version{}, &ConfigurationError{Source: s, Reason: "invalid minor version"}
	}
	return Version{Major: maj, Minor: min}, nil
}

// number parses a version component, which is one or more ASCII digits.
func number(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Compare orders a and b by major then minor, numerically.
func Compare(a, b Version) Ordering {
	switch {
	case a.Major < b.Major:
		return Less
	case a.Major > b.Major:
		return Greater
	case a.Minor < b.Minor:
		return Less
	case a.Minor > b.Minor:
		return Greater
	}
	return Equal
}

// AtLeast returns true if v >= min.
func (v Version) AtLeast(min Version) bool {
	return Compare(v, min) != Less
}

// Resolve extracts the version from a stored Query API URL of the form
// ".../x-nmos/query/vMAJOR.MINOR". An empty source is an error; there is no
// default version.
func Resolve(stored string) (Version, error) {
	s := strings.TrimRight(strings.TrimSpace(stored), "/")
	if s == "" {
		return Version{}, &ConfigurationError{Reason: "no Query API configured"}
	}
	token := s
	if i := strings.LastIndex(s, "/"); i >= 0 {
		token = s[i+1:]
	}
	v, err := Parse(token)
	if err != nil {
		return Version{}, &ConfigurationError{Source: stored, Reason: "Query API URL does not end in a version"}
	}
	return v, nil
}

// Highest returns the highest version in an API root listing, skipping
// entries that do not parse. ok is false if nothing parsed.
func Highest(entries []string) (best Version, ok bool) {
	for _, e := range entries {
		v, err := Parse(e)
		if err != nil {
			continue
		}
		if !ok || Compare(v, best) == Greater {
			best, ok = v, true
		}
	}
	return best, ok
}
