// Package semver wraps github.com/Masterminds/semver/v3 with the handful of
// operations the analyzer needs: parsing npm-style versions and ranges,
// satisfaction checks, ordering, and major-version extraction.
//
// Ranges follow npm syntax as far as Masterminds supports it: caret, tilde,
// x-ranges, hyphen ranges, space-separated comparator sets and "||" unions.
// The npm spellings "" and "latest" are accepted as "any version".
package semver

import (
	"fmt"
	"slices"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Constraint is a parsed version range such as "^17.0.0" or ">=1.2 <2".
type Constraint struct {
	c   *mm.Constraints
	raw string
}

// ParseVersion parses a version string. A leading "v" or "=" is tolerated.
func ParseVersion(raw string) (Version, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "=")
	v, err := mm.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseConstraint parses an npm version range.
func ParseConstraint(raw string) (Constraint, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "latest" || s == "x" {
		s = "*"
	}
	c, err := mm.NewConstraint(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{c: c, raw: raw}, nil
}

// MustParseConstraint is like ParseConstraint but panics on error.
func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether v holds a parsed version.
func (v Version) Valid() bool { return v.v != nil }

// Major returns the major version number, or 0 for an invalid version.
func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

// String returns the normalized version (no "v" prefix).
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// String returns the range as originally written.
func (c Constraint) String() string { return c.raw }

// Satisfies reports whether v is inside c.
func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// SatisfiesAll reports whether v is inside every constraint in cs.
func SatisfiesAll(v Version, cs []Constraint) bool {
	for _, c := range cs {
		if !Satisfies(v, c) {
			return false
		}
	}
	return true
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
//
// Invalid versions sort below valid ones.
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// Check parses version and rng and reports whether the version satisfies the
// range. Parse failures are returned so callers can tell "unsatisfied" apart
// from "not a semver range" (git URLs, dist-tags other than latest, aliases).
func Check(version, rng string) (bool, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	c, err := ParseConstraint(rng)
	if err != nil {
		return false, err
	}
	return Satisfies(v, c), nil
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !Satisfies(candidate, c) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}

// SortDescending parses raw and returns the valid versions ordered from
// newest to oldest by semver precedence, using their original spelling.
// Strings that are not versions are dropped.
func SortDescending(raw []string) []string {
	parsed := make([]*mm.Version, 0, len(raw))
	for _, s := range raw {
		v, err := mm.NewVersion(s)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}
	slices.SortStableFunc(parsed, func(a, b *mm.Version) int { return b.Compare(a) })

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.Original()
	}
	return out
}

// Floor returns the lowest version a simple range can resolve to, by
// stripping comparison operators from its first comparator: "^17.0.2" gives
// 17.0.2, ">=4" gives 4.0.0, "~1.2" gives 1.2.0. Unions and hyphen ranges
// use their first component.
func Floor(rng string) (Version, error) {
	s := strings.TrimSpace(rng)
	if i := strings.Index(s, "||"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	s = strings.TrimLeft(s, "^~>=<v ")
	s = strings.NewReplacer(".x", ".0", ".X", ".0", ".*", ".0").Replace(s)
	if s == "" || s == "*" || s == "x" {
		return Version{}, fmt.Errorf("semver: range %q has no lower bound", rng)
	}
	return ParseVersion(s)
}
