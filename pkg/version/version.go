// Package version normalizes the version strings reported by dependencies
// into a canonical, totally ordered form.
//
// The accepted grammar is dotted release numbers with optional pre-release,
// post-release and development tags, semver style pre-release identifiers
// (which covers Go pseudo-versions) and build metadata:
//
//	v1.2.0 == 1.2 == 1.2.0+incompatible
//	1.0rc1, 1.0-beta.2, 2.1.post3, 3.0.dev1
//	v0.0.0-20250811234424-7f4e474c689c
//
// Strings outside the grammar fail with an UnparsableVersionError rather
// than being guessed at.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/vercheck/pkg/errors"
)

// Pre-release tags in canonical spelling.
const (
	TagAlpha = "a"
	TagBeta  = "b"
	TagRC    = "rc"
)

// Version is a normalized version. The zero value is not a valid version;
// obtain values from Parse or Normalize.
type Version struct {
	release []uint64

	preTag string // one of the Tag constants, empty when there is no named pre-release
	preNum uint64

	post    bool
	postNum uint64

	dev    bool
	devNum uint64

	ident []string // semver pre-release identifiers
}

var grammar = regexp.MustCompile(`^` +
	`(?:v|go|release-)?` +
	`(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(alpha|a|beta|b|preview|pre|rc|c)[-_.]?(\d+)?)?` +
	`(?:[-_.]?(post|rev|r)[-_.]?(\d+)?)?` +
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` +
	`(?:-([0-9a-z]+(?:[.-][0-9a-z]+)*))?` +
	`(?:\+[0-9a-z]+(?:[.-][0-9a-z]+)*)?` +
	`$`)

var preTags = map[string]string{
	"a":       TagAlpha,
	"alpha":   TagAlpha,
	"b":       TagBeta,
	"beta":    TagBeta,
	"c":       TagRC,
	"rc":      TagRC,
	"pre":     TagRC,
	"preview": TagRC,
}

// Normalize parses raw and labels any unexpected failure with what, which is
// usually the dependency the version belongs to. It fails with an
// UnparsableVersionError when raw is not a version, and with a
// PackagingError when the parser itself broke.
func Normalize(raw, what string) (v Version, err error) {
	if what == "" {
		what = strconv.Quote(raw)
	}
	defer func() {
		if r := recover(); r != nil {
			v = Version{}
			err = errors.NewPackagingError(what, fmt.Errorf("panic: %v", r))
		}
	}()

	v, err = Parse(raw)
	if err != nil && !errors.IsUnparsableVersion(err) {
		return Version{}, errors.NewPackagingError(what, err)
	}
	return v, err
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse parses raw into a Version.
func Parse(raw string) (Version, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	m := grammar.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.NewUnparsableVersionError(raw)
	}

	var v Version
	for _, part := range strings.Split(m[1], ".") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, err
		}
		v.release = append(v.release, n)
	}
	v.release = trimZeros(v.release)

	if m[2] != "" {
		v.preTag = preTags[m[2]]
		n, err := optionalNumber(m[3])
		if err != nil {
			return Version{}, err
		}
		v.preNum = n
	}
	if m[4] != "" {
		n, err := optionalNumber(m[5])
		if err != nil {
			return Version{}, err
		}
		v.post, v.postNum = true, n
	}
	if m[6] != "" {
		n, err := optionalNumber(m[7])
		if err != nil {
			return Version{}, err
		}
		v.dev, v.devNum = true, n
	}
	if m[8] != "" {
		v.ident = strings.Split(m[8], ".")
	}

	return v, nil
}

// Suggest returns the canonical rendering of raw, or the empty string when
// raw is not a version.
func Suggest(raw string) string {
	v, err := Parse(raw)
	if err != nil {
		return ""
	}
	return v.String()
}

// Release returns a copy of the release components with trailing zeros removed.
func (v Version) Release() []uint64 {
	return append([]uint64(nil), v.release...)
}

// IsPrerelease reports whether v carries a pre-release or development tag.
func (v Version) IsPrerelease() bool {
	return v.preTag != "" || len(v.ident) > 0 || v.dev
}

// String renders the canonical form. Parsing the result yields an equal Version.
func (v Version) String() string {
	var b strings.Builder

	release := v.release
	if len(release) == 0 {
		release = []uint64{0}
	}
	for i, n := range release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(n, 10))
	}
	if len(release) == 1 {
		b.WriteString(".0")
	}

	if v.preTag != "" {
		b.WriteString(v.preTag)
		b.WriteString(strconv.FormatUint(v.preNum, 10))
	}
	if v.post {
		b.WriteString(".post")
		b.WriteString(strconv.FormatUint(v.postNum, 10))
	}
	if v.dev {
		b.WriteString(".dev")
		b.WriteString(strconv.FormatUint(v.devNum, 10))
	}
	if len(v.ident) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(v.ident, "."))
	}
	return b.String()
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Compare returns -1, 0 or +1. Any pre-release sorts before the final
// release; named tags sort a < b < rc < identifier lists. A development
// release sorts before the same version without the dev tag, and a bare
// development release (1.0.dev1) before every pre-release of that version.
func (v Version) Compare(o Version) int {
	if c := compareRelease(v.release, o.release); c != 0 {
		return c
	}
	if c := comparePre(v, o); c != 0 {
		return c
	}
	if c := compareOptional(v.post, v.postNum, o.post, o.postNum, -1); c != 0 {
		return c
	}
	return compareOptional(v.dev, v.devNum, o.dev, o.devNum, 1)
}

func compareRelease(a, b []uint64) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y uint64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmpUint(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// preRank orders the kinds of pre-release; final releases rank highest and
// a bare development release ranks below every tagged pre-release.
func preRank(v Version) int {
	switch {
	case v.dev && !v.post && v.preTag == "" && len(v.ident) == 0:
		return -1
	case v.preTag == TagAlpha:
		return 0
	case v.preTag == TagBeta:
		return 1
	case v.preTag == TagRC:
		return 2
	case len(v.ident) > 0:
		return 3
	default:
		return 4
	}
}

func comparePre(a, b Version) int {
	if c := cmpInt(preRank(a), preRank(b)); c != 0 {
		return c
	}
	if a.preTag != "" {
		if c := cmpUint(a.preNum, b.preNum); c != 0 {
			return c
		}
	}
	return compareIdents(a.ident, b.ident)
}

// compareIdents follows semver precedence: numeric identifiers compare
// numerically and sort before alphanumeric ones; a shorter list sorts first.
func compareIdents(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		// a list sorts before its absence
		return -cmpInt(len(a), len(b))
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		x, xerr := strconv.ParseUint(a[i], 10, 64)
		y, yerr := strconv.ParseUint(b[i], 10, 64)
		switch {
		case xerr == nil && yerr == nil:
			if c := cmpUint(x, y); c != 0 {
				return c
			}
		case xerr == nil:
			return -1
		case yerr == nil:
			return 1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(a), len(b))
}

// compareOptional compares an optional numbered tag. absent is the result
// when only the receiver has the tag.
func compareOptional(aHas bool, an uint64, bHas bool, bn uint64, absent int) int {
	switch {
	case aHas && bHas:
		return cmpUint(an, bn)
	case aHas:
		return -absent
	case bHas:
		return absent
	default:
		return 0
	}
}

func optionalNumber(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func trimZeros(release []uint64) []uint64 {
	for len(release) > 1 && release[len(release)-1] == 0 {
		release = release[:len(release)-1]
	}
	return release
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
