// Package policy implements the version selection rules of the engine:
// stable releases win over pre-releases, and a candidate is only eligible
// when its declared range accepts the host version.
package policy

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/devd/internal/core/domain"
)

// Valid reports whether v is a strict semantic version.
func Valid(v string) bool {
	_, err := semver.StrictNewVersion(v)
	return err == nil
}

// PickLatest returns the highest version in versions. Stable releases are
// preferred over pre-releases; a pre-release is only returned when no stable
// release exists. Strings that are not semantic versions are ignored.
func PickLatest(versions []string) (string, bool) {
	var bestStable, bestPre *semver.Version
	var stableRaw, preRaw string

	for _, raw := range versions {
		v, err := semver.StrictNewVersion(raw)
		if err != nil {
			continue
		}
		if v.Prerelease() == "" {
			if higher(v, raw, bestStable, stableRaw) {
				bestStable, stableRaw = v, raw
			}
			continue
		}
		if higher(v, raw, bestPre, preRaw) {
			bestPre, preRaw = v, raw
		}
	}

	switch {
	case bestStable != nil:
		return stableRaw, true
	case bestPre != nil:
		return preRaw, true
	default:
		return "", false
	}
}

// higher orders by precedence, then by the raw string so that versions
// differing only in build metadata still pick deterministically.
func higher(v *semver.Version, raw string, best *semver.Version, bestRaw string) bool {
	if best == nil {
		return true
	}
	if c := v.Compare(best); c != 0 {
		return c > 0
	}
	return raw > bestRaw
}

// BestFit keeps the candidates whose range accepts host and returns the
// latest of them.
func BestFit(candidates []domain.CandidateVersion, host string) (domain.CandidateVersion, bool) {
	eligible := make(map[string]domain.CandidateVersion, len(candidates))
	versions := make([]string, 0, len(candidates))

	for _, c := range candidates {
		if !Satisfies(host, c.Range) {
			continue
		}
		if _, seen := eligible[c.Version]; seen {
			continue
		}
		eligible[c.Version] = c
		versions = append(versions, c.Version)
	}

	latest, ok := PickLatest(versions)
	if !ok {
		return domain.CandidateVersion{}, false
	}
	return eligible[latest], true
}

// Satisfies reports whether host is accepted by the range compat.
// The wildcard and the empty range accept every host. A pre-release host is
// checked by its release triple, so a 2.0.0-beta.1 host accepts "^2.0.0".
func Satisfies(host, compat string) bool {
	compat = strings.TrimSpace(compat)
	if isWildcard(compat) {
		return true
	}

	v, err := semver.StrictNewVersion(host)
	if err != nil {
		return false
	}
	release := semver.New(v.Major(), v.Minor(), v.Patch(), "", "")

	constraint, err := semver.NewConstraint(compat)
	if err != nil {
		return false
	}
	return constraint.Check(release)
}

// InRange reports whether version lies inside constraint. Unlike Satisfies the
// pre-release is kept, so "1.5.0-beta.1" is outside "^1.0.0".
func InRange(version, constraint string) bool {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return false
	}
	c, err := semver.NewConstraint(strings.TrimSpace(constraint))
	if err != nil {
		return false
	}
	return c.Check(v)
}

// IsNewer reports whether a has higher precedence than b.
// Invalid input never compares as newer.
func IsNewer(a, b string) bool {
	va, err := semver.StrictNewVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.StrictNewVersion(b)
	if err != nil {
		return true
	}
	return va.GreaterThan(vb)
}

// IsRange reports whether s is a version range rather than a single version.
func IsRange(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || Valid(s) {
		return false
	}
	_, err := semver.NewConstraint(s)
	return err == nil
}

// Sort orders versions by ascending precedence. Invalid strings sort first,
// lexically among themselves.
func Sort(versions []string) {
	slices.SortStableFunc(versions, func(a, b string) int {
		va, errA := semver.StrictNewVersion(a)
		vb, errB := semver.StrictNewVersion(b)
		switch {
		case errA != nil && errB != nil:
			return strings.Compare(a, b)
		case errA != nil:
			return -1
		case errB != nil:
			return 1
		}
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func isWildcard(compat string) bool {
	switch compat {
	case "", "*", "x", "X":
		return true
	default:
		return false
	}
}
