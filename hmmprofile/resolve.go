package hmmprofile

import "github.com/pkg/errors"

// ResolveName looks up a profile by name or accession among candidates,
// falling back to the closest match by edit distance when there is no
// exact hit — useful for command-line invocations where a user's typo
// ("pk1nase" for "pkinase") shouldn't have to be an outright failure.
// This never influences scoring; it only chooses which profile a search
// runs against.
//
// maxDistance bounds how far ResolveName is willing to reach: if the best
// candidate's distance exceeds it, or if two or more candidates tie for
// best, ResolveName returns an error rather than guess.
func ResolveName(candidates []*Profile, query string, maxDistance int) (*Profile, error) {
	for _, p := range candidates {
		if p.Name == query || p.Accession == query {
			return p, nil
		}
	}

	best, bestDist, ties := (*Profile)(nil), -1, 0
	for _, p := range candidates {
		d := levenshtein(query, p.Name)
		switch {
		case bestDist < 0 || d < bestDist:
			best, bestDist, ties = p, d, 1
		case d == bestDist:
			ties++
		}
	}
	if best == nil {
		return nil, errors.Errorf("hmmprofile: no profiles to resolve %q against", query)
	}
	if bestDist > maxDistance {
		return nil, errors.Errorf("hmmprofile: no profile matches %q (closest is %q, edit distance %d, max %d)", query, best.Name, bestDist, maxDistance)
	}
	if ties > 1 {
		return nil, errors.Errorf("hmmprofile: %q is ambiguous: %d profiles tie at edit distance %d", query, ties, bestDist)
	}
	return best, nil
}

// levenshtein computes the classic edit distance between arbitrary-length
// strings a and b. util.Levenshtein (the source of this package's
// approach) requires its two inputs be the same length, a constraint that
// fits its original fixed-width-barcode use case but not profile/accession
// names, which routinely differ in length; this is the same
// dynamic-programming matrix generalized to drop that restriction.
func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
