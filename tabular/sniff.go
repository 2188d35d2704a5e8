package tabular

import (
	"errors"
	"strings"
)

var ErrNoDelimiter = errors.New("could not determine delimiter")

// Sniff selects delimiter from candidates (in order of preference) which
// splits non-blank sample lines most consistently. Required consistency
// starts at 1.0 and is lowered down to 0.9, the first candidate reaching it
// wins.
func Sniff(lines []string, candidates string) (rune, error) {
	if len(candidates) == 0 {
		candidates = DefaultDelimiters
	}

	sample := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(strings.TrimSpace(l)) > 0 {
			sample = append(sample, l)
		}
	}
	if len(sample) == 0 {
		return 0, ErrNoDelimiter
	}

	scores := make(map[rune]float64, len(candidates))
	for _, d := range candidates {
		if _, ok := scores[d]; !ok {
			scores[d] = consistency(sample, d)
		}
	}
	for pct := 100; pct >= 90; pct-- {
		threshold := float64(pct) / 100
		for _, d := range candidates {
			if scores[d] >= threshold {
				return d, nil
			}
		}
	}
	return 0, ErrNoDelimiter
}

// consistency is share of lines having modal count of d, reduced by share
// of lines which do not. Zero modal count never qualifies.
func consistency(lines []string, d rune) float64 {
	freq := make(map[int]int)
	for _, l := range lines {
		freq[countDelimiter(l, d)]++
	}
	mode, at := 0, 0
	for n, c := range freq {
		if c > at || (c == at && n > mode) {
			mode, at = n, c
		}
	}
	if mode == 0 {
		return 0
	}
	return float64(at-(len(lines)-at)) / float64(len(lines))
}

// countDelimiter counts occurrences of d outside of double quoted fields.
func countDelimiter(line string, d rune) int {
	n, quoted := 0, false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == d && !quoted:
			n++
		}
	}
	return n
}
