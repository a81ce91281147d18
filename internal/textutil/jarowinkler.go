package textutil

const (
	winklerPrefixLimit = 4
	winklerScale       = 0.1
)

// Jaro returns the Jaro similarity of a and b computed over runes.
// Identical strings (including two empty strings) score 1; a single empty
// side scores 0.
func Jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}
	s1, s2 := []rune(a), []rune(b)
	// Greedy matching depends on scan direction; a fixed order keeps the
	// score symmetric.
	if len(s1) > len(s2) || (len(s1) == len(s2) && a > b) {
		s1, s2 = s2, s1
	}
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	matchWindow := max(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	s1Matches := make([]bool, len1)
	s2Matches := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := max(0, i-matchWindow)
		end := min(i+matchWindow+1, len2)
		for j := start; j < end; j++ {
			if s2Matches[j] || s1[i] != s2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !s1Matches[i] {
			continue
		}
		for !s2Matches[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len1) + m/float64(len2) + (m-t)/m) / 3.0
}

// JaroWinkler returns the Jaro similarity of a and b boosted by their common
// prefix of up to four runes. The result is always within [0,1].
func JaroWinkler(a, b string) float64 {
	jaro := Jaro(a, b)
	if jaro == 1.0 || jaro == 0.0 {
		return jaro
	}
	prefix := commonPrefix(a, b, winklerPrefixLimit)
	score := jaro + float64(prefix)*winklerScale*(1-jaro)
	return min(score, 1.0)
}

func commonPrefix(a, b string, limit int) int {
	r1, r2 := []rune(a), []rune(b)
	n := 0
	for n < limit && n < len(r1) && n < len(r2) && r1[n] == r2[n] {
		n++
	}
	return n
}
