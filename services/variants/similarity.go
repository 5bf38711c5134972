package variants

// ratioTolerance absorbs float rounding when a ratio lands exactly on the acceptance bound,
// e.g. 4/6 against 1-1/3.
const ratioTolerance = 1e-9

type matchingBlock struct {
	i, j, size int
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0,1]: twice the number of
// characters in matching blocks divided by the total number of characters.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	return ratioOf(ra, rb, matchedLength(ra, rb))
}

// IsCloseMatch reports whether word is accepted as a variant of keyword. The acceptance bound
// is 1 - threshold/max(len), so short words must match almost exactly while long words
// tolerate more absolute divergence.
func IsCloseMatch(keyword, word string, threshold float64) bool {
	a, b := []rune(keyword), []rune(word)
	return isCloseMatch(a, b, threshold)
}

func isCloseMatch(a, b []rune, threshold float64) bool {
	if len(a) > 0 && len(b) == 0 {
		return false
	}

	required := requiredRatio(len(a), len(b), threshold)

	if realQuickRatio(a, b)+ratioTolerance < required {
		return false
	}
	if quickRatio(a, b)+ratioTolerance < required {
		return false
	}

	return ratioOf(a, b, matchedLength(a, b))+ratioTolerance >= required
}

func requiredRatio(lenA, lenB int, threshold float64) float64 {
	longest := max(lenA, lenB, 1)
	return 1 - threshold/float64(longest)
}

func ratioOf(a, b []rune, matched int) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}

	return 2 * float64(matched) / float64(total)
}

// realQuickRatio is an upper bound on the ratio that only looks at lengths.
func realQuickRatio(a, b []rune) float64 {
	return ratioOf(a, b, min(len(a), len(b)))
}

// quickRatio is an upper bound on the ratio from the multiset intersection of characters.
func quickRatio(a, b []rune) float64 {
	counts := make(map[rune]int, len(b))
	for _, r := range b {
		counts[r]++
	}

	matched := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			matched++
		}
	}

	return ratioOf(a, b, matched)
}

func matchedLength(a, b []rune) int {
	matched := 0
	for _, block := range matchingBlocks(a, b) {
		matched += block.size
	}

	return matched
}

// matchingBlocks finds the longest common block, then recurses on the pieces to its left and
// right. Blocks are returned in the order they are found.
func matchingBlocks(a, b []rune) []matchingBlock {
	type span struct {
		alo, ahi, blo, bhi int
	}

	var blocks []matchingBlock
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		block := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if block.size == 0 {
			continue
		}
		blocks = append(blocks, block)

		if s.alo < block.i && s.blo < block.j {
			queue = append(queue, span{s.alo, block.i, s.blo, block.j})
		}
		if block.i+block.size < s.ahi && block.j+block.size < s.bhi {
			queue = append(queue, span{block.i + block.size, s.ahi, block.j + block.size, s.bhi})
		}
	}

	return blocks
}

// longestMatch returns the longest block a[i:i+size] == b[j:j+size] inside the given bounds.
// Ties go to the block starting earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) matchingBlock {
	best := matchingBlock{i: alo, j: blo}
	width := bhi - blo
	if ahi <= alo || width <= 0 {
		return best
	}

	prev := make([]int, width+1)
	curr := make([]int, width+1)

	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			col := j - blo + 1
			if a[i] != b[j] {
				curr[col] = 0
				continue
			}
			k := prev[col-1] + 1
			curr[col] = k
			if k > best.size {
				best = matchingBlock{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		prev, curr = curr, prev
	}

	return best
}
