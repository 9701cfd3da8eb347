package jsonmend

import (
	"strings"

	"github.com/tidwall/gjson"
)

// sanitize normalises external noise so the engine sees content that is at
// least plausibly JSON: markdown fences are unwrapped, comments stripped,
// and when the remainder still does not parse, the largest valid balanced
// object (or first valid balanced array) is extracted as a candidate.
func sanitize(input string, run *repairRun) string {
	s := extractFencedBlocks(input)
	s = stripComments(s, run)

	if gjson.Valid(s) {
		return s
	}

	// Candidate extraction exists to dig JSON out of surrounding prose. An
	// input that already leads with a container is a repair job, not a
	// search job: extracting a valid inner fragment from a truncated
	// document would replace the root with the wrong value.
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return s
	}

	if c := largestBalancedObject(s); c != "" {
		return c
	}
	if c := firstBalancedArray(s); c != "" {
		return c
	}
	return s
}

// extractFencedBlocks unwraps markdown code fences. ```json fences have
// priority; when any exist, their interiors are concatenated in order.
// Otherwise plain ``` fences are used. Inputs without fences pass through
// unchanged.
func extractFencedBlocks(input string) string {
	if !strings.Contains(input, "```") {
		return input
	}
	blocks := fenceInteriors(input, "```json")
	if len(blocks) == 0 {
		blocks = fenceInteriors(input, "```")
	}
	if len(blocks) == 0 {
		return input
	}
	return strings.Join(blocks, "")
}

// fenceInteriors collects the whitespace-trimmed interiors of all
// marker ... ``` fences in order of appearance.
func fenceInteriors(s, marker string) []string {
	var out []string
	i := 0
	for {
		start := strings.Index(s[i:], marker)
		if start < 0 {
			break
		}
		start += i + len(marker)
		end := strings.Index(s[start:], "```")
		if end < 0 {
			break
		}
		interior := strings.TrimSpace(s[start : start+end])
		if interior != "" {
			out = append(out, interior)
		}
		i = start + end + 3
	}
	return out
}

// stripComments removes // line comments and /* */ block comments while
// respecting single- and double-quoted string literals and URL schemes.
// When a comment is removed with non-whitespace on both sides, a single
// space is inserted to avoid merging tokens; when both sides are spaces,
// one is dropped.
func stripComments(s string, run *repairRun) string {
	if !strings.Contains(s, "//") && !strings.Contains(s, "/*") {
		return s
	}

	out := make([]byte, 0, len(s))
	inString := false
	var delim byte
	escaped := false // escape pending inside a string
	parity := false  // unescaped backslash seen outside a string
	i := 0
	for i < len(s) {
		c := s[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == delim:
				inString = false
			}
			i++
			continue
		}

		if c == '\n' || c == '\r' {
			parity = false
			out = append(out, c)
			i++
			continue
		}
		if parity {
			// The byte after a bare backslash carries no special meaning.
			parity = false
			out = append(out, c)
			i++
			continue
		}
		if c == '\\' {
			parity = true
			out = append(out, c)
			i++
			continue
		}
		if c == '"' || c == '\'' {
			inString = true
			delim = c
			out = append(out, c)
			i++
			continue
		}

		if c == '/' && i+1 < len(s) {
			if s[i+1] == '/' && !isSchemeSlashes(s, i) {
				j := i + 2
				for j < len(s) && s[j] != '\n' && s[j] != '\r' {
					j++
				}
				run.log(EventCommentRemoved, i, s)
				out = joinAfterRemoval(out, s, j)
				i = j
				continue
			}
			if s[i+1] == '*' {
				j := i + 2
				for j < len(s) && !(s[j] == '*' && j+1 < len(s) && s[j+1] == '/') {
					j++
				}
				if j < len(s) {
					j += 2 // past the closing */
				}
				run.log(EventCommentRemoved, i, s)
				out = joinAfterRemoval(out, s, j)
				i = j
				continue
			}
		}

		out = append(out, c)
		i++
	}
	return string(out)
}

// isSchemeSlashes reports whether the // at s[i] is part of a URL scheme
// like http:// rather than a comment: the preceding character is a colon
// and the run of characters immediately before the colon is two or more
// alphabetic bytes.
func isSchemeSlashes(s string, i int) bool {
	if i == 0 || s[i-1] != ':' {
		return false
	}
	n := 0
	for j := i - 2; j >= 0 && isAlphaByte(s[j]); j-- {
		n++
	}
	return n >= 2
}

// joinAfterRemoval applies the token-merge rule after a comment span has
// been dropped: out holds everything before the comment, and s[next:] is
// what follows it.
func joinAfterRemoval(out []byte, s string, next int) []byte {
	var left, right byte
	if len(out) > 0 {
		left = out[len(out)-1]
	}
	if next < len(s) {
		right = s[next]
	}
	switch {
	case left != 0 && right != 0 && !isASCIIWhitespace(left) && !isASCIIWhitespace(right):
		out = append(out, ' ')
	case left == ' ' && right == ' ':
		out = out[:len(out)-1]
	}
	return out
}

// largestBalancedObject scans for the largest balanced { ... } substring
// that validates as JSON. Braces inside string literals are ignored;
// backslash escapes suspend quote matching for one byte.
func largestBalancedObject(s string) string {
	best := ""
	for _, start := range structuralPositions(s, '{') {
		end := scanBalanced(s, start)
		if end < 0 {
			continue
		}
		candidate := s[start : end+1]
		if len(candidate) > len(best) && gjson.Valid(candidate) {
			best = candidate
		}
	}
	return best
}

// firstBalancedArray returns the first balanced [ ... ] substring that
// validates as JSON.
func firstBalancedArray(s string) string {
	for _, start := range structuralPositions(s, '[') {
		end := scanBalanced(s, start)
		if end < 0 {
			continue
		}
		candidate := s[start : end+1]
		if gjson.Valid(candidate) {
			return candidate
		}
	}
	return ""
}

// structuralPositions returns the indexes of every occurrence of open that
// sits outside a string literal.
func structuralPositions(s string, open byte) []int {
	var positions []int
	inString := false
	var delim byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == delim:
				inString = false
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			inString = true
			delim = c
		case c == open:
			positions = append(positions, i)
		}
	}
	return positions
}

// scanBalanced returns the index of the closer matching the opener at
// start, or -1 when the input ends before the structure balances.
func scanBalanced(s string, start int) int {
	open := s[start]
	var closer byte
	if open == '{' {
		closer = '}'
	} else {
		closer = ']'
	}

	depth := 0
	inString := false
	var delim byte
	escaped := false
	for j := start; j < len(s); j++ {
		c := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == delim:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			delim = c
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
