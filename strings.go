package jsonmend

import "strings"

// beginString opens a string literal. The output delimiter is always an
// ASCII double quote regardless of what the input used; width is the byte
// width of the opening delimiter in the input (3 for smart quotes).
func (e *engine) beginString(delim byte, width int, before parseState) {
	if before == stateObjectKey {
		e.currentKeyStart = len(e.out)
	}
	if delim == '\'' {
		e.log(EventQuoteConverted)
	}
	e.out = append(e.out, '"')
	e.inString = true
	e.stringDelim = delim
	e.stateBeforeString = before
	e.state = stateString
	e.pos += width
}

// closeString terminates the current string, consuming the given number of
// delimiter bytes from the input (0 when closed at a structural character
// or at end of input).
func (e *engine) closeString(consumed int) {
	e.out = append(e.out, '"')
	e.inString = false
	e.pos += consumed
	if e.stateBeforeString == stateObjectKey {
		e.state = stateExpectColon
		return
	}
	e.state = stateExpectCommaOrEnd
	e.currentKeyStart = -1
}

// stepString processes one byte of string content.
func (e *engine) stepString() {
	b := e.in[e.pos]

	// A double quote inside a single-quoted string is embedded content;
	// the delimiter silently upgrades to " on close.
	if b == '"' && e.stringDelim == '\'' {
		e.out = append(e.out, '\\', '"')
		e.pos++
		return
	}

	if b == e.stringDelim {
		if e.stateBeforeString == stateObjectValue && !e.quoteClosesValue(e.pos) {
			// Embedded quote: preserve it as content.
			if b == '"' {
				e.out = append(e.out, '\\', '"')
			} else {
				e.out = append(e.out, b)
			}
			e.pos++
			return
		}
		e.closeString(1)
		return
	}

	if smartQuoteWidth(e.in, e.pos) == 3 {
		e.closeString(3)
		return
	}

	if b == '\\' {
		e.state = stateStringEscape
		e.pos++
		return
	}

	if b == '}' || b == ']' {
		if !e.hasClosingQuoteAhead(b) {
			// The string was never closed; terminate it here and let the
			// outer machine process the structural byte.
			e.log(EventStringClosed)
			e.closeString(0)
			return
		}
		e.out = append(e.out, b)
		e.pos++
		return
	}

	e.out = append(e.out, b)
	e.pos++
}

// stepEscape processes the byte following a backslash. The backslash has
// been consumed but not emitted.
func (e *engine) stepEscape() {
	c := e.in[e.pos]
	switch {
	case c == '"' || c == '\\' || c == '/' || c == 'b' || c == 'f' || c == 'n' || c == 'r' || c == 't':
		e.out = append(e.out, '\\', c)
		e.pos++
	case c == 'u' && e.pos+4 < len(e.in) && isHexRun(e.in[e.pos+1:e.pos+5]):
		e.out = append(e.out, '\\', 'u')
		e.out = append(e.out, e.in[e.pos+1:e.pos+5]...)
		e.pos += 5
	default:
		// Not a valid escape: escape the backslash itself so it survives
		// as a literal, and keep c as ordinary content.
		e.log(EventEscapeRepaired)
		e.out = append(e.out, '\\', '\\', c)
		e.pos++
	}
	e.state = stateString
}

func isHexRun(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !isDigitByte(b) && !(b >= 'a' && b <= 'f') && !(b >= 'A' && b <= 'F') {
			return false
		}
	}
	return true
}

// quoteClosesValue is the embedded-quote heuristic: given a quote at p
// inside an object value, it decides from bounded lookahead whether the
// quote terminates the string or is embedded content.
func (e *engine) quoteClosesValue(p int) bool {
	i := p + 1
	for i < len(e.in) && isASCIIWhitespace(e.in[i]) {
		i++
	}
	if i >= len(e.in) {
		return true
	}

	c := e.in[i]
	switch {
	case c == ',' || c == '}' || c == ']':
		return true
	case c == ':':
		// The following bytes begin a new key.
		return true
	case isAlphaByte(c) || c == '_' || c == '.':
		for j := i; j < len(e.in); j++ {
			switch e.in[j] {
			case ':':
				// A new key only when everything between the quote and the
				// colon is a single identifier; whitespace or any other
				// byte means the quote is embedded.
				for k := p + 1; k < j; k++ {
					if !isIdentByte(e.in[k]) {
						return false
					}
				}
				return true
			case ',', '}', ']':
				return false
			case '"', '\'':
				return e.quoteStartsKey(j)
			}
		}
		return false
	case c == '"' || c == '\'':
		return e.quoteStartsKey(i)
	default:
		return true
	}
}

// quoteStartsKey reports whether the quote at q begins a "key": pattern:
// a matching closing quote followed by optional whitespace and a colon.
func (e *engine) quoteStartsKey(q int) bool {
	delim := e.in[q]
	j := q + 1
	for j < len(e.in) && e.in[j] != delim {
		if e.in[j] == '\\' {
			j++
		}
		j++
	}
	if j >= len(e.in) {
		return false
	}
	j++
	for j < len(e.in) && isASCIIWhitespace(e.in[j]) {
		j++
	}
	return j < len(e.in) && e.in[j] == ':'
}

// hasClosingQuoteAhead is the unclosed-string heuristic: scanning forward
// from the structural byte at the current position, is there another
// occurrence of the string delimiter before the next structural stop?
func (e *engine) hasClosingQuoteAhead(structural byte) bool {
	for j := e.pos + 1; j < len(e.in); j++ {
		c := e.in[j]
		if c == e.stringDelim {
			return true
		}
		if c == '}' || c == ']' {
			return false
		}
	}
	return false
}

// handleUnquotedStringValue collects a bare object value up to the next
// structural character or quote and promotes it to a quoted string.
// Truncated keywords at end of input become empty values, and a quote that
// starts a new key recovers the missing comma.
func (e *engine) handleUnquotedStringValue() {
	start := e.pos
	for e.pos < len(e.in) {
		b := e.in[e.pos]
		if b == ',' || b == '}' || b == ']' || b == '"' || b == '\'' {
			break
		}
		e.pos++
	}
	text := strings.TrimRight(e.in[start:e.pos], " \t\r\n")

	if isTruncatedKeyword(text) && e.restOnlyClosers() {
		e.fillMissingValue()
		e.state = stateExpectCommaOrEnd
		return
	}

	if e.pos < len(e.in) && (e.in[e.pos] == '"' || e.in[e.pos] == '\'') && e.quoteStartsKey(e.pos) {
		// The quote begins the next member's key; supply the comma the
		// input dropped.
		e.log(EventStringQuoted)
		e.emitQuotedText(text)
		e.log(EventCommaInserted)
		e.out = append(e.out, ',', ' ')
		e.state = stateObjectKey
		e.currentKeyStart = -1
		return
	}

	if len(text) > 0 {
		e.log(EventStringQuoted)
		e.emitQuotedText(text)
	}
	e.state = stateExpectCommaOrEnd
}

// emitQuotedText writes text as a JSON string with backslashes and double
// quotes escaped.
func (e *engine) emitQuotedText(text string) {
	e.out = append(e.out, '"')
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '\\' || b == '"' {
			e.out = append(e.out, '\\')
		}
		e.out = append(e.out, b)
	}
	e.out = append(e.out, '"')
}

// isTruncatedKeyword reports whether text is a case-folded proper prefix of
// true, false, or null.
func isTruncatedKeyword(text string) bool {
	if len(text) == 0 || len(text) >= 5 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range []string{"true", "false", "null"} {
		if len(lower) < len(kw) && strings.HasPrefix(kw, lower) {
			return true
		}
	}
	return false
}

// restOnlyClosers reports whether the remaining input holds nothing but
// whitespace and closing delimiters.
func (e *engine) restOnlyClosers() bool {
	for j := e.pos; j < len(e.in); j++ {
		c := e.in[j]
		if c == '}' || c == ']' || isASCIIWhitespace(c) {
			continue
		}
		return false
	}
	return true
}
