package jsonmend

import "bytes"

// finalize closes every construct still open at end of input: the current
// string, a key that lost its colon or value, and the delimiter stack.
func (e *engine) finalize() {
	// An incomplete trailing backslash is dropped, never emitted.
	if e.state == stateStringEscape {
		e.state = stateString
	}

	if e.inString {
		if e.omitIncompleteStrings() && e.stateBeforeString == stateObjectValue && e.currentKeyStart >= 0 {
			e.run.log(EventKeyDeleted, e.pos, e.in)
			e.removeCurrentKey()
			e.inString = false
			e.state = stateExpectCommaOrEnd
		} else {
			e.run.log(EventStringClosed, e.pos, e.in)
			e.closeString(0)
		}
	}

	// The input ended on a bare key awaiting its colon.
	if e.state == stateExpectColon {
		e.completeBareKey()
		e.state = stateExpectCommaOrEnd
	}

	// A key string whose quote was just emitted with nothing after it.
	if e.state == stateObjectKey && len(e.out) > 0 && e.out[len(e.out)-1] == '"' &&
		!bytes.HasSuffix(e.out, []byte(`:""`)) {
		e.completeBareKey()
		e.state = stateExpectCommaOrEnd
	}

	// The input ended right after a colon.
	if e.state == stateObjectValue {
		t := rtrimWhitespace(e.out)
		if len(t) > 0 && t[len(t)-1] == ':' {
			e.out = t
			e.fillMissingValue()
		}
		e.state = stateExpectCommaOrEnd
	}

	for len(e.stack) > 0 {
		e.stripTrailingComma()
		closer := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if closer == '}' {
			t := rtrimWhitespace(e.out)
			if len(t) > 0 && t[len(t)-1] == ':' {
				e.out = t
				e.fillMissingValue()
				e.stripTrailingComma()
			}
		}
		e.run.log(EventCloserAdded, e.pos, e.in)
		e.out = append(e.out, closer)
	}
}

// completeBareKey supplies an empty value for a key the input cut off, or
// deletes the key under omit-empty.
func (e *engine) completeBareKey() {
	if e.omitEmptyValues() && e.currentKeyStart >= 0 {
		e.run.log(EventKeyDeleted, e.pos, e.in)
		e.removeCurrentKey()
		return
	}
	e.run.log(EventMissingValueFilled, e.pos, e.in)
	e.out = append(e.out, ':', '"', '"')
}
