package jsonmend

// RepairEvent identifies the kind of repair decision made at a given input
// offset. Every decision is logged at Debug and forwarded to the metrics
// callback as a RepairDecisionData event.
type RepairEvent string

const (
	// EventCommentRemoved fires when the sanitiser strips a line or block comment.
	EventCommentRemoved RepairEvent = "comment_removed"

	// EventKeywordNormalized fires when a keyword like True or None is
	// rewritten to its JSON form.
	EventKeywordNormalized RepairEvent = "keyword_normalized"

	// EventQuoteConverted fires when a single-quoted or smart-quoted string
	// is converted to double quotes.
	EventQuoteConverted RepairEvent = "quote_converted"

	// EventCommaInserted fires when a missing comma is inserted between members.
	EventCommaInserted RepairEvent = "comma_inserted"

	// EventColonInserted fires when a missing colon is inserted after a key.
	EventColonInserted RepairEvent = "colon_inserted"

	// EventMissingValueFilled fires when an empty string is substituted for
	// a missing or truncated value.
	EventMissingValueFilled RepairEvent = "missing_value_filled"

	// EventStringClosed fires when an unclosed string is terminated at a
	// structural character or at end of input.
	EventStringClosed RepairEvent = "string_closed"

	// EventStringQuoted fires when an unquoted key or value is promoted to
	// a quoted string.
	EventStringQuoted RepairEvent = "string_quoted"

	// EventKeyDeleted fires when a key is removed under one of the omit options.
	EventKeyDeleted RepairEvent = "key_deleted"

	// EventCloserAdded fires when the finaliser appends a missing } or ].
	EventCloserAdded RepairEvent = "closer_added"

	// EventEscapeRepaired fires when an invalid escape sequence has its
	// backslash escaped to keep it literal.
	EventEscapeRepaired RepairEvent = "escape_repaired"

	// EventNumberTrimmed fires when an incomplete number tail (a bare
	// exponent marker, trailing dot, or leading plus sign) is rolled back.
	EventNumberTrimmed RepairEvent = "number_trimmed"
)

// contextSnippetRadius is the number of bytes shown on each side of the
// >>> marker in decision log records.
const contextSnippetRadius = 15

// contextSnippet returns a symmetric window around offset in src with a
// >>> marker at the offset.
func contextSnippet(src string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	start := offset - contextSnippetRadius
	if start < 0 {
		start = 0
	}
	end := offset + contextSnippetRadius
	if end > len(src) {
		end = len(src)
	}
	return src[start:offset] + ">>>" + src[offset:end]
}
