package jsonmend

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRepair_EndToEnd covers the canonical repair scenarios: quoting,
// missing separators, truncation, and keyword normalisation.
func TestRepair_EndToEnd(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "SingleQuotedStrings",
			input:    `{'key': 'value'}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "UnquotedKeys",
			input:    `{key: "value", name: "John"}`,
			expected: `{"key": "value", "name": "John"}`,
		},
		{
			name:     "TrailingComma",
			input:    `{"key": "value",}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "MissingCommaBetweenMembers",
			input:    `{"key1": "v1" "key2": "v2"}`,
			expected: `{"key1": "v1","key2": "v2"}`,
		},
		{
			name:     "TruncatedAfterNumber",
			input:    `{"count": 123`,
			expected: `{"count": 123}`,
		},
		{
			name:     "TruncatedInsideString",
			input:    `{"name": "John", "description": "A person who`,
			expected: `{"name": "John", "description": "A person who"}`,
		},
		{
			name:     "TruncatedKeyword",
			input:    `{"active": tru`,
			expected: `{"active": ""}`,
		},
		{
			name:     "TruncatedUnicodeEscape",
			input:    `{"emoji": "\u26`,
			expected: `{"emoji": "\\u26"}`,
		},
		{
			name:     "MarkdownFence",
			input:    " ```json {\"x\":1} ``` ",
			expected: `{"x":1}`,
		},
		{
			name:     "MissingColon",
			input:    `{"key" "value"}`,
			expected: `{"key":"value"}`,
		},
		{
			name:     "MissingValueBeforeComma",
			input:    `{"a": , "b": 2}`,
			expected: `{"a": "", "b": 2}`,
		},
		{
			name:     "PythonKeywords",
			input:    `{"a": True, "b": False, "c": None}`,
			expected: `{"a": true, "b": false, "c": null}`,
		},
		{
			name:     "UppercaseKeywords",
			input:    `{"a": TRUE, "b": NULL}`,
			expected: `{"a": true, "b": null}`,
		},
		{
			name:     "KeywordLikeWordStaysString",
			input:    `{"a": nullable}`,
			expected: `{"a": "nullable"}`,
		},
		{
			name:     "UnquotedValue",
			input:    `{a: hello world}`,
			expected: `{"a": "hello world"}`,
		},
		{
			name:     "UnquotedURLValue",
			input:    `{a: http://example.com}`,
			expected: `{"a": "http://example.com"}`,
		},
		{
			name:     "UnquotedValueThenNewKey",
			input:    `{a: bare "b": 2}`,
			expected: `{"a": "bare", "b": 2}`,
		},
		{
			name:     "TruncatedArray",
			input:    `[1, 2, 3`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "SingleQuotedArrayStrings",
			input:    `['a', "b"]`,
			expected: `["a", "b"]`,
		},
		{
			name:     "DeepTruncation",
			input:    `{"nested": {"a": [1, {"b": "c`,
			expected: `{"nested": {"a": [1, {"b": "c"}]}}`,
		},
		{
			name:     "UnclosedStringAtCloser",
			input:    `{"a": "broken}`,
			expected: `{"a": "broken"}`,
		},
		{
			name:     "BraceInsideSingleQuotedString",
			input:    `{'a': 'has } inside', 'b': 1}`,
			expected: `{"a": "has } inside", "b": 1}`,
		},
		{
			name:     "EmbeddedQuotesEscaped",
			input:    `{"message": "She said "hello" to him"}`,
			expected: `{"message": "She said \"hello\" to him"}`,
		},
		{
			name:     "SmartQuoteKeyAndValue",
			input:    "{“key”: “hi”}",
			expected: `{"key": "hi"}`,
		},
		{
			name:     "DoubledQuoteKey",
			input:    `{""special key"": "v"}`,
			expected: `{"special key": "v"}`,
		},
		{
			name:     "DoubledQuoteAtValueStart",
			input:    `{"a": ""hello"}`,
			expected: `{"a": "hello"}`,
		},
		{
			name:     "BareKeyAtEndOfInput",
			input:    `{"a"`,
			expected: `{"a":""}`,
		},
		{
			name:     "ColonAtEndOfInput",
			input:    `{"a":`,
			expected: `{"a":""}`,
		},
		{
			name:     "LoneOpenBrace",
			input:    `{`,
			expected: `{}`,
		},
		{
			name:     "LoneOpenBracket",
			input:    `[`,
			expected: `[]`,
		},
		{
			name:     "ArrayTrailingComma",
			input:    `[1,`,
			expected: `[1]`,
		},
		{
			name:     "BareExponent",
			input:    `{"a": 1e`,
			expected: `{"a": 1}`,
		},
		{
			name:     "BareExponentWithSign",
			input:    `{"a": 1e+}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "TrailingDot",
			input:    `{"a": 7.}`,
			expected: `{"a": 7}`,
		},
		{
			name:     "LeadingPlusDropped",
			input:    `{"a": +42}`,
			expected: `{"a": 42}`,
		},
		{
			name:     "LeadingCommaInObject",
			input:    `{,"a":1}`,
			expected: `{"a":1}`,
		},
		{
			name:     "NumericKey",
			input:    `{123: 4}`,
			expected: `{"123": 4}`,
		},
		{
			name:     "TruncatedFalseKeyword",
			input:    `{"flag": fals`,
			expected: `{"flag": ""}`,
		},
		{
			name:     "TruncatedNullInsideNesting",
			input:    `{"a": {"b": nul}}`,
			expected: `{"a": {"b": ""}}`,
		},
		{
			name:     "KeywordPrefixMidDocumentStaysString",
			input:    `{"a": tru, "b": 1}`,
			expected: `{"a": "tru", "b": 1}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Repair(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			if got != "" {
				assert.True(t, json.Valid([]byte(got)), "repaired output must be strict JSON: %q", got)
			}
		})
	}
}

// TestRepair_OmitOptions exercises the key deletion branches.
func TestRepair_OmitOptions(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		opts     []Option
		expected string
	}{
		{
			name:     "OmitEmpty_MissingValueBeforeCloser",
			input:    `{"a": 1, "b": }`,
			opts:     []Option{WithOmitEmptyValues(true)},
			expected: `{"a": 1}`,
		},
		{
			name:     "OmitEmpty_MissingValueBeforeComma",
			input:    `{"a": , "b": 2}`,
			opts:     []Option{WithOmitEmptyValues(true)},
			expected: `{"b": 2}`,
		},
		{
			name:     "OmitEmpty_BareKeyAtEnd",
			input:    `{"a": "x", "b"`,
			opts:     []Option{WithOmitEmptyValues(true)},
			expected: `{"a": "x"}`,
		},
		{
			name:     "OmitEmpty_OnlyKey",
			input:    `{"a": }`,
			opts:     []Option{WithOmitEmptyValues(true)},
			expected: `{}`,
		},
		{
			name:     "OmitEmpty_TruncatedKeyword",
			input:    `{"active": tru`,
			opts:     []Option{WithOmitEmptyValues(true)},
			expected: `{}`,
		},
		{
			name:     "OmitIncomplete_TruncatedValueString",
			input:    `{"a": 1, "desc": "partial`,
			opts:     []Option{WithOmitIncompleteStrings(true)},
			expected: `{"a": 1}`,
		},
		{
			name:     "OmitIncomplete_ArrayStringStillCloses",
			input:    `["partial`,
			opts:     []Option{WithOmitIncompleteStrings(true)},
			expected: `["partial"]`,
		},
		{
			name:     "OmitDisabled_TruncatedValueString",
			input:    `{"a": 1, "desc": "partial`,
			expected: `{"a": 1, "desc": "partial"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(tc.opts...)
			got, err := r.Repair(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

// TestEngine_NumberNeverEndsInBareExponent checks the targeted number
// invariant: no emitted number carries a trailing e or E without digits.
func TestEngine_NumberNeverEndsInBareExponent(t *testing.T) {
	inputs := []string{
		`{"a": 1e`,
		`{"a": 1E`,
		`{"a": 1e-`,
		`{"a": 1E+`,
		`{"a": 3.5e`,
		`[1e, 2E-]`,
		`{"a": 9e}`,
	}
	for _, input := range inputs {
		got, err := Repair(input)
		require.NoError(t, err, "input %q", input)
		for i := 0; i < len(got); i++ {
			if got[i] == 'e' || got[i] == 'E' {
				// Only flag e/E that terminates a number.
				if i+1 >= len(got) || !isDigitByte(got[i+1]) && got[i+1] != '+' && got[i+1] != '-' {
					t.Errorf("Repair(%q) = %q contains a bare exponent marker", input, got)
				}
			}
		}
	}
}

// TestEngine_StackBalancedOutput checks that every opener in the output has
// a matching closer once repair completes.
func TestEngine_StackBalancedOutput(t *testing.T) {
	inputs := []string{
		`{"a": [1, {"b": [`,
		`[[[`,
		`{"a": {"b": {"c":`,
		`[{"a": 1}, {"b": [2,`,
	}
	for _, input := range inputs {
		got, err := Repair(input)
		require.NoError(t, err, "input %q", input)
		require.NotEmpty(t, got)
		var depth int
		inStr := false
		esc := false
		for i := 0; i < len(got); i++ {
			c := got[i]
			if inStr {
				switch {
				case esc:
					esc = false
				case c == '\\':
					esc = true
				case c == '"':
					inStr = false
				}
				continue
			}
			switch c {
			case '"':
				inStr = true
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		assert.Zero(t, depth, "Repair(%q) = %q is unbalanced", input, got)
		assert.True(t, json.Valid([]byte(got)), "Repair(%q) = %q", input, got)
	}
}

// TestEngine_KeyDeletionRestoresOutput checks that deleting a key under
// omit-empty leaves no trace of the key's bytes in the output.
func TestEngine_KeyDeletionRestoresOutput(t *testing.T) {
	r := New(WithOmitEmptyValues(true))

	got, err := r.Repair(`{"first": "kept", "dropped_key": }`)
	require.NoError(t, err)
	assert.Equal(t, `{"first": "kept"}`, got)
	assert.NotContains(t, got, "dropped_key")

	got, err = r.Repair(`{"solo": `)
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)
}

// TestRepair_ExtractsPayloadFromProse checks candidate extraction when
// prose surrounds the JSON payload.
func TestRepair_ExtractsPayloadFromProse(t *testing.T) {
	got, err := Repair(`garbage before {"a": 1, "b": [2, 3]} garbage after`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1, "b": [2, 3]}`, got)

	got, err = Repair(`text [1, 2, 3] tail`)
	require.NoError(t, err)
	assert.Equal(t, `[1, 2, 3]`, got)
}

// TestRepair_PathologicalInputFails exercises the finaliser's strict-parse
// guard: leading zeros survive the engine untouched and fail validation.
func TestRepair_PathologicalInputFails(t *testing.T) {
	_, err := Repair(`{"a": 0123}`)
	require.Error(t, err)
	var failure *RepairFailedError
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Output, "0123")
}

// TestRepair_GarbageProducesEmptyOutput checks that inputs with no JSON
// content repair to the empty string rather than an error.
func TestRepair_GarbageProducesEmptyOutput(t *testing.T) {
	for _, input := range []string{"", "hello there", "True", "12 monkeys", "???"} {
		got, err := Repair(input)
		require.NoError(t, err, "input %q", input)
		assert.Empty(t, got, "input %q", input)
	}
}

// TestRepair_TrailingContentAfterRootIgnored checks that bytes after a
// completed root value never corrupt the output.
func TestRepair_TrailingContentAfterRootIgnored(t *testing.T) {
	got, err := Repair(`{a: 1} trailing junk {b: 2}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
	assert.True(t, json.Valid([]byte(got)))
}

// TestRepair_StrayStructuralBytes walks mismatched-closer inputs through
// the machine and asserts the closure guarantee holds.
func TestRepair_StrayStructuralBytes(t *testing.T) {
	inputs := []string{
		`{"a": [1}`,
		`{"a": ]}`,
		`[,1]`,
		`[}1]`,
		`{"a": 1]]`,
	}
	for _, input := range inputs {
		got, err := Repair(input)
		require.NoError(t, err, "input %q", input)
		if got != "" {
			assert.True(t, json.Valid([]byte(got)), "Repair(%q) = %q", input, got)
		}
	}
}

// TestRepair_WhitespacePreservation checks that spaces after colons and
// commas survive repair while other layout is canonicalised.
func TestRepair_WhitespacePreservation(t *testing.T) {
	got, err := Repair("{'a':  1,  'b': 2}")
	require.NoError(t, err)
	assert.Equal(t, `{"a":  1,  "b": 2}`, got)

	got, err = Repair("{'a':\n1}")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
}

func TestParseStateString(t *testing.T) {
	assert.Equal(t, "Start", stateStart.String())
	assert.Equal(t, "InString", stateString.String())
	assert.Equal(t, "ExpectingCommaOrEnd", stateExpectCommaOrEnd.String())
	assert.True(t, strings.HasPrefix(parseState(42).String(), "parseState("))
}
