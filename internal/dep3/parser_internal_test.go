package dep3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepTransitions(testInstance *testing.T) {
	testCases := []struct {
		name              string
		initialState      parserState
		seedFields        map[string]string
		line              string
		expectedState     parserState
		expectedFields    map[string]string
		expectedFreeForm  string
		expectFreeFormSet bool
	}{
		{
			name:           "header_from_none",
			initialState:   parserState{kind: stateNone},
			line:           "Bug: 42\n",
			expectedState:  parserState{kind: stateHeader, currentHeader: "Bug"},
			expectedFields: map[string]string{"Bug": "42"},
		},
		{
			name:           "header_from_free_form",
			initialState:   parserState{kind: stateFreeForm},
			line:           "Origin:upstream\n",
			expectedState:  parserState{kind: stateHeader, currentHeader: "Origin"},
			expectedFields: map[string]string{"Origin": "upstream"},
		},
		{
			name:           "header_token_keeps_embedded_colons",
			initialState:   parserState{kind: stateNone},
			line:           "a:b:c rest\n",
			expectedState:  parserState{kind: stateHeader, currentHeader: "a:b"},
			expectedFields: map[string]string{"a:b": "c rest"},
		},
		{
			name:           "fold_in_header",
			initialState:   parserState{kind: stateHeader, currentHeader: "Bug"},
			seedFields:     map[string]string{"Bug": "42"},
			line:           "\t more detail \n",
			expectedState:  parserState{kind: stateHeader, currentHeader: "Bug"},
			expectedFields: map[string]string{"Bug": "42\nmore detail "},
		},
		{
			name:           "fold_through_alias",
			initialState:   parserState{kind: stateHeader, currentHeader: "Description"},
			seedFields:     map[string]string{"Subject": "summary"},
			line:           " body\n",
			expectedState:  parserState{kind: stateHeader, currentHeader: "Description"},
			expectedFields: map[string]string{"Subject": "summary\nbody"},
		},
		{
			name:              "indented_line_outside_header_is_free_form",
			initialState:      parserState{kind: stateNone},
			line:              "  indented\n",
			expectedState:     parserState{kind: stateFreeForm},
			expectedFreeForm:  "  indented",
			expectFreeFormSet: true,
		},
		{
			name:          "blank_line_ends_free_form",
			initialState:  parserState{kind: stateFreeForm},
			line:          "\n",
			expectedState: parserState{kind: stateNone},
		},
		{
			name:              "blank_line_in_header_starts_free_form",
			initialState:      parserState{kind: stateHeader, currentHeader: "Bug"},
			seedFields:        map[string]string{"Bug": "42"},
			line:              "\n",
			expectedState:     parserState{kind: stateFreeForm},
			expectedFields:    map[string]string{"Bug": "42"},
			expectedFreeForm:  "\n",
			expectFreeFormSet: true,
		},
		{
			name:              "whitespace_only_line_in_header_is_free_form",
			initialState:      parserState{kind: stateHeader, currentHeader: "Bug"},
			line:              "   \n",
			expectedState:     parserState{kind: stateFreeForm},
			expectedFreeForm:  "   ",
			expectFreeFormSet: true,
		},
		{
			name:              "prose_with_carriage_return",
			initialState:      parserState{kind: stateNone},
			line:              "windows prose\r\n",
			expectedState:     parserState{kind: stateFreeForm},
			expectedFreeForm:  "windows prose",
			expectFreeFormSet: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			accumulator := &scanAccumulator{record: NewRecord()}
			for fieldName, fieldValue := range testCase.seedFields {
				accumulator.record.Set(fieldName, fieldValue)
			}

			nextState := step(testCase.initialState, testCase.line, accumulator)
			require.Equal(testInstance, testCase.expectedState, nextState)
			require.Equal(testInstance, testCase.expectFreeFormSet, accumulator.hasFreeForm)
			require.Equal(testInstance, testCase.expectedFreeForm, accumulator.freeForm)
			for fieldName, expectedValue := range testCase.expectedFields {
				require.Equal(testInstance, expectedValue, accumulator.record.Value(fieldName))
			}
		})
	}
}

func TestScanAccumulatorJoinsFreeFormLines(testInstance *testing.T) {
	accumulator := &scanAccumulator{record: NewRecord()}
	accumulator.appendFreeForm("first")
	accumulator.appendFreeForm("")
	accumulator.appendFreeForm("third")

	require.True(testInstance, accumulator.hasFreeForm)
	require.Equal(testInstance, "first\n\nthird", accumulator.freeForm)
}
