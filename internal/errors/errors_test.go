package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid document",
				Err:     nil,
			},
			expected: "parsing: invalid document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	assert.Equal(t, wrappedErr, appErr.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: NewInputError("test message", nil),
			target:   NewInputError("different message", errors.New("some error")),
			expected: true,
		},
		{
			name:     "different type",
			appError: NewInputError("test message", nil),
			target:   NewParsingError("test message", nil),
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: NewInputError("test message", nil),
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Is(tt.target))
		})
	}
}

func TestUserFriendlyError(t *testing.T) {
	batch := NewDiagnosticError([]Diagnostic{
		NewDiagnostic("missing closing '}'", Cursor{Offset: 6, Line: 1, Column: 7}, nil),
	}, nil)

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid document", nil),
			expected: "Parse error: invalid document",
		},
		{
			name:     "parsing error with diagnostics",
			err:      NewParsingError("invalid document", batch),
			expected: "Parse error: invalid document (missing closing '}' at line 1, column 7)",
		},
		{
			name:     "encode error",
			err:      NewEncodeError("failed to encode", nil),
			expected: "Encode error: failed to encode",
		},
		{
			name:     "conversion error",
			err:      NewConversionError("bad JSON", nil),
			expected: "Conversion error: bad JSON",
		},
		{
			name:     "conversion error with cause",
			err:      NewConversionError("failed to convert JSON", ErrUnsupportedValue),
			expected: "Conversion error: failed to convert JSON: value cannot be represented in the target format",
		},
		{
			name:     "config error",
			err:      NewConfigError("bad indent", nil),
			expected: "Configuration error: bad indent",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "bare diagnostic batch",
			err:      batch,
			expected: "Error: The input is not a valid terse document: missing closing '}' at line 1, column 7",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide a document.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFriendlyError(tt.err))
		})
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := NewDiagnostic("invalid integer value", Cursor{Offset: 4, Line: 2, Column: 3}, nil)
	assert.Equal(t, "invalid integer value at line 2, column 3", d.String())
}

func TestDiagnostic_CopiesCursors(t *testing.T) {
	live := Cursor{Offset: 1, Line: 1, Column: 2}
	end := Cursor{Offset: 3, Line: 1, Column: 4}
	d := NewDiagnostic("x", live, &end)

	live.Offset = 99
	end.Offset = 99

	assert.Equal(t, 1, d.Cursor.Offset)
	require.NotNil(t, d.EndCursor)
	assert.Equal(t, 3, d.EndCursor.Offset)
}

func TestDiagnostic_JSONRecord(t *testing.T) {
	end := Cursor{Offset: 7, Line: 1, Column: 8}
	d := NewDiagnostic("boom", Cursor{Offset: 2, Line: 1, Column: 3}, &end)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"message": "boom",
		"cursor": {"offset": 2, "line": 1, "column": 3},
		"endCursor": {"offset": 7, "line": 1, "column": 8}
	}`, string(data))

	noEnd, err := json.Marshal(NewDiagnostic("boom", StartCursor(), nil))
	require.NoError(t, err)
	assert.NotContains(t, string(noEnd), "endCursor")
}

func TestDiagnosticError(t *testing.T) {
	assert.Nil(t, NewDiagnosticError(nil, nil))

	batch := NewDiagnosticError([]Diagnostic{
		NewDiagnostic("first", Cursor{Line: 1, Column: 1}, nil),
		NewDiagnostic("second", Cursor{Line: 2, Column: 5}, nil),
	}, "partial")

	assert.True(t, errors.Is(batch, ErrInvalidDocument))
	assert.Equal(t, "first at line 1, column 1\nsecond at line 2, column 5", batch.Error())
	assert.Equal(t, "first at line 1, column 1 (and 1 more)", batch.Summary())
	assert.Equal(t, "first", batch.First().Message)
	assert.Equal(t, "partial", batch.Partial)
}

func TestLexicalError(t *testing.T) {
	err := NewLexicalError(Cursor{Offset: 5, Line: 1, Column: 6}, "unexpected character %q", '@')
	assert.Equal(t, "unexpected character '@' at line 1, column 6", err.Error())
}
