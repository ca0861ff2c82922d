package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/lexer"
	"github.com/roach88/termql/internal/parser"
	"github.com/roach88/termql/internal/validate"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "inner")
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut, Verbose: true}

	require.NoError(t, f.Success("done"))
	require.NoError(t, f.Error("E108", "term too short", "detail"))
	f.VerboseLog("checked %d", 3)

	assert.Equal(t, "done\nError [E108]: term too short\nDetails: detail\n", out.String())
	assert.Equal(t, "checked 3\n", errOut.String())
}

func TestOutputFormatter_VerboseFallsBackToWriter(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, Verbose: true}
	f.VerboseLog("note")
	assert.Equal(t, "note\n", out.String())

	out.Reset()
	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Empty(t, out.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out}

	require.NoError(t, f.Success(map[string]int{"count": 2}))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	out.Reset()
	require.NoError(t, f.Error(ErrCodeStore, "locked", nil))
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
}

func TestQueryErrors(t *testing.T) {
	errs, ok := queryErrors(&lexer.Error{Pos: lexer.Position{Line: 1, Column: 8}, Message: "unterminated term string"})
	require.True(t, ok)
	assert.Equal(t, []CLIError{{Code: ErrCodeLex, Message: "unterminated term string", Line: 1, Column: 8}}, errs)

	errs, ok = queryErrors(&parser.Error{Pos: lexer.Position{Line: 1, Column: 4}, Found: "AND"})
	require.True(t, ok)
	assert.Equal(t, ErrCodeParse, errs[0].Code)
	assert.Equal(t, 4, errs[0].Column)

	errs, ok = queryErrors(validate.Errors{
		{Code: validate.ErrTermTooShort, Message: "too short", Pos: lexer.Position{Line: 1, Column: 16}},
		{Code: validate.ErrCardinalityRange, Message: "bad range", Pos: lexer.Position{Line: 1, Column: 26}},
	})
	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "E101", errs[1].Code)

	_, ok = queryErrors(errors.New("disk full"))
	assert.False(t, ok)
}

func TestQueryErrors_TextCaret(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out}

	require.NoError(t, f.QueryErrors("<< 123 |abc", []CLIError{{Code: ErrCodeLex, Message: "unterminated term string", Line: 1, Column: 8}}))
	assert.Equal(t, "\u2717 Query rejected\n\n"+
		"  << 123 |abc\n"+
		"         ^\n"+
		"  LEX_ERROR at 1:8: unterminated term string\n", out.String())
}
