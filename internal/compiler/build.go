package compiler

import (
	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/parser"
	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/validate"
)

// Result is a successfully compiled query.
type Result struct {
	Query       *ast.Query
	Predicate   queryir.Predicate
	Fingerprint string
}

// Build lexes, parses, validates and compiles src.
//
// Errors are returned unwrapped so callers can inspect them with
// errors.As: *lexer.Error, *parser.Error or validate.Errors. Lexing and
// parsing stop at the first error; validation reports every violation.
// Nothing reaches Compile unless validation passed.
func Build(src string, opts validate.Options) (*Result, error) {
	q, err := parser.ParseString(src)
	if err != nil {
		return nil, err
	}
	if errs := validate.New(opts).Validate(q); len(errs) > 0 {
		return nil, validate.Errors(errs)
	}
	pred := Compile(q)
	fp, err := queryir.Fingerprint(pred)
	if err != nil {
		return nil, err
	}
	return &Result{Query: q, Predicate: pred, Fingerprint: fp}, nil
}
