package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/roach88/termql/internal/ast"
)

func (w *walker) conceptRef(ref *ast.ConceptRef) {
	if ref == nil {
		w.add(ErrUnsupportedNode, ast.Pos{}, "missing concept reference")
		return
	}
	id := ref.ID
	if id == "" || strings.IndexFunc(id, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		w.add(ErrConceptIDMalformed, ref.Pos, "concept id %q must be a digit sequence", id)
		return
	}
	if id[0] == '0' {
		w.add(ErrConceptIDMalformed, ref.Pos, "concept id %q must not start with zero", id)
		return
	}
	if len(id) < w.opts.MinIDLength || len(id) > w.opts.MaxIDLength {
		w.add(ErrConceptIDLength, ref.Pos, "concept id %q must have %d to %d digits",
			id, w.opts.MinIDLength, w.opts.MaxIDLength)
		return
	}
	if w.opts.CheckDigits && !VerhoeffValid(id) {
		w.add(ErrConceptIDCheck, ref.Pos, "concept id %q has an invalid check digit", id)
	}
}

func (w *walker) filterGroup(g *ast.FilterGroup) {
	if g.Root == nil {
		w.add(ErrEmptyFilterGroup, g.Pos, "filter group must contain at least one clause")
		return
	}

	var pinnedConcept, descriptionOnly bool
	for _, leaf := range ast.Leaves(g.Root) {
		domain := ast.ClauseDomain(leaf)
		if domain == ast.DomainConcept {
			pinnedConcept = true
		}
		if ast.DescriptionOnly(leaf) || domain == ast.DomainDescription {
			descriptionOnly = true
		}
	}
	if pinnedConcept && descriptionOnly {
		w.add(ErrFilterDomainMixed, g.Pos, "filter group mixes concept and description clauses")
	}

	w.filter(g.Root)
}

func (w *walker) filter(f ast.FilterExpr) {
	if ast.DescriptionOnly(f) && ast.ClauseDomain(f) == ast.DomainConcept {
		w.add(ErrFilterDomainInvalid, f.Position(), "this filter applies only to descriptions")
	}

	switch n := f.(type) {
	case nil:
		w.add(ErrUnsupportedNode, ast.Pos{}, "missing filter clause")
	case *ast.TermFilter:
		w.termFilter(n)
	case *ast.ActiveFilter:
	case *ast.ModuleFilter:
		w.conceptRef(n.Module)
	case *ast.TypeFilter:
		w.conceptRef(n.Type)
	case *ast.LanguageCodeFilter:
		w.languageCode(n)
	case *ast.LanguageRefSetFilter:
		w.conceptRef(n.RefSet)
	case *ast.AcceptableInFilter:
		w.conceptRef(n.RefSet)
	case *ast.PreferredInFilter:
		w.conceptRef(n.RefSet)
	case *ast.CaseSignificanceFilter:
		w.conceptRef(n.CaseSignificance)
	case *ast.FilterBool:
		w.filter(n.Left)
		w.filter(n.Right)
	case *ast.FilterGrouping:
		w.filter(n.Expr)
	default:
		w.add(ErrUnsupportedNode, f.Position(), "unsupported filter %T", f)
	}
}

func (w *walker) termFilter(n *ast.TermFilter) {
	switch n.Mode {
	case ast.Match:
		if utf8.RuneCountInString(strings.TrimSpace(n.Value)) < w.opts.MinTermLength {
			w.add(ErrTermTooShort, n.Pos, "match term %q must have at least %d characters",
				n.Value, w.opts.MinTermLength)
		}
	case ast.Regex:
		if _, err := regexp.Compile(n.Value); err != nil {
			w.add(ErrRegexInvalid, n.Pos, "invalid regex %q: %v", n.Value, err)
		}
	}
}

func (w *walker) languageCode(n *ast.LanguageCodeFilter) {
	code := n.Code
	if len(code) != 2 || !isASCIILetters(code) {
		w.add(ErrLanguageCode, n.Pos, "language code %q must be a two-letter ISO 639-1 code", code)
		return
	}
	if _, err := language.ParseBase(strings.ToLower(code)); err != nil {
		w.add(ErrLanguageCode, n.Pos, "unknown language code %q", code)
	}
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
