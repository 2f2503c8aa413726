// Package queryparser implements the Query Parser (spec component C):
// tokenizes free-text search input, resolves synonyms, detects style
// codes, and greedily consumes phrases against the lookup dictionary
// cache in a fixed dimension order, leaving whatever is left over as
// free text for the relevance scorer.
package queryparser

import (
	"regexp"
	"strings"

	"github.com/brandeduk/catalog-search/internal/catalog/lookup"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/synonym"
)

// styleCodePattern matches a 2-10 character alphanumeric token that
// contains at least one letter and one digit, the heuristic spec
// §4.C uses to recognize a bare style/SKU code (e.g. "TJ30", "AP2000").
var styleCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

// dimensionOrder is the fixed probing order the parser tries when
// consuming phrases against the lookup dictionary (spec §4.C).
var dimensionOrder = []lookup.Dimension{
	lookup.Brand, lookup.ProductType, lookup.Sport, lookup.Fit,
	lookup.Sleeve, lookup.Neckline, lookup.Fabric, lookup.Sector,
	lookup.Colour, lookup.Feature,
}

// Parser turns raw query text into a ParsedQuery, consulting the
// lookup and synonym caches.
type Parser struct {
	lookup  *lookup.Cache
	synonym *synonym.Resolver
}

// New builds a Parser bound to the given caches.
func New(lookupCache *lookup.Cache, synonymResolver *synonym.Resolver) *Parser {
	return &Parser{lookup: lookupCache, synonym: synonymResolver}
}

// Parse tokenizes q, resolves synonyms token-by-token, detects a style
// code if any token matches the pattern (recording the original-case
// token but not consuming it for other classifications), then makes a
// single descending-length (3, 2, 1 token) pass over the tokens
// probing each dimension in dimensionOrder. Anything left unconsumed
// becomes FreeText.
func (p *Parser) Parse(q string) model.ParsedQuery {
	var parsed model.ParsedQuery

	raw := tokenize(q)
	if len(raw) == 0 {
		return parsed
	}

	original := tokenizeOriginal(q)
	for i, tok := range raw {
		if hasLetterAndDigit(tok) && styleCodePattern.MatchString(tok) {
			code := original[i]
			parsed.StyleCode = &code
			break
		}
	}

	tokens := raw
	if p.synonym != nil {
		tokens = p.synonym.ResolveTokens(raw)
	}

	consumed := make([]bool, len(tokens))

	for length := 3; length >= 1; length-- {
		for i := 0; i+length <= len(tokens); i++ {
			if anyConsumed(consumed, i, length) {
				continue
			}
			phrase := strings.Join(tokens[i:i+length], " ")
			if p.consumePhrase(&parsed, phrase) {
				markConsumed(consumed, i, length)
			}
		}
	}

	for i, tok := range tokens {
		if !consumed[i] {
			parsed.FreeText = append(parsed.FreeText, tok)
		}
	}

	return parsed
}

// consumePhrase tries phrase against every dimension in fixed order,
// assigning the first match into parsed and reporting whether it
// consumed the phrase.
func (p *Parser) consumePhrase(parsed *model.ParsedQuery, phrase string) bool {
	if p.lookup == nil {
		return false
	}
	for _, dim := range dimensionOrder {
		entry, ok := p.lookup.Lookup(dim, phrase)
		if !ok {
			continue
		}
		switch dim {
		case lookup.Brand:
			if parsed.Brand != nil {
				continue
			}
			slug := entry.Slug
			parsed.Brand = &slug
		case lookup.ProductType:
			if parsed.ProductType != nil {
				continue
			}
			slug := entry.Slug
			parsed.ProductType = &slug
		case lookup.Sport:
			parsed.Sports = append(parsed.Sports, entry.Slug)
		case lookup.Fit:
			parsed.Fits = append(parsed.Fits, entry.Slug)
		case lookup.Sleeve:
			parsed.Sleeves = append(parsed.Sleeves, entry.Slug)
		case lookup.Neckline:
			parsed.Necklines = append(parsed.Necklines, entry.Slug)
		case lookup.Fabric:
			parsed.Fabrics = append(parsed.Fabrics, entry.Slug)
		case lookup.Sector:
			parsed.Sectors = append(parsed.Sectors, entry.Slug)
		case lookup.Colour:
			parsed.Colours = append(parsed.Colours, entry.Slug)
		case lookup.Feature:
			parsed.Features = append(parsed.Features, entry.Slug)
		default:
			continue
		}
		return true
	}
	return false
}

func tokenize(q string) []string {
	return splitAndTrim(strings.ToLower(q))
}

// tokenizeOriginal splits q the same way as tokenize but preserves the
// caller's original casing, for style-code detection (spec §4.C step
// 3's "record the original-case ... as styleCode").
func tokenizeOriginal(q string) []string {
	return splitAndTrim(q)
}

func splitAndTrim(q string) []string {
	fields := strings.Fields(strings.TrimSpace(q))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?'\"()[]{}")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func hasLetterAndDigit(s string) bool {
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}

func anyConsumed(consumed []bool, start, length int) bool {
	for i := start; i < start+length; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

func markConsumed(consumed []bool, start, length int) {
	for i := start; i < start+length; i++ {
		consumed[i] = true
	}
}
