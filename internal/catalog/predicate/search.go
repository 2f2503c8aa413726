package predicate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brandeduk/catalog-search/internal/config"
)

// hyphenVariants returns a token and its hyphen/space-interchangeable
// forms, matching spec §4.D's "tshirt" -> {"t-shirt","t shirt","tshirt"}
// and "vneck" -> {"v-neck","vneck"} style expansions. This is a small,
// closed heuristic (the token itself, plus one hyphen or one space
// inserted at each position between its bytes), not a general fuzzy
// matcher.
func hyphenVariants(token string) []string {
	variants := map[string]bool{token: true}
	for i := 1; i < len(token); i++ {
		variants[token[:i]+"-"+token[i:]] = true
		variants[token[:i]+" "+token[i:]] = true
	}
	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	return out
}

// nameRegexPattern builds a case-insensitive Postgres regex alternation
// matching token with every hyphen/space variant against style_name
// (spec §4.D.d).
func nameRegexPattern(tokens []string) string {
	var alts []string
	for _, t := range tokens {
		for _, v := range hyphenVariants(t) {
			alts = append(alts, regexp.QuoteMeta(v))
		}
	}
	return "(" + strings.Join(alts, "|") + ")"
}

// SearchResult is what the Search Predicate Builder (spec component D)
// emits: the WHERE fragment, its positional args already registered
// against the shared Builder, and the SELECT-list expression computing
// the additive relevance score.
type SearchResult struct {
	Condition       string
	RelevanceSelect string
	HasRelevance    bool
}

// BuildSearch emits the query predicate for a trimmed, non-empty
// search query against b, following the short-query vs normal-query
// regimes of spec §4.D. colourSlugs/fabricSlugs/necklineSlugs/
// sleeveSlugs/styleSlugs are the canonical array-overlap candidate
// sets already resolved by the query parser against the lookup cache.
func BuildSearch(b *Builder, w config.RelevanceWeights, query string, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs []string) SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}
	}

	if len(query) <= 2 {
		return buildShortQuery(b, w, query)
	}
	return buildNormalQuery(b, w, query, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs)
}

func buildShortQuery(b *Builder, w config.RelevanceWeights, query string) SearchResult {
	folded := strings.ToLower(query)

	exactParam := b.AddArg(folded)
	prefixParam := b.AddArg(folded + "%")

	condition := fmt.Sprintf("(LOWER(style_code) = $%d OR LOWER(style_code) LIKE $%d)", exactParam, prefixParam)

	relevance := fmt.Sprintf(
		"(CASE WHEN LOWER(style_code) = $%d THEN %d WHEN LOWER(style_code) LIKE $%d THEN %d ELSE 0 END)",
		exactParam, w.ShortCodeExact, prefixParam, w.ShortCodePrefix,
	)

	return SearchResult{Condition: condition, RelevanceSelect: relevance, HasRelevance: true}
}

func buildNormalQuery(b *Builder, w config.RelevanceWeights, query string, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs []string) SearchResult {
	folded := strings.ToLower(query)
	tokens := strings.Fields(folded)

	var conditions []string
	var scoreTerms []string

	ftsParam := b.AddArg(query)
	conditions = append(conditions, fmt.Sprintf("search_vector @@ websearch_to_tsquery('english', $%d)", ftsParam))
	scoreTerms = append(scoreTerms, fmt.Sprintf(
		"(CASE WHEN search_vector @@ websearch_to_tsquery('english', $%d) THEN %d ELSE 0 END)", ftsParam, w.FullText,
	))

	exactParam := b.AddArg(folded)
	conditions = append(conditions, fmt.Sprintf("LOWER(style_code) = $%d", exactParam))
	scoreTerms = append(scoreTerms, fmt.Sprintf("(CASE WHEN LOWER(style_code) = $%d THEN %d ELSE 0 END)", exactParam, w.ExactCode))

	prefixParam := b.AddArg(folded + "%")
	conditions = append(conditions, fmt.Sprintf("LOWER(style_code) LIKE $%d", prefixParam))
	scoreTerms = append(scoreTerms, fmt.Sprintf("(CASE WHEN LOWER(style_code) LIKE $%d THEN %d ELSE 0 END)", prefixParam, w.PrefixCode))

	if len(tokens) > 0 {
		pattern := nameRegexPattern(tokens)
		regexParam := b.AddArg(pattern)
		conditions = append(conditions, fmt.Sprintf("style_name ~* $%d", regexParam))
		scoreTerms = append(scoreTerms, fmt.Sprintf("(CASE WHEN style_name ~* $%d THEN %d ELSE 0 END)", regexParam, w.NameRegex))
	}

	addOverlap := func(column string, slugs []string, weight int) {
		if len(slugs) == 0 {
			return
		}
		param := b.AddArg(expandWithVariants(slugs))
		conditions = append(conditions, fmt.Sprintf("%s && $%d", column, param))
		scoreTerms = append(scoreTerms, fmt.Sprintf("(CASE WHEN %s && $%d THEN %d ELSE 0 END)", column, param, weight))
	}

	addOverlap("colour_slugs", colourSlugs, w.ColourOverlap)
	addOverlap("fabric_slugs", fabricSlugs, w.FabricOverlap)
	addOverlap("neckline_slugs", necklineSlugs, w.NecklineOverlap)
	addOverlap("sleeve_slugs", sleeveSlugs, w.SleeveOverlap)
	addOverlap("style_keyword_slugs", styleSlugs, w.StyleKeywordOverlap)

	condition := "(" + strings.Join(conditions, " OR ") + ")"
	relevance := "(" + strings.Join(scoreTerms, " + ") + ")"

	return SearchResult{Condition: condition, RelevanceSelect: relevance, HasRelevance: true}
}

// expandWithVariants applies hyphenVariants to every slug in a
// candidate set before it's used in an array-overlap comparison
// (spec §4.D.e: "vneck" -> {"v-neck","vneck"}).
func expandWithVariants(slugs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range slugs {
		for _, v := range hyphenVariants(s) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
