package search

import (
	"strings"
	"unicode"
)

// analyze splits text into lower-cased alphanumeric tokens, drops short
// tokens and stop words, and appends bigrams of the remaining tokens.
func analyze(text string, opts Options) []string {
	tokens := tokenize(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if len([]rune(tok)) < opts.MinTokenLen || stopWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	if !opts.Bigrams || len(kept) < 2 {
		return kept
	}

	terms := make([]string, 0, 2*len(kept)-1)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// tokenize splits text on anything that is not a letter or a digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var stopWords = func() map[string]bool {
	words := strings.Fields(`
a about above after again against all am an and any are as at be because
been before being below between both but by can could did do does doing
down during each few for from further had has have having he her here hers
herself him himself his how i if in into is it its itself just me more most
my myself no nor not now of off on once only or other our ours ourselves out
over own same she should so some such than that the their theirs them
themselves then there these they this those through to too under until up
very was we were what when where which while who whom why will with would
you your yours yourself yourselves also etc within without us may must
shall upon via per across among whether yet`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()
