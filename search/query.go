package search

import (
	"regexp"
	"strings"
)

var (
	bracketed   = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	symbols     = regexp.MustCompile(`[™®©]`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s'&+.\-]`)
	versionTag  = regexp.MustCompile(`(?i)^v?\d+(\.\d+)+[a-z]?$`)
)

// noiseWords are trailing words launchers and stores append to titles
var noiseWords = map[string]bool{
	"edition":    true,
	"deluxe":     true,
	"premium":    true,
	"complete":   true,
	"definitive": true,
	"goty":       true,
	"remastered": true,
	"version":    true,
	"demo":       true,
	"beta":       true,
	"alpha":      true,
}

// SearchTerms returns the queries to try for a shortcut name, most specific
// first: the name as shown in Steam, then with bracketed tags and symbols
// removed, then without trailing edition and version words.
func SearchTerms(name string) []string {
	var terms []string
	add := func(term string) {
		term = strings.Join(strings.Fields(term), " ")
		if term == "" {
			return
		}
		for _, t := range terms {
			if strings.EqualFold(t, term) {
				return
			}
		}
		terms = append(terms, term)
	}

	add(name)

	friendly := bracketed.ReplaceAllString(name, " ")
	friendly = symbols.ReplaceAllString(friendly, "")
	friendly = punctuation.ReplaceAllString(friendly, " ")
	add(friendly)

	words := strings.Fields(friendly)
	for len(words) > 1 {
		last := strings.ToLower(words[len(words)-1])
		if !noiseWords[last] && !versionTag.MatchString(last) {
			break
		}
		words = words[:len(words)-1]
	}
	add(strings.Join(words, " "))

	return terms
}
