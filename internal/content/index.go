package content

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/phrazzld/maika/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSearchLimit is the number of verses Search returns when limit <= 0.
const DefaultSearchLimit = 5

// minWordLength is the shortest word that is indexed or searched for.
const minWordLength = 3

var (
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	referencePattern = regexp.MustCompile(`([\p{L}]+)\s+(\d+):(\d+)`)
)

// Normalize lowercases s and strips combining marks, so "Génesis" and
// "genesis" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

type verseKey struct {
	book    string
	chapter int
	verse   int
}

// Index answers reference lookups and topic searches over a verse bank.
// It is immutable once built.
type Index struct {
	verses []domain.Verse
	byRef  map[verseKey]int
	words  []string
	byWord map[string][]int
}

// NewIndex builds an index over verses. Book names are matched without regard
// to case or accents; words shorter than three letters are not indexed.
func NewIndex(verses []domain.Verse) *Index {
	ix := &Index{
		verses: append([]domain.Verse(nil), verses...),
		byRef:  make(map[verseKey]int, len(verses)),
		byWord: make(map[string][]int),
	}

	for i, v := range ix.verses {
		key := verseKey{book: Normalize(v.Book), chapter: v.Chapter, verse: v.Verse}
		if _, exists := ix.byRef[key]; !exists {
			ix.byRef[key] = i
		}

		for _, word := range wordPattern.FindAllString(Normalize(v.Text), -1) {
			if len([]rune(word)) < minWordLength {
				continue
			}
			if _, seen := ix.byWord[word]; !seen {
				ix.words = append(ix.words, word)
			}
			ix.byWord[word] = append(ix.byWord[word], i)
		}
	}
	return ix
}

// Len returns the number of indexed verses.
func (ix *Index) Len() int {
	return len(ix.verses)
}

// Lookup finds a verse by book, chapter and verse number.
func (ix *Index) Lookup(book string, chapter, verse int) (domain.Verse, bool) {
	i, ok := ix.byRef[verseKey{book: Normalize(strings.TrimSpace(book)), chapter: chapter, verse: verse}]
	if !ok {
		return domain.Verse{}, false
	}
	return ix.verses[i], true
}

// ParseReference extracts a "Book C:V" reference from free text.
func ParseReference(text string) (book string, chapter, verse int, ok bool) {
	m := referencePattern.FindStringSubmatch(text)
	if m == nil {
		return "", 0, 0, false
	}
	chapter, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, 0, false
	}
	verse, err = strconv.Atoi(m[3])
	if err != nil {
		return "", 0, 0, false
	}
	return m[1], chapter, verse, true
}

// LookupReference parses a reference out of text and looks it up.
func (ix *Index) LookupReference(text string) (domain.Verse, bool) {
	book, chapter, verse, ok := ParseReference(text)
	if !ok {
		return domain.Verse{}, false
	}
	return ix.Lookup(book, chapter, verse)
}

// Search returns verses containing any indexed word that has a keyword of
// text as a substring. Results keep first-match order, are deduplicated and
// are capped at limit (DefaultSearchLimit when limit <= 0).
func (ix *Index) Search(text string, limit int) []domain.Verse {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var results []domain.Verse
	seen := make(map[int]bool)
	for _, keyword := range wordPattern.FindAllString(Normalize(text), -1) {
		if len([]rune(keyword)) < minWordLength {
			continue
		}
		for _, word := range ix.words {
			if !strings.Contains(word, keyword) {
				continue
			}
			for _, i := range ix.byWord[word] {
				if seen[i] {
					continue
				}
				seen[i] = true
				results = append(results, ix.verses[i])
				if len(results) == limit {
					return results
				}
			}
		}
	}
	return results
}

// Sample returns up to n verses in bank order.
func (ix *Index) Sample(n int) []domain.Verse {
	if n > len(ix.verses) {
		n = len(ix.verses)
	}
	if n <= 0 {
		return nil
	}
	return append([]domain.Verse(nil), ix.verses[:n]...)
}
