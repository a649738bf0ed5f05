package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Verse is one entry of the verse bank.
type Verse struct {
	Book    string `json:"book"    yaml:"book"`
	Chapter int    `json:"chapter" yaml:"chapter"`
	Verse   int    `json:"verse"   yaml:"verse"`
	Text    string `json:"text"    yaml:"text"`
}

// Reference renders the human form, e.g. "Juan 3:16".
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// ItemID renders the stable SRS key, e.g. "Juan::3::16".
func (v Verse) ItemID() string {
	return fmt.Sprintf("%s::%d::%d", v.Book, v.Chapter, v.Verse)
}

// ParseItemID splits a "Book::Chapter::Verse" key.
func ParseItemID(itemID string) (book string, chapter, verse int, err error) {
	parts := strings.Split(itemID, "::")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, NewInvalidInputError("item_id", itemID, "expected Book::Chapter::Verse")
	}
	chapter, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, NewInvalidInputError("item_id", itemID, "chapter is not a number")
	}
	verse, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, NewInvalidInputError("item_id", itemID, "verse is not a number")
	}
	return parts[0], chapter, verse, nil
}

// Mission is a daily or weekly challenge.
type Mission struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// TriviaQuestion is a multiple-choice question from the trivia bank.
type TriviaQuestion struct {
	Question     string   `json:"question"              yaml:"question"`
	Options      []string `json:"options"               yaml:"options"`
	CorrectIndex int      `json:"correct"               yaml:"correct"`
	Explanation  string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// CorrectOption returns the text of the correct option, or "" when the
// index is out of range.
func (q TriviaQuestion) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}
