package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Base names of the content files. Each may be stored as .json, .yaml or .yml.
const (
	BibleContentFile = "bible_content"
	MissionsFile     = "missions_weekly"
	TriviaBankFile   = "trivia_bank"
)

var extensions = []string{".json", ".yaml", ".yml"}

// bibleContentFile is the on-disk shape of the verse bank.
type bibleContentFile struct {
	Verses        []verseRecord    `json:"verses"         yaml:"verses"`
	Values        []string         `json:"values"         yaml:"values"`
	QuizQuestions []questionRecord `json:"quiz_questions" yaml:"quiz_questions"`
}

type verseRecord struct {
	Book    string `json:"book"    yaml:"book"`
	Chapter int    `json:"chapter" yaml:"chapter"`
	Verse   int    `json:"verse"   yaml:"verse"`
	Text    string `json:"text"    yaml:"text"`
}

type missionsFile struct {
	Daily  []missionRecord `json:"daily"  yaml:"daily"`
	Weekly []missionRecord `json:"weekly" yaml:"weekly"`
}

type missionRecord struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type triviaBankFile struct {
	Questions []questionRecord `json:"questions" yaml:"questions"`
}

// questionRecord accepts both "correct" and "correct_answer" for the index of
// the right option; older banks use the latter.
type questionRecord struct {
	Question      string   `json:"question"       yaml:"question"`
	Options       []string `json:"options"        yaml:"options"`
	Correct       *int     `json:"correct"        yaml:"correct"`
	CorrectAnswer *int     `json:"correct_answer" yaml:"correct_answer"`
	Explanation   string   `json:"explanation"    yaml:"explanation"`
}

// findFile returns the first existing file for base in dir, or "" if none.
func findFile(dir, base string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, base+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("os.Stat(%s)> %w", path, err)
		}
	}
	return "", nil
}

// readFile decodes path as JSON or YAML according to its extension.
func readFile[T any](path string) (T, error) {
	var result T

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("os.ReadFile(%s)> %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &result); err != nil {
			return result, fmt.Errorf("json.Unmarshal(%s)> %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &result); err != nil {
			return result, fmt.Errorf("yaml.Unmarshal(%s)> %w", path, err)
		}
	}
	return result, nil
}

// loadOptional reads base from dir; a missing file yields the zero value and
// found=false.
func loadOptional[T any](dir, base string) (result T, found bool, err error) {
	path, err := findFile(dir, base)
	if err != nil || path == "" {
		return result, false, err
	}
	result, err = readFile[T](path)
	if err != nil {
		return result, false, err
	}
	return result, true, nil
}
