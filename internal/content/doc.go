// Package content loads the read-only content collections (verses, bingo
// values, trivia questions, daily and weekly missions) from a directory of
// JSON or YAML files and builds the verse index used for reference lookups
// and topic search.
//
// A missing file is an empty collection, not an error; callers fall back to
// built-in defaults. A malformed file fails the load and leaves the previous
// collections in place.
package content
