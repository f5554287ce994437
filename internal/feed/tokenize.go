// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"regexp"
	"strings"
)

// tokenPattern matches hashtags, mentions, and plain words, in that
// priority order so "#go" is captured as a hashtag rather than a word.
var tokenPattern = regexp.MustCompile(`#\w+|@\w+|\b\w+\b`)

// TokenSet is a normalized set of content tokens.
type TokenSet map[string]struct{}

// Contains reports whether the token is in the set.
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Add inserts every token from other into s.
func (s TokenSet) Add(other TokenSet) {
	for tok := range other {
		s[tok] = struct{}{}
	}
}

// Overlap returns the number of tokens shared with other.
func (s TokenSet) Overlap(other TokenSet) int {
	// Iterate the smaller set.
	if len(other) < len(s) {
		s, other = other, s
	}
	n := 0
	for tok := range s {
		if _, ok := other[tok]; ok {
			n++
		}
	}
	return n
}

// Tokenize extracts the normalized token set from free text.
//
// The text is case-folded, then split into hashtag tokens (#word),
// mention tokens (@word), and plain words. Plain words are kept only
// when longer than 2 characters; hashtags and mentions are always kept.
// No stemming or stopword removal. Pure: empty input yields an empty,
// non-nil set.
func Tokenize(text string) TokenSet {
	tokens := make(TokenSet)
	if text == "" {
		return tokens
	}
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "@") || len(tok) > 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// TokenizeAll returns the union of tokens across all texts.
func TokenizeAll(texts ...string) TokenSet {
	tokens := make(TokenSet)
	for _, text := range texts {
		tokens.Add(Tokenize(text))
	}
	return tokens
}
