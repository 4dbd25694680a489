package unit

import (
	"strings"

	"github.com/trezcool/kokulite/core/identity"
)

type Category string

// Categories
const (
	CategoryUniformed Category = "UNIFORMED"
	CategoryClub      Category = "CLUB"
	CategorySport     Category = "SPORT"
)

var Categories = []Category{CategoryUniformed, CategoryClub, CategorySport}

func (c Category) Valid() bool {
	switch c {
	case CategoryUniformed, CategoryClub, CategorySport:
		return true
	}
	return false
}

type Unit struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	SchoolID string   `json:"school_id"`
}

// Scope is the identity scope of the units of a school.
func Scope(schoolID string) identity.Scope {
	return identity.Scope{SchoolID: schoolID, Kind: identity.KindUnit}
}

// NewIndex builds an identity index of the given units, skipping units of other schools.
func NewIndex(schoolID string, units []Unit) *identity.Index {
	idx := identity.NewIndex()
	scope := Scope(schoolID)
	for _, u := range units {
		if u.SchoolID == schoolID {
			idx.Register(scope, u.Name, u.ID)
		}
	}
	return idx
}

// keyword heuristics, english and malay, checked in order
var (
	categoryKeywords = []struct {
		category Category
		words    []string
	}{
		{CategorySport, []string{"sukan", "permainan", "bola", "olahraga", "sport", "game"}},
		{CategoryUniformed, []string{"uniform", "pengakap", "krs", "scout", "cadet", "brigade"}},
		{CategoryClub, []string{"kelab", "persatuan", "akademik", "club", "society", "academic"}},
	}
	nameKeywords = []struct {
		category Category
		words    []string
	}{
		{CategorySport, []string{"bola", "sepak", "badminton", "football", "netball"}},
		{CategoryUniformed, []string{"pengakap", "tunas", "bsmm", "scout", "cadet", "red crescent", "brigade"}},
	}
)

// ParseCategory guesses a Category from the free text of a category cell, then from the unit name.
// Ambiguous input defaults to CategoryClub.
func ParseCategory(categoryText, unitName string) Category {
	if c := Category(strings.ToUpper(strings.TrimSpace(categoryText))); c.Valid() {
		return c
	}
	text := strings.ToLower(categoryText)
	for _, kw := range categoryKeywords {
		if containsAny(text, kw.words) {
			return kw.category
		}
	}
	name := strings.ToLower(unitName)
	for _, kw := range nameKeywords {
		if containsAny(name, kw.words) {
			return kw.category
		}
	}
	return CategoryClub
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
