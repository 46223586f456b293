package types

import (
	"golang.org/x/text/language"
)

// EmptyCheck defines an interface for checking if a value is empty.
type EmptyCheck interface {
	IsEmpty() bool
}

// LanguageTag wraps language.Tag so it can take part in EmptyCheck.
type LanguageTag language.Tag

// IsEmpty checks if the language tag is empty
func (l LanguageTag) IsEmpty() bool {
	return l == LanguageTag{}
}

// Convert LanguageTag to language.Tag
func ToLanguageTag(l LanguageTag) language.Tag {
	return language.Tag(l)
}

// Convert LanguageTag to string
func (l LanguageTag) String() string {
	return language.Tag(l).String()
}
