package events

import (
	"errors"
	"strings"
)

const (
	tokenWildcard = "*"
	tailWildcard  = ">"
)

var (
	errEmptySubject    = errors.New("subject is empty")
	errEmptyToken      = errors.New("subject has an empty token")
	errWildcardPublish = errors.New("wildcards are not allowed when publishing")
	errTailNotLast     = errors.New("'>' must be the last token")
)

// ValidateSubject checks subject syntax. Wildcards are accepted only when
// allowWildcards is set, i.e. for subscriptions.
func ValidateSubject(subject string, allowWildcards bool) error {
	if subject == "" {
		return errEmptySubject
	}
	tokens := strings.Split(subject, ".")
	for i, tok := range tokens {
		switch {
		case tok == "":
			return errEmptyToken
		case tok == tokenWildcard || tok == tailWildcard:
			if !allowWildcards {
				return errWildcardPublish
			}
			if tok == tailWildcard && i != len(tokens)-1 {
				return errTailNotLast
			}
		}
	}
	return nil
}

// MatchSubject reports whether subject matches pattern, where "*" matches
// exactly one token and a trailing ">" matches one or more.
func MatchSubject(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == tailWildcard {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != tokenWildcard && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
