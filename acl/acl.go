// Package acl holds the list of subjects a service may publish to or consume.
package acl

import (
	"slices"
	"sync"

	"github.com/abhissng/synapse/blame"
)

// AccessList is an append-only allow-list. Until RestrictTo is called every
// subject is allowed.
type AccessList struct {
	mu       sync.RWMutex
	subjects map[string]struct{}
	order    []string
}

// New returns an unrestricted list.
func New() *AccessList {
	return &AccessList{}
}

// RestrictTo switches the list to restricted mode and adds subjects. Calling
// it again adds more.
func (a *AccessList) RestrictTo(subjects ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subjects == nil {
		a.subjects = make(map[string]struct{}, len(subjects))
	}
	a.add(subjects)
}

// Extend adds subjects to an already restricted list.
func (a *AccessList) Extend(subjects ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subjects == nil {
		return blame.AccessListNotInitialisedError()
	}
	a.add(subjects)
	return nil
}

func (a *AccessList) add(subjects []string) {
	for _, s := range subjects {
		if _, ok := a.subjects[s]; ok {
			continue
		}
		a.subjects[s] = struct{}{}
		a.order = append(a.order, s)
	}
}

// IsAllowed reports whether subject may be used. A nil list allows everything.
func (a *AccessList) IsAllowed(subject string) bool {
	if a == nil {
		return true
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.subjects == nil {
		return true
	}
	_, ok := a.subjects[subject]
	return ok
}

// Check is IsAllowed as an error.
func (a *AccessList) Check(subject string) error {
	if a.IsAllowed(subject) {
		return nil
	}
	return blame.ForbiddenSubjectError(subject)
}

// Restricted reports whether RestrictTo has been called.
func (a *AccessList) Restricted() bool {
	if a == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.subjects != nil
}

// Subjects returns the allowed subjects in insertion order.
func (a *AccessList) Subjects() []string {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.order)
}
