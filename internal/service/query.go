package service

import (
	"sort"
	"strings"

	"github.com/dialbook/dialbook/internal/model"
)

// Bucket keys for display grouping.
const (
	// FavoritesBucket holds every favorited contact, regardless of name.
	FavoritesBucket = "★"
	// CatchAllBucket holds contacts whose name does not start with an
	// ASCII letter.
	CatchAllBucket = "#"
)

// SearchContacts applies a free-text filter to a contact list. A blank
// query returns the input unchanged. Otherwise a contact matches if the
// query is a case-insensitive substring of its name, its email, or any one
// of its phone numbers. Matching is substring-based, not tokenized.
func SearchContacts(contacts []*model.Contact, query string) []*model.Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return contacts
	}

	filtered := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if contactMatches(c, q) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func contactMatches(c *model.Contact, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Email), q) {
		return true
	}
	for _, p := range c.Phones {
		if strings.Contains(strings.ToLower(p), q) {
			return true
		}
	}
	return false
}

// ContactGroup is one display bucket of the grouped contact list.
type ContactGroup struct {
	Key      string           `json:"key"`
	Contacts []*model.Contact `json:"contacts"`
}

// GroupContacts partitions an already favorite-first, name-sorted contact
// list into display buckets: a favorites bucket first (all favorited
// contacts, regardless of name), then one bucket per uppercased first
// letter, with non-ASCII-letter initials collected under the catch-all
// bucket. Buckets after the favorites bucket are ordered by key; the
// catch-all sorts ahead of "A". Within each bucket the input order is
// preserved, so the result is deterministic.
func GroupContacts(contacts []*model.Contact) []ContactGroup {
	var favorites []*model.Contact
	buckets := make(map[string][]*model.Contact)

	for _, c := range contacts {
		if c.Favorite {
			favorites = append(favorites, c)
			continue
		}
		key := bucketKey(c.Name)
		buckets[key] = append(buckets[key], c)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]ContactGroup, 0, len(keys)+1)
	if len(favorites) > 0 {
		groups = append(groups, ContactGroup{Key: FavoritesBucket, Contacts: favorites})
	}
	for _, key := range keys {
		groups = append(groups, ContactGroup{Key: key, Contacts: buckets[key]})
	}

	return groups
}

// bucketKey returns the display bucket for a contact name: the uppercased
// first character when it is an ASCII letter, the catch-all otherwise.
func bucketKey(name string) string {
	if name == "" {
		return CatchAllBucket
	}
	c := name[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c >= 'A' && c <= 'Z' {
		return string(c)
	}
	return CatchAllBucket
}
