// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Repository identifies a GitHub repository as owner/name.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository splits an "owner/name" identifier.
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Contributor is the author of an issue.
type Contributor struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url"`
}

// Issue is a closed issue as returned by the issues endpoint.
// Body is empty when the remote value is null.
type Issue struct {
	Title         string      `json:"title"`
	Body          string      `json:"body"`
	HTMLURL       string      `json:"html_url"`
	Author        Contributor `json:"user"`
	IsPullRequest bool        `json:"-"`
}

// ContributorCount is one ranked entry of a Tally.
type ContributorCount struct {
	Contributor
	Count int
}

// Tally counts issues per contributor for a single label and remembers
// each contributor's profile URL. Entries keep first-seen order.
type Tally struct {
	index   map[string]int
	entries []ContributorCount
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{index: make(map[string]int)}
}

// Add records one issue for c. A repeated login overwrites the stored URL.
func (t *Tally) Add(c Contributor) {
	if i, ok := t.index[c.Login]; ok {
		t.entries[i].Count++
		t.entries[i].HTMLURL = c.HTMLURL
		return
	}
	t.index[c.Login] = len(t.entries)
	t.entries = append(t.entries, ContributorCount{Contributor: c, Count: 1})
}

// Count returns the number of issues recorded for login.
func (t *Tally) Count(login string) int {
	if i, ok := t.index[login]; ok {
		return t.entries[i].Count
	}
	return 0
}

// URL returns the profile URL recorded for login.
func (t *Tally) URL(login string) string {
	if i, ok := t.index[login]; ok {
		return t.entries[i].HTMLURL
	}
	return ""
}

// Len returns the number of distinct contributors.
func (t *Tally) Len() int {
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *Tally) Total() int {
	n := 0
	for _, e := range t.entries {
		n += e.Count
	}
	return n
}

// Entries returns a copy of the entries in first-seen order.
func (t *Tally) Entries() []ContributorCount {
	out := make([]ContributorCount, len(t.entries))
	copy(out, t.entries)
	return out
}

// SectionHeading turns a label into the heading used for its report section:
// the first letter upper-cased and the rest lower-cased, with "Bug" shown as
// "Bug Fix".
func SectionHeading(label string) string {
	runes := []rune(strings.ToLower(label))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	heading := string(runes)
	// No one wants to be listed as a Bug Contributor.
	if heading == "Bug" {
		heading = "Bug Fix"
	}
	return heading
}
