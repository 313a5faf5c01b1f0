// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe collapses resolved links that refer to the same
// underlying paper into one record per canonical identity.
package dedupe

import (
	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// Outcome pairs a resolved link with the result of its fetch. Metadata
// is nil when the fetch failed, in which case Err carries the cause.
type Outcome struct {
	Link     types.ResolvedLink
	Metadata *types.PaperMetadata
	Err      error
}

// Result is what falls out of deduplication: one entry per identity in
// first-appearance order, plus counters for the links that collapsed.
type Result struct {
	// Entries holds one entry per distinct identity, ordered by first
	// appearance of that identity in the input.
	Entries []Entry
	// Duplicates counts input links dropped because an earlier link
	// already claimed their identity with a successful fetch.
	Duplicates int
	// KnownSkipped counts identities dropped because they appeared in
	// the known set (papers handled by a previous run).
	KnownSkipped int
}

// Entry is the surviving representative of one identity. Metadata is
// nil when every link sharing the identity failed to fetch; Err then
// holds the first fetch error seen for the identity.
type Entry struct {
	IdentityKey string
	Link        types.ResolvedLink
	Metadata    *types.PaperMetadata
	Err         error
}

// Collapse groups outcomes by identity key. The first successfully
// fetched metadata wins; later duplicates are counted, not reported.
// An identity whose every link failed yields a single failed entry.
// Identities present in known are dropped entirely and counted.
func Collapse(outcomes []Outcome, known map[string]bool) Result {
	var res Result
	index := make(map[string]int)
	skipped := make(map[string]bool)

	for _, o := range outcomes {
		key := o.Link.IdentityKey()
		if known[key] {
			if !skipped[key] {
				skipped[key] = true
				res.KnownSkipped++
			}
			continue
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(res.Entries)
			res.Entries = append(res.Entries, Entry{
				IdentityKey: key,
				Link:        o.Link,
				Metadata:    o.Metadata,
				Err:         o.Err,
			})
			continue
		}

		// Identity already claimed. A successful fetch upgrades a
		// previously failed entry; anything else is a plain duplicate.
		if res.Entries[i].Metadata == nil && o.Metadata != nil {
			res.Entries[i].Link = o.Link
			res.Entries[i].Metadata = o.Metadata
			res.Entries[i].Err = nil
		}
		res.Duplicates++
	}
	return res
}
