package history

import "slices"

// MaxEntries is the number of counter arrays kept in the history.
const MaxEntries = 10

// History is the rolling list of past counter arrays, newest first.
type History struct {
	Entries [][]int
}

// Previous returns the most recent entry.
func (h History) Previous() ([]int, bool) {
	if len(h.Entries) == 0 {
		return nil, false
	}
	return h.Entries[0], true
}

// Append returns a new History with counters inserted as the newest entry,
// dropping the oldest entries beyond MaxEntries.
func (h History) Append(counters []int) History {
	entries := make([][]int, 0, min(len(h.Entries)+1, MaxEntries))
	entries = append(entries, slices.Clone(counters))
	for _, entry := range h.Entries {
		if len(entries) == MaxEntries {
			break
		}
		entries = append(entries, entry)
	}
	return History{Entries: entries}
}

func (h History) truncated() History {
	if len(h.Entries) <= MaxEntries {
		return h
	}
	return History{Entries: h.Entries[:MaxEntries]}
}
