// Package mention implements @mention detection and roster resolution for
// user-authored text.
package mention

import (
	"fmt"
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`@(\w+)`)

// Match is a single @token occurrence within a text. Start and End are byte
// offsets of the full "@token" span.
type Match struct {
	Token string
	Start int
	End   int
}

// RosterEntry is a team member eligible to be mentioned.
type RosterEntry struct {
	ID    string
	Name  string
	Email string
}

// Extract scans text for @token occurrences, left to right and
// non-overlapping. Matches come back in non-decreasing Start order.
func Extract(text string) []Match {
	locations := pattern.FindAllStringSubmatchIndex(text, -1)
	matches := make([]Match, 0, len(locations))
	for _, loc := range locations {
		matches = append(matches, Match{
			Token: text[loc[2]:loc[3]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}

// ResolveIDs maps every extracted token to a roster entry and returns the
// matched ids deduplicated, in insertion order. A token resolves by
// case-insensitive equality against a member's email first, then display
// name; tokens matching nobody are dropped.
func ResolveIDs(text string, roster []RosterEntry) []string {
	matches := Extract(text)
	ids := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		entry, ok := resolve(match.Token, roster)
		if !ok {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		ids = append(ids, entry.ID)
	}

	return ids
}

// Format re-renders text with every resolved token wrapped in an inline
// highlight span carrying the resolved user id. Unresolved tokens stay
// literal. Substitution runs in reverse position order so earlier offsets
// stay valid while replacements change the string length.
func Format(text string, roster []RosterEntry) string {
	matches := Extract(text)

	for i := len(matches) - 1; i >= 0; i-- {
		match := matches[i]
		entry, ok := resolve(match.Token, roster)
		if !ok {
			continue
		}

		display := entry.Name
		if display == "" {
			display = entry.Email
		}

		replacement := fmt.Sprintf(`<span class="mention" data-user-id="%s">@%s</span>`, entry.ID, display)
		text = text[:match.Start] + replacement + text[match.End:]
	}

	return text
}

func resolve(token string, roster []RosterEntry) (RosterEntry, bool) {
	lowered := strings.ToLower(token)

	for _, entry := range roster {
		if strings.ToLower(entry.Email) == lowered {
			return entry, true
		}
	}
	for _, entry := range roster {
		if entry.Name != "" && strings.ToLower(entry.Name) == lowered {
			return entry, true
		}
	}

	return RosterEntry{}, false
}
