package mention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRoster() []RosterEntry {
	return []RosterEntry{
		{ID: "u1", Name: "Alice", Email: "a@x.com"},
		{ID: "u2", Name: "Bob", Email: "b@x.com"},
	}
}

func TestExtractReturnsOrderedNonOverlappingMatches(t *testing.T) {
	matches := Extract("ping @Alice then @bob and @Alice again")

	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		require.GreaterOrEqual(t, matches[i].Start, matches[i-1].End, "matches must not overlap")
	}
	require.Equal(t, "Alice", matches[0].Token)
	require.Equal(t, "bob", matches[1].Token)
	require.Equal(t, "@Alice", "ping @Alice then @bob and @Alice again"[matches[0].Start:matches[0].End])
}

func TestExtractEmptyText(t *testing.T) {
	require.Empty(t, Extract(""))
	require.Empty(t, Extract("no mentions here"))
}

func TestResolveIDsMatchesNameOrEmailCaseInsensitive(t *testing.T) {
	ids := ResolveIDs("Hey @Alice and @bob, check this", testRoster())
	require.Equal(t, []string{"u1", "u2"}, ids)
}

func TestResolveIDsDeduplicatesAndDropsUnknownTokens(t *testing.T) {
	ids := ResolveIDs("@alice @ALICE @nobody @bob", testRoster())
	require.Equal(t, []string{"u1", "u2"}, ids)
}

func TestResolveIDsPrefersExactEmailMatch(t *testing.T) {
	roster := []RosterEntry{
		{ID: "u1", Name: "carol", Email: "a@x.com"},
		{ID: "u2", Name: "Dave", Email: "carol"},
	}

	// "carol" matches u1's name and u2's email; the email match wins.
	ids := ResolveIDs("cc @carol", roster)
	require.Equal(t, []string{"u2"}, ids)
}

func TestResolveIDsAllowsSelfMention(t *testing.T) {
	// Suppressing self-notification is the content service's concern, not
	// the extractor's.
	ids := ResolveIDs("note to self @alice", testRoster())
	require.Equal(t, []string{"u1"}, ids)
}

func TestFormatWrapsResolvedMentions(t *testing.T) {
	out := Format("hello @Alice and @stranger", testRoster())

	require.Contains(t, out, `<span class="mention" data-user-id="u1">@Alice</span>`)
	require.Contains(t, out, "@stranger")
	require.NotContains(t, out, `data-user-id="u2"`)
}

func TestFormatHandlesMultipleSubstitutionsWithoutOffsetDrift(t *testing.T) {
	out := Format("@alice @bob @alice", testRoster())

	require.Equal(t, 2, strings.Count(out, `data-user-id="u1"`))
	require.Equal(t, 1, strings.Count(out, `data-user-id="u2"`))
	require.NotContains(t, out, "@alice")
}

func TestFormatFallsBackToEmailDisplay(t *testing.T) {
	roster := []RosterEntry{{ID: "u3", Email: "eve@x.com"}}

	out := Format("hi @eve", roster)
	require.Equal(t, "hi @eve", out, "token matches neither name nor email")

	out = Format("hi @eve@x.com", roster)
	// \w+ stops at the @ inside the address, so the literal stays.
	require.Equal(t, "hi @eve@x.com", out)
}
