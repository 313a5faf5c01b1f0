// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

func arxivLink(original string) types.ResolvedLink {
	return types.ResolvedLink{
		OriginalURL:  original,
		CanonicalURL: "https://arxiv.org/abs/2301.00001",
		CanonicalID:  "arxiv:2301.00001",
	}
}

func TestCollapse_FirstSuccessfulFetchWins(t *testing.T) {
	first := &types.PaperMetadata{Title: "First"}
	second := &types.PaperMetadata{Title: "Second"}

	res := Collapse([]Outcome{
		{Link: arxivLink("https://arxiv.org/abs/2301.00001"), Metadata: first},
		{Link: arxivLink("https://arxiv.org/pdf/2301.00001v2"), Metadata: second},
	}, nil)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "arxiv:2301.00001", res.Entries[0].IdentityKey)
	assert.Equal(t, "First", res.Entries[0].Metadata.Title)
	assert.Equal(t, 1, res.Duplicates)
}

func TestCollapse_LaterSuccessUpgradesFailedEntry(t *testing.T) {
	meta := &types.PaperMetadata{Title: "Recovered"}

	res := Collapse([]Outcome{
		{Link: arxivLink("https://scholar.google.com/..."), Err: errors.New("503")},
		{Link: arxivLink("https://arxiv.org/abs/2301.00001"), Metadata: meta},
	}, nil)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Recovered", res.Entries[0].Metadata.Title)
	assert.NoError(t, res.Entries[0].Err)
	assert.Equal(t, 1, res.Duplicates)
}

func TestCollapse_AllFailedYieldsOneEntry(t *testing.T) {
	res := Collapse([]Outcome{
		{Link: arxivLink("a"), Err: errors.New("timeout")},
		{Link: arxivLink("b"), Err: errors.New("503")},
		{Link: arxivLink("c"), Err: errors.New("reset")},
	}, nil)

	require.Len(t, res.Entries, 1)
	assert.Nil(t, res.Entries[0].Metadata)
	assert.EqualError(t, res.Entries[0].Err, "timeout", "first error is kept")
	assert.Equal(t, 2, res.Duplicates)
}

func TestCollapse_PreservesFirstAppearanceOrder(t *testing.T) {
	a := types.ResolvedLink{CanonicalURL: "https://doi.org/10.1/a", CanonicalID: "doi:10.1/a"}
	b := types.ResolvedLink{CanonicalURL: "https://doi.org/10.1/b", CanonicalID: "doi:10.1/b"}
	c := types.ResolvedLink{CanonicalURL: "https://example.org/paper"}

	res := Collapse([]Outcome{
		{Link: b, Metadata: &types.PaperMetadata{Title: "B"}},
		{Link: c, Metadata: &types.PaperMetadata{Title: "C"}},
		{Link: b, Metadata: &types.PaperMetadata{Title: "B again"}},
		{Link: a, Metadata: &types.PaperMetadata{Title: "A"}},
	}, nil)

	require.Len(t, res.Entries, 3)
	assert.Equal(t, "doi:10.1/b", res.Entries[0].IdentityKey)
	assert.Equal(t, "https://example.org/paper", res.Entries[1].IdentityKey)
	assert.Equal(t, "doi:10.1/a", res.Entries[2].IdentityKey)
}

func TestCollapse_KnownIdentitiesSkipped(t *testing.T) {
	known := map[string]bool{"arxiv:2301.00001": true}

	res := Collapse([]Outcome{
		{Link: arxivLink("a"), Metadata: &types.PaperMetadata{Title: "Seen"}},
		{Link: arxivLink("b"), Metadata: &types.PaperMetadata{Title: "Seen too"}},
		{Link: types.ResolvedLink{CanonicalURL: "https://example.org/new"}, Metadata: &types.PaperMetadata{Title: "New"}},
	}, known)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "New", res.Entries[0].Metadata.Title)
	assert.Equal(t, 1, res.KnownSkipped, "counted once per identity")
	assert.Equal(t, 0, res.Duplicates)
}

func TestCollapse_Empty(t *testing.T) {
	res := Collapse(nil, nil)
	assert.Empty(t, res.Entries)
	assert.Zero(t, res.Duplicates)
}
