package wiki

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
)

type fakeWiki struct {
	countingSource
	members []string
}

func (f *fakeWiki) CategoryMembers(context.Context, string) ([]string, error) {
	return f.members, nil
}

func (f *fakeWiki) FileURL(_ context.Context, name string) (string, error) {
	return "https://static.example/" + name, nil
}

func TestSnapshot_RecordsAndReplays(t *testing.T) {
	dir := t.TempDir()
	upstream := &fakeWiki{
		countingSource: countingSource{
			pages: map[string]string{"Event/Summoning Campaign": "{{Saber|x}}"},
			calls: map[string]int{},
		},
		members: []string{"Event A", "Event B"},
	}

	recorder, err := NewSnapshot(dir, upstream)
	require.NoError(t, err)

	page, err := recorder.Page(context.Background(), "Event/Summoning Campaign")
	require.NoError(t, err)
	assert.Equal(t, "{{Saber|x}}", page.Text)
	_, err = recorder.CategoryMembers(context.Background(), "Category:Current Events")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Event%2FSummoning%20Campaign.wiki"))

	offline, err := NewSnapshot(dir, nil)
	require.NoError(t, err)

	replayed, err := offline.Page(context.Background(), "Event/Summoning Campaign")
	require.NoError(t, err)
	assert.Equal(t, "{{Saber|x}}", replayed.Text)
	assert.Equal(t, []string{"Saber"}, replayed.Templates)

	members, err := offline.CategoryMembers(context.Background(), "Current Events")
	require.NoError(t, err)
	assert.Equal(t, []string{"Event A", "Event B"}, members)

	_, err = offline.Page(context.Background(), "Unknown")
	assert.ErrorIs(t, err, common.ErrPageNotFound)
	_, err = offline.FileURL(context.Background(), "x.png")
	assert.ErrorIs(t, err, common.ErrPageNotFound)
}

func TestSnapshot_ReadsHandWrittenPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Plain.wiki"), []byte("text"), 0600))

	snap, err := NewSnapshot(dir, nil)
	require.NoError(t, err)
	page, err := snap.Page(context.Background(), "Plain")
	require.NoError(t, err)
	assert.Equal(t, &model.Page{Title: "Plain", Text: "text", Templates: []string{}}, page)
}
