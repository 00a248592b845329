package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/infrastructure/config"
)

func TestStaticDirectory_Search(t *testing.T) {
	d := NewStaticDirectory([]config.DirectoryUserEntry{
		{UserPrincipalName: "Alice@Example.com", DisplayName: "Alice Doe"},
		{UserPrincipalName: "bob@example.com", DisplayName: "Bob Ray"},
		{UserPrincipalName: "carol@other.org", DisplayName: "Carol"},
	})
	ctx := context.Background()

	all, err := d.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// Sorted by principal, lower-cased on ingest
	assert.Equal(t, "alice@example.com", all[0].UserPrincipalName)

	byName, err := d.Search(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Alice Doe", byName[0].DisplayName)

	byDisplay, err := d.Search(ctx, "RAY")
	require.NoError(t, err)
	require.Len(t, byDisplay, 1)
	assert.Equal(t, "bob@example.com", byDisplay[0].UserPrincipalName)

	byDomain, err := d.Search(ctx, "example.com")
	require.NoError(t, err)
	assert.Len(t, byDomain, 2)

	none, err := d.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStaticDirectory_AddMerges(t *testing.T) {
	d := NewStaticDirectory(nil)
	d.Add(app.DirectoryUser{UserPrincipalName: "dave@example.com", DisplayName: "Dave"})

	// Re-adding without a display name keeps the known one.
	d.Add(app.DirectoryUser{UserPrincipalName: "DAVE@example.com"})

	got, err := d.Search(context.Background(), "dave")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dave", got[0].DisplayName)

	// Blank principals are ignored.
	d.Add(app.DirectoryUser{UserPrincipalName: "   "})
	all, err := d.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
