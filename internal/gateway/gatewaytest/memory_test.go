package gatewaytest

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/model"
)

func TestMemoryRejectsArchivedAndTrashed(t *testing.T) {
	ctx := context.Background()
	gw := New().Gateway()

	b, err := gw.Bookmarks.Create(ctx, model.BookmarkDraft{Title: "Go", URL: "https://go.dev"})
	assert.NilError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = gw.Bookmarks.Update(ctx, b.ID, model.ArchivePatch(now))
	assert.NilError(t, err)

	_, err = gw.Bookmarks.Update(ctx, b.ID, model.TrashPatch(now))
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	stored, err := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{Archived: true})
	assert.NilError(t, err)
	assert.Equal(t, len(stored), 1)
	assert.Assert(t, stored[0].TrashedAt == nil)
}
