package services

import (
	"context"
	"log/slog"

	"vidshare/pkg/database"
	"vidshare/pkg/media"
)

// compensator undoes the completed half of a split write. What it cannot undo
// goes to the journal.
type compensator struct {
	media   MediaClient
	journal Journal
}

// destroyAsset removes a stored object by its URL. Empty URLs are skipped.
func (c compensator) destroyAsset(ctx context.Context, op, url string, kind media.ResourceType) {
	publicID := media.PublicIDFromURL(url)
	if publicID == "" {
		return
	}
	if err := c.media.Destroy(ctx, publicID, kind); err != nil {
		c.record(op, string(kind), publicID, err)
	}
}

func (c compensator) record(op, resource, ref string, cause error) {
	slog.Warn("compensation failed",
		"operation", op,
		"resource", resource,
		"reference", ref,
		"error", cause,
	)
	if c.journal == nil {
		return
	}
	err := c.journal.Record(database.Compensation{
		Operation: op,
		Resource:  resource,
		Reference: ref,
		Reason:    cause.Error(),
	})
	if err != nil {
		slog.Error("failed to write compensation journal", "operation", op, "reference", ref, "error", err)
	}
}
