// Package stories provides the client-side cache of stories.
//
// # Overview
//
// Stories fetched from the API are written through to this table so they can
// be listed and opened offline. Guest stories are mirrored here as well
// (origin = 'guest') to keep a single read path; the sync engine filters them
// out when merging with the guest store to avoid duplicates.
//
// # Data Model
//
// Rows are keyed by the story id. Timestamps are stored as unix nanoseconds
// (INTEGER) so ordering and round-trips are exact; coordinates are nullable
// REAL columns.
//
// Typical Usage
//
//	repo := stories.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, &story)
//	list, _ := repo.List(ctx)
//	one, _ := repo.Get(ctx, id)
package stories
