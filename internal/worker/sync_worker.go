package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"habitlog/internal/amqp"
	"habitlog/internal/core"
	"habitlog/internal/store"
)

// Pusher uploads a collection snapshot to the remote mirror.
type Pusher interface {
	Push(ctx context.Context, filename string, data map[string]core.Record) error
}

// SyncWorker keeps the gist mirror in step with the store. It always reads
// the current snapshot from the store before pushing, so duplicate or stale
// sync messages converge on the same result.
type SyncWorker struct {
	store  store.Store
	pusher Pusher
	files  map[core.Collection]string
}

func NewSyncWorker(s store.Store, p Pusher, dailyFile, weeklyFile string) *SyncWorker {
	return &SyncWorker{
		store:  s,
		pusher: p,
		files: map[core.Collection]string{
			core.Daily:  dailyFile,
			core.Weekly: weeklyFile,
		},
	}
}

// HandleSyncMessage processes one collection sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.CollectionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"collection", string(msg.Collection),
		"queued_at", msg.Timestamp)
	return w.SyncCollection(ctx, msg.Collection)
}

// SyncCollection pushes the named collection's current snapshot.
func (w *SyncWorker) SyncCollection(ctx context.Context, c core.Collection) error {
	filename, ok := w.files[c]
	if !ok {
		return fmt.Errorf("no gist file configured for collection %q", c)
	}

	data, err := w.store.Load(ctx, c)
	if err != nil {
		return fmt.Errorf("load %s collection: %w", c, err)
	}
	if err := w.pusher.Push(ctx, filename, data); err != nil {
		return fmt.Errorf("push %s collection: %w", c, err)
	}

	slog.InfoContext(ctx, "Collection mirrored",
		"collection", string(c),
		"gist_file", filename,
		"records", len(data))
	return nil
}

// SyncAll mirrors both collections concurrently. Used at startup and on the
// periodic resync tick to cover messages lost while the worker was down.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for c := range w.files {
		c := c
		g.Go(func() error { return w.SyncCollection(ctx, c) })
	}
	return g.Wait()
}
