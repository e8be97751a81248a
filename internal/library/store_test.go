// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/animcover/internal/domain/media"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleItem() (media.Item, []media.MediaStream) {
	item := media.Item{
		ID:                      "item-1",
		Name:                    "Movie",
		Path:                    "/media/movie.mkv",
		Container:               "mkv",
		Protocol:                media.ProtocolFile,
		VideoType:               media.VideoTypeFile,
		IsCompleteMedia:         true,
		RunTime:                 90*time.Minute + 250*time.Millisecond,
		DefaultVideoStreamIndex: media.IntPtr(0),
	}
	streams := []media.MediaStream{
		{ItemID: "item-1", Index: 0, Type: media.StreamTypeVideo, Codec: "hevc", Width: 3840, Height: 2160, ColorTransfer: "smpte2084"},
		{ItemID: "item-1", Index: 1, Type: media.StreamTypeAudio, Codec: "eac3"},
		{ItemID: "item-1", Index: 2, Type: media.StreamTypeVideo, Codec: "mpeg2video", IsInterlaced: true},
	}
	return item, streams
}

func TestStoreUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	item, streams := sampleItem()

	require.NoError(t, store.UpsertItem(ctx, item, streams))

	got, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, item, *got)

	all, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1"})
	require.NoError(t, err)
	assert.Equal(t, streams, all)
}

func TestStoreGetMediaStreamsFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	item, streams := sampleItem()
	require.NoError(t, store.UpsertItem(ctx, item, streams))

	byIndex, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1", Index: media.IntPtr(2)})
	require.NoError(t, err)
	require.Len(t, byIndex, 1)
	assert.True(t, byIndex[0].IsInterlaced)

	byType, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1", Type: media.StreamTypeVideo})
	require.NoError(t, err)
	require.Len(t, byType, 2)
	assert.Equal(t, 0, byType[0].Index)
	assert.Equal(t, 2, byType[1].Index)

	none, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1", Index: media.IntPtr(9)})
	require.NoError(t, err)
	assert.Empty(t, none)

	mismatch, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1", Index: media.IntPtr(1), Type: media.StreamTypeVideo})
	require.NoError(t, err)
	assert.Empty(t, mismatch)
}

func TestStoreUpsertReplacesStreams(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	item, streams := sampleItem()
	require.NoError(t, store.UpsertItem(ctx, item, streams))

	item.Name = "Movie (Remux)"
	item.DefaultVideoStreamIndex = nil
	require.NoError(t, store.UpsertItem(ctx, item, streams[1:2]))

	got, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Movie (Remux)", got.Name)
	assert.Nil(t, got.DefaultVideoStreamIndex)

	all, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreNotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteItem(ctx, "missing"), ErrNotFound)

	item, streams := sampleItem()
	require.NoError(t, store.UpsertItem(ctx, item, streams))
	require.NoError(t, store.DeleteItem(ctx, "item-1"))

	left, err := store.GetMediaStreams(ctx, media.StreamQuery{ItemID: "item-1"})
	require.NoError(t, err)
	assert.Empty(t, left, "streams cascade with the item")
}

func TestStoreListItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.ListItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"b", "a"} {
		require.NoError(t, store.UpsertItem(ctx, media.Item{
			ID: "id-" + name, Name: name, Path: "/m/" + name, Protocol: media.ProtocolFile, VideoType: media.VideoTypeFile,
		}, nil))
	}
	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Name)
}

func TestStorePing(t *testing.T) {
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)

	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())
	assert.Error(t, store.Ping(context.Background()))
}
