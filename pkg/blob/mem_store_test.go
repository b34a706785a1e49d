package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_PutListGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore("")

	url, err := s.Put(ctx, "save-states/agent-1/2026-07-30_12-00_D100_openai-gpt-4o.state", []byte("snapshot-bytes"))
	require.NoError(t, err)
	assert.Contains(t, url, "save-states/agent-1")

	objs, err := s.List(ctx, "save-states/agent-1/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, int64(len("snapshot-bytes")), objs[0].Size)

	data, err := s.Get(ctx, objs[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-bytes", string(data))
}

func TestMemStore_ListFiltersByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore("")

	_, err := s.Put(ctx, "save-states/agent-1/a.state", []byte("a"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "save-states/agent-2/b.state", []byte("b"))
	require.NoError(t, err)

	objs, err := s.List(ctx, "save-states/agent-1/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "save-states/agent-1/a.state", objs[0].Path)
}

func TestMemStore_SaveLoadIdenticalContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore("")
	payload := []byte("checkpoint-contents")

	_, err := s.Put(ctx, "save-states/agent-1/first.state", payload)
	require.NoError(t, err)
	_, err = s.Put(ctx, "save-states/agent-1/second.state", payload)
	require.NoError(t, err)

	first, err := s.Get(ctx, "save-states/agent-1/first.state")
	require.NoError(t, err)
	second, err := s.Get(ctx, "save-states/agent-1/second.state")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
