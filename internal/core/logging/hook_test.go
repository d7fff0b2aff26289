package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook(t *testing.T) {
	t.Run("adds ids from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Hook(ContextHook{})

		ctx := WithChecklistID(context.Background(), "cl-1")
		ctx = WithItemID(ctx, "itm-9")
		logger.Info().Ctx(ctx).Msg("toggled")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "cl-1", entry["checklist_id"])
		assert.Equal(t, "itm-9", entry["item_id"])
	})

	t.Run("no context fields, no keys", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Hook(ContextHook{})

		logger.Info().Msg("plain")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		_, ok := entry["checklist_id"]
		assert.False(t, ok)
	})
}
