package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/config"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// newTestApp builds an App on a temp database, with a running event bus.
func newTestApp(t *testing.T) *checkup.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	app, err := checkup.NewApp(&cfg, database, bus)
	require.NoError(t, err)
	return app
}

// runCommand executes a checkup invocation and returns its stdout.
func runCommand(t *testing.T, app *checkup.App, args ...string) (string, error) {
	t.Helper()

	flags := &Flags{Config: app.Config}

	var out bytes.Buffer
	root := &cli.Command{Name: "checkup", Writer: &out, ErrWriter: &out}

	root = NewNewCmd(flags, app).Register(root)
	root = NewLsCmd(flags, app).Register(root)
	root = NewAddCmd(flags, app).Register(root)
	root = NewItemCmd(flags, app).Register(root)
	root = NewImportCmd(flags, app).Register(root)
	root = NewStatsCmd(flags, app).Register(root)
	root = NewExportCmd(flags, app).Register(root)

	err := root.Run(context.Background(), append([]string{"checkup"}, args...))
	return out.String(), err
}

func seed(t *testing.T, app *checkup.App) checklist.Checklist {
	t.Helper()

	cl, err := app.Local.CreateChecklist(context.Background(),
		checklist.NewFromTemplate("Acme Audit", &checklist.ClientProfile{Name: "Acme", BusinessType: "local"}, time.Now()))
	require.NoError(t, err)
	return cl
}

func TestNewCommand(t *testing.T) {
	app := newTestApp(t)

	out, err := runCommand(t, app, "new", "--title", "Bravo Audit", "--client", "Bravo Inc", "--type", "ecommerce")
	require.NoError(t, err)
	assert.Contains(t, out, "Created checklist")

	summaries, err := app.Local.ListChecklists(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bravo Audit", summaries[0].Title)
	assert.NotZero(t, summaries[0].Items)
}

func TestLsCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)

	t.Run("table", func(t *testing.T) {
		out, err := runCommand(t, app, "ls")
		require.NoError(t, err)
		assert.Contains(t, out, cl.ID)
		assert.Contains(t, out, "Acme Audit")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCommand(t, app, "ls", "--json")
		require.NoError(t, err)

		var summaries []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &summaries))
		require.Len(t, summaries, 1)
		assert.Equal(t, cl.ID, summaries[0]["id"])
	})
}

func TestAddCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)
	before := len(cl.Items)

	out, err := runCommand(t, app, "add", "-C", cl.ID,
		"--category", "Performance", "--priority", "high", "--est", "25",
		"Compress hero video")
	require.NoError(t, err)

	var added checklist.Item
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Compress hero video", added.Title)
	assert.Equal(t, checklist.PriorityHigh, added.Priority)

	got, err := app.Local.FetchChecklist(context.Background(), cl.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, before+1)

	t.Run("rejects unknown priority", func(t *testing.T) {
		_, err := runCommand(t, app, "add", "-C", cl.ID, "--priority", "urgent", "Another item")
		require.Error(t, err)
	})
}

func TestImportCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)
	before := len(cl.Items)

	path := filepath.Join(t.TempDir(), "items.json")
	payload := `[
		{"id": "imp1", "title": "Compress video", "category": "Performance", "priority": "high"},
		{"id": "imp2", "title": "Audit forms", "category": "made-up", "priority": "LOW"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	out, err := runCommand(t, app, "import", "-C", cl.ID, "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 items")

	got, err := app.Local.FetchChecklist(context.Background(), cl.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, before+2)

	last := got.Items[len(got.Items)-1]
	assert.Equal(t, checklist.CategoryGeneral, last.Category)
	assert.Equal(t, checklist.PriorityLow, last.Priority)

	t.Run("rejects unknown priority", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`[{"id": "x", "title": "y", "priority": "urgent"}]`), 0o644))

		_, err := runCommand(t, app, "import", "-C", cl.ID, "-f", bad)
		require.Error(t, err)
	})
}

func TestItemToggleCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)
	itemID := cl.Items[0].ID

	out, err := runCommand(t, app, "item", "toggle", "-C", cl.ID, itemID)
	require.NoError(t, err)

	var it checklist.Item
	require.NoError(t, json.Unmarshal([]byte(out), &it))
	assert.True(t, it.IsCompleted)

	got, err := app.Local.FetchChecklist(context.Background(), cl.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].IsCompleted)
}

func TestStatsCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)

	_, err := runCommand(t, app, "item", "toggle", "-C", cl.ID, cl.Items[0].ID)
	require.NoError(t, err)

	out, err := runCommand(t, app, "stats", "--json", cl.ID)
	require.NoError(t, err)

	var result struct {
		TotalItems     int `json:"total_items"`
		CompletedItems int `json:"completed_items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, len(cl.Items), result.TotalItems)
	assert.Equal(t, 1, result.CompletedItems)
}

func TestExportCommand(t *testing.T) {
	app := newTestApp(t)
	cl := seed(t, app)

	out, err := runCommand(t, app, "export", cl.ID)
	require.NoError(t, err)

	var snapshot struct {
		Checklist  checklist.Checklist `json:"checklist"`
		ExportedAt time.Time           `json:"exported_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, cl.ID, snapshot.Checklist.ID)
	assert.False(t, snapshot.ExportedAt.IsZero())

	t.Run("missing checklist", func(t *testing.T) {
		_, err := runCommand(t, app, "export", "nope")
		require.ErrorIs(t, err, checklist.ErrNotFound)
	})
}
