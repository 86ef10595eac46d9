package logsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcastellin/clustermemb/internal/membership"
)

func TestLoggerWritesEventsAndDebugToSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.log")
	debugPath := filepath.Join(dir, "debug.log")

	l, err := New(eventsPath, debugPath)
	require.NoError(t, err)

	self := membership.Address{ID: 1, Port: 0}
	added := membership.Address{ID: 2, Port: 0}
	l.LogNodeAdd(self, added)
	l.LogNodeRemove(self, added)
	l.LogDebug(self, "pruned %d entries", 3)
	require.NoError(t, l.Sync())

	eventsContent, err := os.ReadFile(eventsPath)
	require.NoError(t, err)
	assert.Contains(t, string(eventsContent), "log_node_add")
	assert.Contains(t, string(eventsContent), "log_node_remove")
	assert.NotContains(t, string(eventsContent), "pruned")

	debugContent, err := os.ReadFile(debugPath)
	require.NoError(t, err)
	assert.Contains(t, string(debugContent), "pruned 3 entries")
}
