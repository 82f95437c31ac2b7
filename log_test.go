package sshlines

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogContext(t *testing.T) {
	t.Run("discards until configured", func(t *testing.T) {
		lc := NewLogContext()
		lc.LogHostLine("web1", "", []byte("hello"))
		require.NoError(t, lc.Sync())
	})

	t.Run("host line format", func(t *testing.T) {
		var buf bytes.Buffer
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Writer: &buf}, LevelInfo))
		lc.LogHostLine("web1", " [stdout]", []byte("total 0"))
		out := buf.String()
		require.Contains(t, out, "INFO")
		require.Contains(t, out, "sshlines.host")
		require.Contains(t, out, "[web1] [stdout]\ttotal 0")
	})

	t.Run("configure is idempotent", func(t *testing.T) {
		var first, second bytes.Buffer
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Writer: &first}, LevelInfo))
		require.NoError(t, lc.Configure(LogSink{Writer: &second}, LevelInfo))
		lc.LogHostLine("web1", "", []byte("once"))
		require.Zero(t, second.Len())
		require.Contains(t, first.String(), "logger already has a sink attached")
		require.Equal(t, 1, strings.Count(first.String(), "[web1]\tonce"))
	})

	t.Run("reconfigure changes level", func(t *testing.T) {
		var buf bytes.Buffer
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Writer: &buf}, LevelInfo))
		lc.debugf("hidden")
		require.NotContains(t, buf.String(), "hidden")
		require.NoError(t, lc.Configure(LogSink{Writer: &buf}, LevelDebug))
		require.Equal(t, "debug", lc.Level())
		lc.debugf("shown %d", 1)
		require.Contains(t, buf.String(), "shown 1")
	})

	t.Run("error level hides host lines", func(t *testing.T) {
		var buf bytes.Buffer
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Writer: &buf}, LevelError))
		lc.LogHostLine("web1", "", []byte("quiet"))
		require.Zero(t, buf.Len())
	})

	t.Run("unknown level is info", func(t *testing.T) {
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Writer: new(bytes.Buffer)}, "loud"))
		require.Equal(t, "info", lc.Level())
	})

	t.Run("file sink", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "logs", "hosts.log")
		lc := NewLogContext()
		require.NoError(t, lc.Configure(LogSink{Filename: filename, MaxSize: 1}, LevelInfo))
		lc.LogHostLine("web1", "", []byte("to file"))
		require.FileExists(t, filename)
	})

	t.Run("no destination", func(t *testing.T) {
		lc := NewLogContext()
		require.Error(t, lc.Configure(LogSink{}, LevelInfo))
	})
}
