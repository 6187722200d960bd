package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeLimitedWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tableflow.log")
	writer, err := newSizeLimitedWriter(path, 1)
	require.NoError(t, err)
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		_, err := writer.Write(chunk)
		require.NoError(t, err, "write chunk %d", i)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024), info.Size())

	backup, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024), backup.Size())
}

func TestSizeLimitedWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tableflow.log")
	writer, err := newSizeLimitedWriter(path, 1)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = writer.Write([]byte("line\n"))
	require.NoError(t, err)
	_ = writer.Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(b))
}
