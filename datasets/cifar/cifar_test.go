package cifar

import "bytes"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func record(label, fill byte) []byte {
	return append([]byte{label}, bytes.Repeat([]byte{fill}, RecordSize-1)...)
}

func TestReadBatchDropsLabels(t *testing.T) {
	data := append(record(9, 1), record(3, 2)...)
	pixels, err := ReadBatch(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, pixels, 2*(RecordSize-1))
	assert.Equal(t, byte(1), pixels[0])
	assert.Equal(t, byte(2), pixels[RecordSize-1])
}

func TestReadBatchPartialRecord(t *testing.T) {
	_, err := ReadBatch(bytes.NewReader(record(0, 0)[:100]))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= batches; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, BatchFile(i)), record(0, byte(i)), 0o644))
	}
	d, err := Load(dir, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, d.N())
	assert.Equal(t, 3072, d.Dim)
	// batches keep file order
	assert.InDelta(t, float32(1)/255*2-1, d.Row(0)[0], 1e-6)
	assert.InDelta(t, float32(5)/255*2-1, d.Row(4)[0], 1e-6)
}

func TestLoadMissingBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BatchFile(1)), record(0, 0), 0o644))
	_, err := Load(dir, 1)
	require.Error(t, err)
}
