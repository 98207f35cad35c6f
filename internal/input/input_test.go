package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	content := []byte("hello world\nline two\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	r := NewFileReader(0)
	result, err := r.Read(path)
	require.NoError(t, err)
	defer result.Closer()

	assert.Equal(t, content, result.Data)
}

func TestFileReader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	r := NewFileReader(0)
	result, err := r.Read(path)
	require.NoError(t, err)
	defer result.Closer()

	assert.Empty(t, result.Data)
}

func TestFileReader_NonexistentFile(t *testing.T) {
	r := NewFileReader(0)
	_, err := r.Read("/nonexistent/path/file.txt")
	assert.Error(t, err)
}

func TestFileReader_Directory(t *testing.T) {
	r := NewFileReader(0)
	_, err := r.Read(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestFileReader_Reread(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subject.txt")
	r := NewFileReader(0)

	for _, content := range []string{"first version", "second, longer version of the text", "3"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		got, err := ReadText(r, path)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	}
}

func TestFileReader_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 33)), 0644))

	_, err := NewFileReader(32).Read(path)
	assert.ErrorIs(t, err, ErrTooLarge)

	result, err := NewFileReader(33).Read(path)
	require.NoError(t, err)
	assert.Len(t, result.Data, 33)
}

func TestFileReader_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfcafé"), 0644))

	got, err := ReadText(NewFileReader(0), path)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestFileReader_ReusesBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subject.txt")
	r := NewFileReader(0)

	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0644))
	_, err := r.Read(path)
	require.NoError(t, err)
	grown := cap(r.buf)

	require.NoError(t, os.WriteFile(path, []byte("short"), 0644))
	result, err := r.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(result.Data))
	assert.Equal(t, grown, cap(r.buf), "a smaller re-read must not reallocate")
}

func TestReadText_FoldsCRLF(t *testing.T) {
	r := NewStreamReader(strings.NewReader("hell\r\nmy name\r\nis weal lamp"))
	got, err := ReadText(r, "")
	require.NoError(t, err)
	assert.Equal(t, "hell\nmy name\nis weal lamp", got)
}

func TestStdinReader(t *testing.T) {
	r := NewStreamReader(strings.NewReader("from a pipe\n"))
	result, err := r.Read("ignored")
	require.NoError(t, err)
	assert.Equal(t, "from a pipe\n", string(result.Data))
	assert.NoError(t, result.Closer())
}

func BenchmarkFileReader(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "bench.txt")
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 1000))
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.Fatal(err)
	}

	r := NewFileReader(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := r.Read(path)
		if err != nil {
			b.Fatal(err)
		}
		result.Closer()
	}
}
