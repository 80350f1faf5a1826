package media

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaType(t *testing.T) {
	kind, ok := MediaType("image/PNG")
	assert.True(t, ok)
	assert.Equal(t, "image", kind)

	kind, ok = MediaType("video/webm; codecs=vp9")
	assert.True(t, ok)
	assert.Equal(t, "video", kind)

	_, ok = MediaType("application/pdf")
	assert.False(t, ok)
}

func TestSave(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)

	up, err := st.Save(strings.NewReader("gif89a"), "cat.GIF", "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "image", up.MediaType)
	assert.True(t, strings.HasSuffix(up.Filename, ".gif"))
	assert.Equal(t, URLPrefix+up.Filename, up.URL)

	path, err := st.Path(up.Filename)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gif89a", string(data))

	up, err = st.Save(strings.NewReader("x"), "noext", "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(up.Filename, ".mp4"))
}

func TestSaveRejects(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir)
	require.NoError(t, err)

	_, err = st.Save(strings.NewReader("%PDF"), "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrTypeNotAllowed)

	_, err = st.Save(bytes.NewReader(make([]byte, MaxUploadSize+1)), "big.png", "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave nothing behind")
}

func TestPathRejectsTraversal(t *testing.T) {
	st, err := NewStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../etc/passwd", "a/b.png", ".hidden"} {
		_, err := st.Path(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
