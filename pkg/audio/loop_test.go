package audio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopWrapsAround(t *testing.T) {
	l := NewLoop([]byte{1, 2, 3})

	buf := make([]byte, 7)
	n, err := l.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []byte{1, 2, 3, 1, 2, 3, 1}, buf)

	// The next read continues from where the wrap left off.
	n, err = l.Read(buf[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{2, 3}, buf[:2])
}

func TestLoopSeekRewinds(t *testing.T) {
	l := NewLoop([]byte{1, 2, 3, 4})

	buf := make([]byte, 3)
	_, err := l.Read(buf)
	require.NoError(t, err)

	pos, err := l.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Zero(t, pos)

	_, err = l.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}

func TestLoopSeekModulo(t *testing.T) {
	l := NewLoop([]byte{1, 2, 3, 4})

	pos, err := l.Seek(6, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	buf := make([]byte, 1)
	_, err = l.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(3), buf[0])
}

func TestLoopSeekErrors(t *testing.T) {
	l := NewLoop([]byte{1, 2, 3})

	_, err := l.Seek(0, 42)
	assert.Error(t, err)

	_, err = l.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestLoopEmptyReturnsEOF(t *testing.T) {
	l := NewLoop(nil)

	_, err := l.Read(make([]byte, 4))
	assert.ErrorIs(t, err, io.EOF)
}
