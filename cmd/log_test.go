package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggingWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &LoggingWriter{Name: "program std-out", Log: Logger(&buf, slog.LevelInfo)}

	n, err := lw.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Contains(t, buf.String(), `text="hello\n"`)

	buf.Reset()
	_, err = lw.Write([]byte{0x00, 0xFF, 0x42})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "data=0x00ff42")
}

func TestHexU32(t *testing.T) {
	require.Equal(t, "0000beef", HexU32(0xBEEF).String())
	b, err := HexU32(0x12345678).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "12345678", string(b))
}
