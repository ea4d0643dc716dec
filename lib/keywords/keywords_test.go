package keywords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	out, err := Parse(strings.NewReader("Omaha Beach\n\n# comment\nBridge Too Far\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Omaha Beach", "Bridge Too Far"}, out)
}

func TestParseTrimsAndBom(t *testing.T) {
	out, err := Parse(strings.NewReader("\ufeffFirst\r\n   \r\n  second  \r\n\t# indented comment\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"First", "second"}, out)

	out, err = Parse(strings.NewReader("\ufeff  Omaha\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Omaha"}, out)

	out, err = Parse(strings.NewReader("\ufeff# comment after bom\nOmaha\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"Omaha"}, out)
}

func TestCollect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	require.NoError(t, os.WriteFile(path, []byte("Omaha Beach\n\n# comment\nBridge Too Far\n"), 0644))

	out, err := Collect("  Carentan ", path)
	require.NoError(t, err)
	require.Equal(t, []string{"Carentan", "Omaha Beach", "Bridge Too Far"}, out)

	out, err = Collect("", "")
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = Collect("x", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestClean(t *testing.T) {
	require.Equal(t, "Omaha Beach", Clean(" Omaha Beach（奥马哈海滩） "))
	require.Equal(t, "A B", Clean("A（x）（y） B"))
	require.Equal(t, "(kept)", Clean("(kept)"))
	require.Equal(t, "", Clean("（only a note）"))
}
