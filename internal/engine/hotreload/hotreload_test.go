package hotreload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/gpu/gputest"
	"github.com/Faultbox/prism/internal/engine/material"
)

func writeShaders(t *testing.T, dir, body string) (string, string) {
	t.Helper()
	vs := filepath.Join(dir, "lit.vert")
	fs := filepath.Join(dir, "lit.frag")
	require.NoError(t, os.WriteFile(vs, []byte(body), 0o644))
	require.NoError(t, os.WriteFile(fs, []byte(body), 0o644))
	return vs, fs
}

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	vs, fs := writeShaders(t, dir, "v1")

	dev := gputest.New()
	m := material.New(dev, "m")
	p, err := m.AddPass(material.PassConfig{Name: "lit", Tags: []string{"x"}, VertexFile: vs, FragmentFile: fs})
	require.NoError(t, err)
	first := p.Program()

	w, err := New()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Track(p))

	assert.Zero(t, w.Poll())

	require.NoError(t, os.WriteFile(fs, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return w.Poll() > 0 }, 5*time.Second, 20*time.Millisecond)

	assert.NotEqual(t, first, p.Program())
	assert.Equal(t, 1, dev.Live("program"))
}

func TestFailedReloadKeepsProgram(t *testing.T) {
	dir := t.TempDir()
	vs, fs := writeShaders(t, dir, "v1")

	dev := gputest.New()
	m := material.New(dev, "m")
	p, err := m.AddPass(material.PassConfig{Name: "lit", Tags: []string{"x"}, VertexFile: vs, FragmentFile: fs})
	require.NoError(t, err)
	first := p.Program()

	w, err := New()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Track(p))

	dev.CompileErr = errors.New("syntax error")
	require.NoError(t, os.WriteFile(vs, []byte("broken"), 0o644))

	// The initial compile plus at least one failed attempt.
	require.Eventually(t, func() bool {
		w.Poll()
		return len(dev.Filter(gputest.OpCompileProgram)) >= 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, first, p.Program())
	assert.Equal(t, 1, dev.Live("program"))
}

func TestUntrackedFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	m := material.New(gputest.New(), "m")
	p, err := m.AddPass(material.PassConfig{Name: "inline", Tags: []string{"x"}})
	require.NoError(t, err)
	require.NoError(t, w.Track(p))
	assert.Empty(t, w.dirs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	assert.Zero(t, w.Poll())
}

func TestCloseTwice(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NotPanics(t, func() { assert.NoError(t, w.Close()) })
}
