package render

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesBothRepresentations(t *testing.T) {
	r := New()

	res := r.Render("# Crash on startup\n\nSee *stack trace* below.")

	require.False(t, res.Degraded)
	require.NoError(t, res.Err)
	assert.Equal(t, "# Crash on startup\n\nSee *stack trace* below.", res.Plain)
	assert.Contains(t, res.HTML, "<h1")
	assert.Contains(t, res.HTML, "<em>stack trace</em>")
}

func TestRenderGFMTables(t *testing.T) {
	r := New()

	res := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")

	require.False(t, res.Degraded)
	assert.Contains(t, res.HTML, "<table>")
}

func TestRenderEmptyBody(t *testing.T) {
	r := New()

	res := r.Render("")

	require.False(t, res.Degraded)
	assert.Equal(t, "", res.Plain)
}

func TestRenderDegradesOnConversionError(t *testing.T) {
	r := New()
	r.convert = func(src []byte, w io.Writer) error {
		return errors.New("boom")
	}

	res := r.Render("plain body survives")

	require.True(t, res.Degraded)
	require.Error(t, res.Err)
	assert.Equal(t, "plain body survives", res.Plain)
	assert.Empty(t, res.HTML)
}

func TestRenderRecoversFromPanic(t *testing.T) {
	r := New()
	r.convert = func(src []byte, w io.Writer) error {
		panic("renderer internal fault")
	}

	res := r.Render("still here")

	require.True(t, res.Degraded)
	require.Error(t, res.Err)
	assert.Equal(t, "still here", res.Plain)
}
