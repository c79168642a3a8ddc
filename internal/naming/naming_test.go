package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/gifbatch/internal/config"
)

func TestDeriveOutputPath(t *testing.T) {
	out := filepath.Join("out", "gifs")
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mp4", "source/clip.mp4", filepath.Join(out, "clip.gif")},
		{"upper-case ext", "source/clip.MOV", filepath.Join(out, "clip.gif")},
		{"mixed-case ext", "source/Clip.Avi", filepath.Join(out, "Clip.gif")},
		{"wmv absolute", "/abs/path/holiday.wmv", filepath.Join(out, "holiday.gif")},
		{"dots in stem", "source/my.trip.2024.mp4", filepath.Join(out, "my.trip.2024.gif")},
		{"bare name", "clip.mp4", filepath.Join(out, "clip.gif")},
		{"no extension", "source/README", filepath.Join(out, "README.gif")},
		{"spaces", "source/a b c.mov", filepath.Join(out, "a b c.gif")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOutputPath(tt.input, out, "gif"))
		})
	}
}

func TestDeriveOutputPath_ExtensionWithDot(t *testing.T) {
	assert.Equal(t, filepath.Join("o", "x.gif"), DeriveOutputPath("x.mp4", "o", ".gif"))
}

func TestDeriveOutputPath_SameStemCollides(t *testing.T) {
	a := DeriveOutputPath("in/a.mp4", "out", "gif")
	b := DeriveOutputPath("in/a.mov", "out", "gif")
	assert.Equal(t, a, b)
	assert.Equal(t, filepath.Join("out", "a.gif"), a)
}

func TestCollisionResolver_Overwrite(t *testing.T) {
	cr := NewCollisionResolver(config.CollisionOverwrite)

	p1, err := cr.Resolve("in/a.mp4", "out/a.gif")
	require.NoError(t, err)
	p2, err := cr.Resolve("in/a.mov", "out/a.gif")
	require.NoError(t, err)

	assert.Equal(t, "out/a.gif", p1)
	assert.Equal(t, "out/a.gif", p2)
	owner, ok := cr.Owner("out/a.gif")
	require.True(t, ok)
	assert.Equal(t, "in/a.mov", owner, "later input takes ownership")
}

func TestCollisionResolver_Error(t *testing.T) {
	cr := NewCollisionResolver(config.CollisionError)

	_, err := cr.Resolve("in/a.mp4", "out/a.gif")
	require.NoError(t, err)
	_, err = cr.Resolve("in/a.mov", "out/a.gif")
	assert.ErrorIs(t, err, ErrOutputCollision)

	// Same input again is not a collision.
	p, err := cr.Resolve("in/a.mp4", "out/a.gif")
	require.NoError(t, err)
	assert.Equal(t, "out/a.gif", p)
}

func TestCollisionResolver_Suffix(t *testing.T) {
	cr := NewCollisionResolver(config.CollisionSuffix)

	p1, _ := cr.Resolve("in/a.mp4", filepath.Join("out", "a.gif"))
	p2, _ := cr.Resolve("in/a.mov", filepath.Join("out", "a.gif"))
	p3, _ := cr.Resolve("in/a.avi", filepath.Join("out", "a.gif"))
	p2again, _ := cr.Resolve("in/a.mov", filepath.Join("out", "a - dup1.gif"))

	assert.Equal(t, filepath.Join("out", "a.gif"), p1)
	assert.Equal(t, filepath.Join("out", "a - dup1.gif"), p2)
	assert.Equal(t, filepath.Join("out", "a - dup2.gif"), p3)
	assert.Equal(t, p2, p2again)
}
