package assetstore

import (
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.EnsureDir("uploads"))
	require.NoError(t, s.EnsureDir("uploads"), "existing directory must be accepted")

	info, err := os.Stat(filepath.Join(root, "uploads"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_FailsWhenBlockedByFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tickets"), []byte("x"), 0o644))

	err := New(root).EnsureDir("tickets")
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	require.NoError(t, s.EnsureDir("uploads"))

	data := []byte("design bytes")
	a, err := s.Store("uploads", "My Ticket (final).PNG", data)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ticket-1700000000000-[0-9a-f]{8}-my-ticket-final\.png$`), a.Filename)
	assert.Equal(t, "/uploads/"+a.Filename, a.PublicPath)
	assert.Equal(t, int64(len(data)), a.Size)

	sum := blake3.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), a.Digest)

	got, err := os.ReadFile(filepath.Join(root, "uploads", a.Filename))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_SameNameNeverCollides(t *testing.T) {
	s := New(t.TempDir())
	s.now = func() time.Time { return time.UnixMilli(1) }
	require.NoError(t, s.EnsureDir("uploads"))

	a, err := s.Store("uploads", "design.png", []byte("a"))
	require.NoError(t, err)
	b, err := s.Store("uploads", "design.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicPath, b.PublicPath)
}

func TestPut_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.EnsureDir("tickets"))

	p, err := s.Put("tickets", ArtifactFilename("ABCDEFGHJKMN"), []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, "/tickets/qr_ABCDEFGHJKMN.png", p)

	_, err = s.Put("tickets", ArtifactFilename("ABCDEFGHJKMN"), []byte("second"))
	assert.ErrorIs(t, err, fs.ErrExist)

	got, err := os.ReadFile(filepath.Join(root, "tickets", "qr_ABCDEFGHJKMN.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestPut_MissingDirectory(t *testing.T) {
	_, err := New(t.TempDir()).Put("tickets", "qr_X.png", []byte("x"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.EnsureDir("uploads"))

	a, err := s.Store("uploads", "design.png", []byte("a"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(a.PublicPath))
	_, err = os.Stat(filepath.Join(root, "uploads", a.Filename))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.NoError(t, s.Delete(a.PublicPath), "already absent is fine")
}

func TestResolve_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	full, err := s.resolve("/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), full)
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "qr_ABCDEFGHJKMN.png", ArtifactFilename("ABCDEFGHJKMN"))
	assert.Equal(t, "/tickets/qr_ABCDEFGHJKMN.png", ArtifactPath("tickets", "ABCDEFGHJKMN"))
}

func TestUniqueFilename(t *testing.T) {
	now := time.UnixMilli(42)

	tests := []struct {
		in   string
		want string
	}{
		{"poster.jpg", `^ticket-42-[0-9a-f]{8}-poster\.jpg$`},
		{`C:\Users\me\Ticket Design.PNG`, `^ticket-42-[0-9a-f]{8}-ticket-design\.png$`},
		{"../../evil.png", `^ticket-42-[0-9a-f]{8}-evil\.png$`},
		{"$$$.gif", `^ticket-42-[0-9a-f]{8}-design\.gif$`},
		{"noext", `^ticket-42-[0-9a-f]{8}-noext$`},
	}

	for _, tc := range tests {
		assert.Regexp(t, regexp.MustCompile(tc.want), UniqueFilename(tc.in, now), tc.in)
	}
}
