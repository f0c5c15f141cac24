// Package assetstore persists uploaded and generated files under a public
// root directory. Paths handed back to callers are slash-separated and
// rooted at the public root ("/uploads/x.png"), ready to be served as URLs.
package assetstore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

var ErrOutsideRoot = errors.New("path escapes the public root")

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9.-]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

type StoredAsset struct {
	Filename   string
	PublicPath string
	Size       int64
	Digest     string
}

type Store struct {
	root string
	now  func() time.Time
}

func New(publicRoot string) *Store {
	return &Store{
		root: publicRoot,
		now:  time.Now,
	}
}

func (s *Store) Root() string {
	return s.root
}

// EnsureDir creates dir (relative to the public root) and its parents. An
// existing directory is not an error.
func (s *Store) EnsureDir(dir string) error {
	full, err := s.resolve(dir)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return nil
}

// Store writes data under a unique name derived from suggestedName.
func (s *Store) Store(dir, suggestedName string, data []byte) (StoredAsset, error) {
	name := UniqueFilename(suggestedName, s.now())

	publicPath, err := s.Put(dir, name, data)
	if err != nil {
		return StoredAsset{}, err
	}

	digest := blake3.Sum256(data)

	return StoredAsset{
		Filename:   name,
		PublicPath: publicPath,
		Size:       int64(len(data)),
		Digest:     hex.EncodeToString(digest[:]),
	}, nil
}

// Put writes data to dir/filename. The file must not exist yet; an existing
// file yields an error matching fs.ErrExist and is left untouched.
func (s *Store) Put(dir, filename string, data []byte) (string, error) {
	publicPath := PublicPath(dir, filename)

	full, err := s.resolve(publicPath)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("os.OpenFile -> %w", err)
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("f.Write -> %w", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("f.Close -> %w", err)
	}

	return publicPath, nil
}

// Delete removes the file at publicPath. A file that is already gone is not
// an error.
func (s *Store) Delete(publicPath string) error {
	full, err := s.resolve(publicPath)
	if err != nil {
		return err
	}

	if err = os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

func (s *Store) resolve(publicPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(publicPath))
	full := filepath.Join(s.root, filepath.FromSlash(clean))

	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, publicPath)
	}

	return full, nil
}

// PublicPath joins dir and filename into a root-relative URL path.
func PublicPath(dir, filename string) string {
	return path.Join("/", filepath.ToSlash(dir), filename)
}

// ArtifactFilename is the file name of the QR image for token.
func ArtifactFilename(token string) string {
	return "qr_" + token + ".png"
}

// ArtifactPath is the public path of the QR image for token under dir.
func ArtifactPath(dir, token string) string {
	return PublicPath(dir, ArtifactFilename(token))
}

// UniqueFilename derives a collision-free file name from an uploaded file
// name: ticket-<unix millis>-<random>-<sanitized base><ext>.
func UniqueFilename(original string, now time.Time) string {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	ext := strings.ToLower(filepath.Ext(base))
	base = sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	if base == "" {
		base = "design"
	}
	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}

	return fmt.Sprintf("ticket-%d-%s-%s%s", now.UnixMilli(), uuid.NewString()[:8], base, ext)
}

func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(s), "-")
	s = dashRuns.ReplaceAllString(s, "-")

	return strings.Trim(s, "-.")
}
