package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/util/common"
)

// AssetStore keeps uploaded binaries under one folder per content kind. Files
// are stored under a timestamp-prefixed name so repeated uploads of the same
// original filename never collide. References handed out are relative
// ("<kind>/<basename>") and stay valid as long as the upload folder moves as
// a whole. No integrity checks are performed.
type AssetStore struct {
	dir string
}

func NewAssetStore(dir string) *AssetStore {
	return &AssetStore{dir: dir}
}

func (a *AssetStore) Dir() string {
	return a.dir
}

// Save stores the payload under kind with the declared original filename and
// returns the relative reference.
func (a *AssetStore) Save(kind model.Kind, originalName string, src io.Reader) (string, error) {
	base := sanitizeName(originalName)
	if base == "" {
		return "", common.NewError("empty filename")
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)

	dir := filepath.Join(a.dir, string(kind))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	logger.Debugf("stored asset %s (%s)", name, common.FormatSize(written))

	return path.Join(string(kind), name), nil
}

// Delete removes the file behind a reference. A missing file is logged and
// ignored, not an error.
func (a *AssetStore) Delete(ref string) error {
	full, err := a.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warningf("asset already gone: %s", ref)
			return nil
		}
		return err
	}
	return nil
}

// Exists reports whether a reference still has a backing file.
func (a *AssetStore) Exists(ref string) bool {
	full, err := a.resolve(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve maps a relative reference to its on-disk path, refusing anything
// that would escape the upload folder.
func (a *AssetStore) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", common.NewErrorf("bad asset reference: %q", ref)
	}
	return filepath.Join(a.dir, filepath.FromSlash(clean)), nil
}

// sanitizeName strips any path components from a client-declared filename.
func sanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}
