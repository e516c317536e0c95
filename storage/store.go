package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schoolhub/portal/storage/model"
)

// Store aggregates every flat-file repository of the portal under one data
// folder. Services receive it injected so the backing layout never leaks
// into business logic.
type Store struct {
	dir string

	Users   *File[model.User]
	Groups  *File[model.Group]
	Ranking *File[model.RankingEntry]

	indexes map[model.Kind]*File[model.ContentEntry]
	assets  *AssetStore
}

func NewStore(dir string) *Store {
	s := &Store{
		dir:     dir,
		Users:   NewFile[model.User](filepath.Join(dir, "users.json")),
		Groups:  NewFile[model.Group](filepath.Join(dir, "groups.json")),
		Ranking: NewFile[model.RankingEntry](filepath.Join(dir, "ranking.json")),
		indexes: make(map[model.Kind]*File[model.ContentEntry]),
		assets:  NewAssetStore(filepath.Join(dir, "uploads")),
	}
	for _, kind := range model.Kinds() {
		s.indexes[kind] = NewFile[model.ContentEntry](filepath.Join(dir, string(kind)+"-index.json"))
	}
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

// Index returns the content index file of one kind.
func (s *Store) Index(kind model.Kind) *File[model.ContentEntry] {
	return s.indexes[kind]
}

// Assets returns the upload store shared by all kinds.
func (s *Store) Assets() *AssetStore {
	return s.assets
}

// bodyPath locates the markdown side-car of an entry.
func (s *Store) bodyPath(kind model.Kind, id int64) string {
	return filepath.Join(s.dir, string(kind), fmt.Sprintf("%d.md", id))
}

// articleBodyPath locates the markdown side-car of a nested article.
func (s *Store) articleBodyPath(id string) string {
	return filepath.Join(s.dir, string(model.KindMaterials), "articles", id+".md")
}

// ReadBody returns the markdown body of an entry.
func (s *Store) ReadBody(kind model.Kind, id int64) (string, error) {
	data, err := os.ReadFile(s.bodyPath(kind, id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteBody stores the markdown body of an entry.
func (s *Store) WriteBody(kind model.Kind, id int64, body string) error {
	path := s.bodyPath(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o640)
}

// DeleteBody removes the markdown body of an entry. Missing files are fine.
func (s *Store) DeleteBody(kind model.Kind, id int64) error {
	err := os.Remove(s.bodyPath(kind, id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadArticleBody returns the markdown body of a nested article.
func (s *Store) ReadArticleBody(id string) (string, error) {
	data, err := os.ReadFile(s.articleBodyPath(id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteArticleBody stores the markdown body of a nested article.
func (s *Store) WriteArticleBody(id string, body string) error {
	path := s.articleBodyPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o640)
}

// DeleteArticleBody removes the markdown body of a nested article.
func (s *Store) DeleteArticleBody(id string) error {
	err := os.Remove(s.articleBodyPath(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
