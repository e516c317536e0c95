package service

import (
	"fmt"
	"io"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/schoolhub/portal/caching"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/entity"
)

// MaxFilesPerUpload caps how many attachments one request may add.
const MaxFilesPerUpload = 5

// Upload is a binary payload plus its client-declared original filename.
type Upload struct {
	Name string
	Data io.Reader
}

// EntryInput carries the mutable metadata of an entry or article.
type EntryInput struct {
	Title    string
	Content  string
	Audience []model.Role
	Groups   []string
}

// ContentService implements the shared semantics of one content kind. The
// same implementation serves news, announcements and materials; the kind and
// its storage paths are the only parameters.
type ContentService struct {
	store *storage.Store
	cache *caching.Cache
	kind  model.Kind
}

func NewContentService(store *storage.Store, cache *caching.Cache, kind model.Kind) *ContentService {
	return &ContentService{store: store, cache: cache, kind: kind}
}

func (s *ContentService) Kind() model.Kind {
	return s.kind
}

// List returns the visibility-filtered, canEdit-annotated index in insertion
// order. Bodies are not included.
func (s *ContentService) List(viewer *Identity) ([]entity.EntryView, error) {
	entries, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	visible := FilterEntries(viewer, entries)
	canEdit := CanEdit(viewer)

	views := make([]entity.EntryView, 0, len(visible))
	for _, e := range visible {
		views = append(views, s.entryView(e, canEdit))
	}
	return views, nil
}

// Get returns one entry with its markdown body. Entries outside the viewer's
// visibility read as absent.
func (s *ContentService) Get(viewer *Identity, id int64) (entity.EntryDetail, error) {
	entry, err := s.find(id)
	if err != nil {
		return entity.EntryDetail{}, err
	}
	if !Visible(viewer, entry.Audience, entry.Groups) {
		return entity.EntryDetail{}, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
	}

	body, err := s.store.ReadBody(s.kind, id)
	if err != nil {
		return entity.EntryDetail{}, err
	}

	detail := entity.EntryDetail{
		EntryView: s.entryView(entry, CanEdit(viewer)),
		Content:   body,
	}
	if s.kind == model.KindMaterials {
		articles := FilterArticles(viewer, entry.Articles)
		detail.Articles = make([]entity.ArticleView, 0, len(articles))
		for _, a := range articles {
			detail.Articles = append(detail.Articles, s.articleView(a, CanEdit(viewer)))
		}
	}
	return detail, nil
}

// Create validates the metadata, writes the markdown body and appends the
// index entry. The id is derived from the creation timestamp and doubles as
// the body filename stem.
func (s *ContentService) Create(input EntryInput, image *Upload, files []Upload) (model.ContentEntry, error) {
	if err := s.validateInput(input); err != nil {
		return model.ContentEntry{}, err
	}
	if len(files) > MaxFilesPerUpload {
		return model.ContentEntry{}, fmt.Errorf("%w: at most %d files per request", ErrValidation, MaxFilesPerUpload)
	}

	entry := model.ContentEntry{
		Title:    input.Title,
		Audience: input.Audience,
		Groups:   input.Groups,
	}

	if image != nil {
		ref, err := s.store.Assets().Save(s.kind, image.Name, image.Data)
		if err != nil {
			return model.ContentEntry{}, err
		}
		entry.Image = ref
	}
	for _, f := range files {
		ref, err := s.store.Assets().Save(s.kind, f.Name, f.Data)
		if err != nil {
			return model.ContentEntry{}, err
		}
		entry.Files = append(entry.Files, ref)
	}

	var created model.ContentEntry
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		id := time.Now().UnixMilli()
		for hasId(entries, id) {
			id++
		}
		entry.Id = id
		if err := s.store.WriteBody(s.kind, id, input.Content); err != nil {
			return nil, err
		}
		created = entry
		return append(entries, entry), nil
	})
	if err != nil {
		return model.ContentEntry{}, err
	}
	s.flushIndex()
	return created, nil
}

// Update replaces the metadata and body of an entry.
func (s *ContentService) Update(id int64, input EntryInput) (model.ContentEntry, error) {
	if err := s.validateInput(input); err != nil {
		return model.ContentEntry{}, err
	}

	var updated model.ContentEntry
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		if err := s.store.WriteBody(s.kind, id, input.Content); err != nil {
			return nil, err
		}
		entries[i].Title = input.Title
		entries[i].Audience = input.Audience
		entries[i].Groups = input.Groups
		updated = entries[i]
		return entries, nil
	})
	if err != nil {
		return model.ContentEntry{}, err
	}
	s.flushIndex()
	return updated, nil
}

// Delete removes the index entry and markdown body and attempts removal of
// every referenced asset. Asset removal is best-effort, not transactional.
func (s *ContentService) Delete(id int64) error {
	var removed model.ContentEntry
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		removed = entries[i]
		return append(entries[:i], entries[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.flushIndex()

	if err := s.store.DeleteBody(s.kind, id); err != nil {
		logger.Warningf("delete %s %d body: %v", s.kind, id, err)
	}
	s.deleteAssets(removed.Image, removed.Files)
	for _, a := range removed.Articles {
		if err := s.store.DeleteArticleBody(a.Id); err != nil {
			logger.Warningf("delete article %s body: %v", a.Id, err)
		}
		s.deleteAssets(a.Image, a.Files)
	}
	return nil
}

// UploadImage stores a new title image, replacing (and best-effort deleting)
// the previous one.
func (s *ContentService) UploadImage(id int64, image Upload) (model.ContentEntry, error) {
	ref, err := s.store.Assets().Save(s.kind, image.Name, image.Data)
	if err != nil {
		return model.ContentEntry{}, err
	}

	var previous string
	var updated model.ContentEntry
	_, err = s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		previous = entries[i].Image
		entries[i].Image = ref
		updated = entries[i]
		return entries, nil
	})
	if err != nil {
		s.deleteAssets(ref, nil)
		return model.ContentEntry{}, err
	}
	s.flushIndex()
	s.deleteAssets(previous, nil)
	return updated, nil
}

// DeleteImage removes the title image reference and its backing file.
func (s *ContentService) DeleteImage(id int64) error {
	var previous string
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		previous = entries[i].Image
		entries[i].Image = ""
		return entries, nil
	})
	if err != nil {
		return err
	}
	s.flushIndex()
	s.deleteAssets(previous, nil)
	return nil
}

// AddFiles appends up to MaxFilesPerUpload attachments to an entry.
func (s *ContentService) AddFiles(id int64, files []Upload) (model.ContentEntry, error) {
	if len(files) == 0 {
		return model.ContentEntry{}, fmt.Errorf("%w: no files in request", ErrValidation)
	}
	if len(files) > MaxFilesPerUpload {
		return model.ContentEntry{}, fmt.Errorf("%w: at most %d files per request", ErrValidation, MaxFilesPerUpload)
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.store.Assets().Save(s.kind, f.Name, f.Data)
		if err != nil {
			s.deleteAssets("", refs)
			return model.ContentEntry{}, err
		}
		refs = append(refs, ref)
	}

	var updated model.ContentEntry
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		entries[i].Files = append(entries[i].Files, refs...)
		updated = entries[i]
		return entries, nil
	})
	if err != nil {
		s.deleteAssets("", refs)
		return model.ContentEntry{}, err
	}
	s.flushIndex()
	return updated, nil
}

// DeleteFile removes one attachment, addressed by its stored basename.
func (s *ContentService) DeleteFile(id int64, filename string) error {
	var removed string
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
		}
		for j, ref := range entries[i].Files {
			if path.Base(ref) == filename {
				removed = ref
				entries[i].Files = append(entries[i].Files[:j], entries[i].Files[j+1:]...)
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, filename)
	})
	if err != nil {
		return err
	}
	s.flushIndex()
	s.deleteAssets(removed, nil)
	return nil
}

func (s *ContentService) validateInput(input EntryInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if len(input.Audience) == 0 {
		return fmt.Errorf("%w: audience must not be empty", ErrValidation)
	}
	for _, a := range input.Audience {
		if !model.ValidAudience(a) {
			return fmt.Errorf("%w: unknown audience %q", ErrValidation, a)
		}
	}
	if len(input.Groups) > 0 {
		groups, err := s.store.Groups.Load()
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(groups))
		for _, g := range groups {
			known[g.Name] = true
		}
		for _, g := range input.Groups {
			if !known[g] {
				return fmt.Errorf("%w: unknown group %q", ErrValidation, g)
			}
		}
	}
	return nil
}

func (s *ContentService) find(id int64) (model.ContentEntry, error) {
	entries, err := s.loadIndex()
	if err != nil {
		return model.ContentEntry{}, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return model.ContentEntry{}, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, id)
	}
	return entries[i], nil
}

// loadIndex serves the decoded index from cache, falling back to disk.
func (s *ContentService) loadIndex() ([]model.ContentEntry, error) {
	key := s.cacheKey()
	if cached, found := s.cache.Memory().Get(key); found {
		return cached.([]model.ContentEntry), nil
	}
	entries, err := s.store.Index(s.kind).Load()
	if err != nil {
		return nil, err
	}
	s.cache.Memory().Set(key, entries, gocache.DefaultExpiration)
	return entries, nil
}

func (s *ContentService) flushIndex() {
	s.cache.Memory().Delete(s.cacheKey())
}

func (s *ContentService) cacheKey() string {
	return "index:" + string(s.kind)
}

func (s *ContentService) deleteAssets(image string, files []string) {
	if image != "" {
		if err := s.store.Assets().Delete(image); err != nil {
			logger.Warningf("delete asset %s: %v", image, err)
		}
	}
	for _, ref := range files {
		if err := s.store.Assets().Delete(ref); err != nil {
			logger.Warningf("delete asset %s: %v", ref, err)
		}
	}
}

func (s *ContentService) entryView(e model.ContentEntry, canEdit bool) entity.EntryView {
	return entity.EntryView{
		Id:       e.Id,
		Title:    e.Title,
		Audience: e.Audience,
		Groups:   e.Groups,
		Image:    assetURL(e.Image),
		Files:    assetURLs(e.Files),
		CanEdit:  canEdit,
	}
}

func (s *ContentService) articleView(a model.Article, canEdit bool) entity.ArticleView {
	return entity.ArticleView{
		Id:       a.Id,
		Title:    a.Title,
		Audience: a.Audience,
		Groups:   a.Groups,
		Image:    assetURL(a.Image),
		Files:    assetURLs(a.Files),
		CanEdit:  canEdit,
	}
}

// assetURL resolves a stored relative reference to the public uploads URL.
func assetURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "/uploads/" + ref
}

func assetURLs(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, assetURL(ref))
	}
	return out
}

func indexOf(entries []model.ContentEntry, id int64) int {
	for i := range entries {
		if entries[i].Id == id {
			return i
		}
	}
	return -1
}

func hasId(entries []model.ContentEntry, id int64) bool {
	return indexOf(entries, id) >= 0
}
