package service

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/portal/caching"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
)

func newTestContent(t *testing.T, kind model.Kind) (*ContentService, *storage.Store) {
	t.Helper()
	store := storage.NewStore(t.TempDir())
	cache := caching.NewCache()
	require.NoError(t, cache.Init())
	t.Cleanup(func() { _ = cache.Flush() })
	return NewContentService(store, cache, kind), store
}

func studentInput() EntryInput {
	return EntryInput{
		Title:    "T",
		Content:  "C",
		Audience: []model.Role{model.RoleStudent},
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	svc, _ := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)
	require.NotZero(t, entry.Id)

	viewer := &Identity{Role: model.RoleStudent, Group: model.NoGroup}
	detail, err := svc.Get(viewer, entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "T", detail.Title)
	assert.Equal(t, "C", detail.Content)
	assert.False(t, detail.CanEdit)
}

func TestCreateValidation(t *testing.T) {
	svc, store := newTestContent(t, model.KindNews)

	tests := []struct {
		name  string
		input EntryInput
	}{
		{"empty title", EntryInput{Audience: []model.Role{model.RoleStudent}}},
		{"empty audience", EntryInput{Title: "T"}},
		{"unknown audience", EntryInput{Title: "T", Audience: []model.Role{"visitor"}}},
		{"unknown group", EntryInput{Title: "T", Audience: []model.Role{model.RoleStudent}, Groups: []string{"10a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.input, nil, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// registered group passes the same check
	require.NoError(t, store.Groups.Save([]model.Group{{Name: "10a"}}))
	input := studentInput()
	input.Groups = []string{"10a"}
	_, err := svc.Create(input, nil, nil)
	assert.NoError(t, err)
}

func TestDeleteRemovesBodyAndIndex(t *testing.T) {
	svc, store := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)

	bodyPath := filepath.Join(store.Dir(), "news", formatId(entry.Id)+".md")
	_, err = os.Stat(bodyPath)
	require.NoError(t, err, "body file must exist after create")

	require.NoError(t, svc.Delete(entry.Id))

	_, err = os.Stat(bodyPath)
	assert.True(t, os.IsNotExist(err), "body file must be gone after delete")

	admin := &Identity{Role: model.RoleAdmin}
	_, err = svc.Get(admin, entry.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := store.Index(model.KindNews).Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateEntry(t *testing.T) {
	svc, _ := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)

	updated, err := svc.Update(entry.Id, EntryInput{
		Title:    "T2",
		Content:  "C2",
		Audience: []model.Role{model.AudienceGuest},
	})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)

	detail, err := svc.Get(nil, entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "C2", detail.Content)

	_, err = svc.Update(999, studentInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByViewer(t *testing.T) {
	svc, _ := newTestContent(t, model.KindAnnouncements)

	_, err := svc.Create(EntryInput{Title: "public", Audience: []model.Role{model.AudienceGuest}}, nil, nil)
	require.NoError(t, err)
	_, err = svc.Create(EntryInput{Title: "staff", Audience: []model.Role{model.RoleTeacher}}, nil, nil)
	require.NoError(t, err)

	anon, err := svc.List(nil)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "public", anon[0].Title)
	assert.False(t, anon[0].CanEdit)

	teacher, err := svc.List(&Identity{Role: model.RoleTeacher})
	require.NoError(t, err)
	assert.Len(t, teacher, 2)
	for _, v := range teacher {
		assert.True(t, v.CanEdit)
	}

	admin, err := svc.List(&Identity{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, admin, 2)
}

func TestInvisibleEntryReadsAsNotFound(t *testing.T) {
	svc, _ := newTestContent(t, model.KindNews)

	entry, err := svc.Create(EntryInput{Title: "staff", Audience: []model.Role{model.RoleTeacher}}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Get(&Identity{Role: model.RoleStudent}, entry.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileLifecycle(t *testing.T) {
	svc, store := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)

	updated, err := svc.AddFiles(entry.Id, []Upload{
		{Name: "notes.pdf", Data: strings.NewReader("pdf-bytes")},
	})
	require.NoError(t, err)
	require.Len(t, updated.Files, 1)
	ref := updated.Files[0]
	assert.True(t, strings.HasSuffix(ref, "-notes.pdf"))
	assert.True(t, store.Assets().Exists(ref))

	filename := filepath.Base(ref)
	require.NoError(t, svc.DeleteFile(entry.Id, filename))
	assert.False(t, store.Assets().Exists(ref))

	err = svc.DeleteFile(entry.Id, filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	svc, store := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)

	first, err := svc.UploadImage(entry.Id, Upload{Name: "a.png", Data: strings.NewReader("img-a")})
	require.NoError(t, err)
	require.NotEmpty(t, first.Image)

	second, err := svc.UploadImage(entry.Id, Upload{Name: "b.png", Data: strings.NewReader("img-b")})
	require.NoError(t, err)
	assert.NotEqual(t, first.Image, second.Image)
	assert.False(t, store.Assets().Exists(first.Image))
	assert.True(t, store.Assets().Exists(second.Image))

	require.NoError(t, svc.DeleteImage(entry.Id))
	assert.False(t, store.Assets().Exists(second.Image))
}

func TestTooManyFilesRejected(t *testing.T) {
	svc, _ := newTestContent(t, model.KindNews)

	entry, err := svc.Create(studentInput(), nil, nil)
	require.NoError(t, err)

	files := make([]Upload, MaxFilesPerUpload+1)
	for i := range files {
		files[i] = Upload{Name: "f.txt", Data: strings.NewReader("x")}
	}
	_, err = svc.AddFiles(entry.Id, files)
	assert.ErrorIs(t, err, ErrValidation)
}

func formatId(id int64) string {
	return strconv.FormatInt(id, 10)
}
