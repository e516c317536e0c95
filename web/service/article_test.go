package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/portal/storage/model"
)

func TestArticleLifecycle(t *testing.T) {
	svc, store := newTestContent(t, model.KindMaterials)

	material, err := svc.Create(EntryInput{
		Title:    "Algebra",
		Content:  "course overview",
		Audience: []model.Role{model.RoleStudent},
	}, nil, nil)
	require.NoError(t, err)

	article, err := svc.CreateArticle(material.Id, EntryInput{
		Title:    "Lesson 1",
		Content:  "lesson body",
		Audience: []model.Role{model.RoleStudent},
	}, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, article.Id)

	bodyPath := filepath.Join(store.Dir(), "materials", "articles", article.Id+".md")
	_, err = os.Stat(bodyPath)
	require.NoError(t, err, "article body file must exist after create")

	student := &Identity{Role: model.RoleStudent, Group: model.NoGroup}
	detail, err := svc.GetArticle(student, material.Id, article.Id)
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1", detail.Title)
	assert.Equal(t, "lesson body", detail.Content)

	_, err = svc.UpdateArticle(material.Id, article.Id, EntryInput{
		Title:    "Lesson 1b",
		Content:  "updated body",
		Audience: []model.Role{model.RoleStudent},
	})
	require.NoError(t, err)

	detail, err = svc.GetArticle(student, material.Id, article.Id)
	require.NoError(t, err)
	assert.Equal(t, "updated body", detail.Content)

	require.NoError(t, svc.DeleteArticle(material.Id, article.Id))
	_, err = os.Stat(bodyPath)
	assert.True(t, os.IsNotExist(err))

	_, err = svc.GetArticle(student, material.Id, article.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleVisibilityFollowsPolicy(t *testing.T) {
	svc, _ := newTestContent(t, model.KindMaterials)

	material, err := svc.Create(EntryInput{
		Title:    "Methodics",
		Content:  "for everyone",
		Audience: []model.Role{model.AudienceGuest},
	}, nil, nil)
	require.NoError(t, err)

	_, err = svc.CreateArticle(material.Id, EntryInput{
		Title:    "Staff only",
		Content:  "internal",
		Audience: []model.Role{model.RoleTeacher},
	}, nil, nil)
	require.NoError(t, err)

	student := &Identity{Role: model.RoleStudent}
	detail, err := svc.Get(student, material.Id)
	require.NoError(t, err)
	assert.Empty(t, detail.Articles, "staff article must be filtered out")

	teacher := &Identity{Role: model.RoleTeacher}
	detail, err = svc.Get(teacher, material.Id)
	require.NoError(t, err)
	assert.Len(t, detail.Articles, 1)

	_, err = svc.GetArticle(student, material.Id, detail.Articles[0].Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMaterialRemovesArticleBodies(t *testing.T) {
	svc, store := newTestContent(t, model.KindMaterials)

	material, err := svc.Create(EntryInput{
		Title:    "Geometry",
		Content:  "overview",
		Audience: []model.Role{model.RoleStudent},
	}, nil, nil)
	require.NoError(t, err)

	article, err := svc.CreateArticle(material.Id, EntryInput{
		Title:    "Lesson 1",
		Content:  "body",
		Audience: []model.Role{model.RoleStudent},
	}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(material.Id))

	bodyPath := filepath.Join(store.Dir(), "materials", "articles", article.Id+".md")
	_, err = os.Stat(bodyPath)
	assert.True(t, os.IsNotExist(err))
}
