package service

import (
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/entity"
)

// Nested article operations. They exist on the materials kind only; the
// router never registers these routes for news or announcements.

// GetArticle returns one article with its markdown body. The parent material
// and the article itself must both be visible to the viewer.
func (s *ContentService) GetArticle(viewer *Identity, materialId int64, articleId string) (entity.ArticleDetail, error) {
	material, err := s.find(materialId)
	if err != nil {
		return entity.ArticleDetail{}, err
	}
	if !Visible(viewer, material.Audience, material.Groups) {
		return entity.ArticleDetail{}, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
	}

	for _, a := range material.Articles {
		if a.Id != articleId {
			continue
		}
		if !Visible(viewer, a.Audience, a.Groups) {
			break
		}
		body, err := s.store.ReadArticleBody(articleId)
		if err != nil {
			return entity.ArticleDetail{}, err
		}
		return entity.ArticleDetail{
			ArticleView: s.articleView(a, CanEdit(viewer)),
			Content:     body,
		}, nil
	}
	return entity.ArticleDetail{}, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
}

// CreateArticle adds an article to a material, writing its body file and the
// inline metadata together.
func (s *ContentService) CreateArticle(materialId int64, input EntryInput, image *Upload, files []Upload) (model.Article, error) {
	if err := s.validateInput(input); err != nil {
		return model.Article{}, err
	}
	if len(files) > MaxFilesPerUpload {
		return model.Article{}, fmt.Errorf("%w: at most %d files per request", ErrValidation, MaxFilesPerUpload)
	}

	article := model.Article{
		Id:       uuid.NewString(),
		Title:    input.Title,
		Audience: input.Audience,
		Groups:   input.Groups,
	}
	if image != nil {
		ref, err := s.store.Assets().Save(s.kind, image.Name, image.Data)
		if err != nil {
			return model.Article{}, err
		}
		article.Image = ref
	}
	for _, f := range files {
		ref, err := s.store.Assets().Save(s.kind, f.Name, f.Data)
		if err != nil {
			return model.Article{}, err
		}
		article.Files = append(article.Files, ref)
	}

	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		if err := s.store.WriteArticleBody(article.Id, input.Content); err != nil {
			return nil, err
		}
		entries[i].Articles = append(entries[i].Articles, article)
		return entries, nil
	})
	if err != nil {
		s.deleteAssets(article.Image, article.Files)
		return model.Article{}, err
	}
	s.flushIndex()
	return article, nil
}

// UpdateArticle replaces the metadata and body of an article.
func (s *ContentService) UpdateArticle(materialId int64, articleId string, input EntryInput) (model.Article, error) {
	if err := s.validateInput(input); err != nil {
		return model.Article{}, err
	}

	var updated model.Article
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j := range entries[i].Articles {
			if entries[i].Articles[j].Id != articleId {
				continue
			}
			if err := s.store.WriteArticleBody(articleId, input.Content); err != nil {
				return nil, err
			}
			entries[i].Articles[j].Title = input.Title
			entries[i].Articles[j].Audience = input.Audience
			entries[i].Articles[j].Groups = input.Groups
			updated = entries[i].Articles[j]
			return entries, nil
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		return model.Article{}, err
	}
	s.flushIndex()
	return updated, nil
}

// DeleteArticle removes an article, its body file and its assets.
func (s *ContentService) DeleteArticle(materialId int64, articleId string) error {
	var removed model.Article
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j, a := range entries[i].Articles {
			if a.Id == articleId {
				removed = a
				entries[i].Articles = append(entries[i].Articles[:j], entries[i].Articles[j+1:]...)
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		return err
	}
	s.flushIndex()

	if err := s.store.DeleteArticleBody(articleId); err != nil {
		logger.Warningf("delete article %s body: %v", articleId, err)
	}
	s.deleteAssets(removed.Image, removed.Files)
	return nil
}

// UploadArticleImage stores a new article image, replacing the previous one.
func (s *ContentService) UploadArticleImage(materialId int64, articleId string, image Upload) (model.Article, error) {
	ref, err := s.store.Assets().Save(s.kind, image.Name, image.Data)
	if err != nil {
		return model.Article{}, err
	}

	var previous string
	var updated model.Article
	_, err = s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j := range entries[i].Articles {
			if entries[i].Articles[j].Id == articleId {
				previous = entries[i].Articles[j].Image
				entries[i].Articles[j].Image = ref
				updated = entries[i].Articles[j]
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		s.deleteAssets(ref, nil)
		return model.Article{}, err
	}
	s.flushIndex()
	s.deleteAssets(previous, nil)
	return updated, nil
}

// DeleteArticleImage removes the article image and its backing file.
func (s *ContentService) DeleteArticleImage(materialId int64, articleId string) error {
	var previous string
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j := range entries[i].Articles {
			if entries[i].Articles[j].Id == articleId {
				previous = entries[i].Articles[j].Image
				entries[i].Articles[j].Image = ""
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		return err
	}
	s.flushIndex()
	s.deleteAssets(previous, nil)
	return nil
}

// AddArticleFiles appends attachments to an article.
func (s *ContentService) AddArticleFiles(materialId int64, articleId string, files []Upload) (model.Article, error) {
	if len(files) == 0 {
		return model.Article{}, fmt.Errorf("%w: no files in request", ErrValidation)
	}
	if len(files) > MaxFilesPerUpload {
		return model.Article{}, fmt.Errorf("%w: at most %d files per request", ErrValidation, MaxFilesPerUpload)
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.store.Assets().Save(s.kind, f.Name, f.Data)
		if err != nil {
			s.deleteAssets("", refs)
			return model.Article{}, err
		}
		refs = append(refs, ref)
	}

	var updated model.Article
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j := range entries[i].Articles {
			if entries[i].Articles[j].Id == articleId {
				entries[i].Articles[j].Files = append(entries[i].Articles[j].Files, refs...)
				updated = entries[i].Articles[j]
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		s.deleteAssets("", refs)
		return model.Article{}, err
	}
	s.flushIndex()
	return updated, nil
}

// DeleteArticleFile removes one article attachment by stored basename.
func (s *ContentService) DeleteArticleFile(materialId int64, articleId string, filename string) error {
	var removed string
	_, err := s.store.Index(s.kind).Update(func(entries []model.ContentEntry) ([]model.ContentEntry, error) {
		i := indexOf(entries, materialId)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, s.kind, materialId)
		}
		for j := range entries[i].Articles {
			if entries[i].Articles[j].Id != articleId {
				continue
			}
			files := entries[i].Articles[j].Files
			for k, ref := range files {
				if path.Base(ref) == filename {
					removed = ref
					entries[i].Articles[j].Files = append(files[:k], files[k+1:]...)
					return entries, nil
				}
			}
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleId)
	})
	if err != nil {
		return err
	}
	s.flushIndex()
	s.deleteAssets(removed, nil)
	return nil
}
