// Package controller provides the HTTP handlers of the portal API: content
// routers, registration, admin tools and the ranking table.
package controller

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/service"
)

// entryForm is the multipart metadata shared by entry and article creation:
// plain title/content fields plus JSON-encoded audience and groups arrays.
func entryInputFromForm(c *gin.Context) (service.EntryInput, error) {
	input := service.EntryInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}

	audienceRaw := c.PostForm("audience")
	if audienceRaw != "" {
		if err := json.Unmarshal([]byte(audienceRaw), &input.Audience); err != nil {
			return input, fmt.Errorf("%w: audience must be a JSON array", service.ErrValidation)
		}
	}
	groupsRaw := c.PostForm("groups")
	if groupsRaw != "" {
		if err := json.Unmarshal([]byte(groupsRaw), &input.Groups); err != nil {
			return input, fmt.Errorf("%w: groups must be a JSON array", service.ErrValidation)
		}
	}
	return input, nil
}

// formUploads holds the opened multipart payloads of one request.
type formUploads struct {
	image   *service.Upload
	files   []service.Upload
	closers []io.Closer
}

func (f *formUploads) Close() {
	for _, c := range f.closers {
		_ = c.Close()
	}
}

// parseUploads opens the optional image and files parts. Callers must Close.
func parseUploads(c *gin.Context) (*formUploads, error) {
	out := &formUploads{}

	if header, err := c.FormFile("image"); err == nil {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, file)
		out.image = &service.Upload{Name: header.Filename, Data: file}
	} else if err != http.ErrMissingFile {
		// no multipart form at all is fine; anything else is a client error
		if c.Request.MultipartForm != nil {
			out.Close()
			return nil, fmt.Errorf("%w: bad image part", service.ErrValidation)
		}
	}

	if form := c.Request.MultipartForm; form != nil {
		for _, header := range form.File["files"] {
			file, err := header.Open()
			if err != nil {
				out.Close()
				return nil, err
			}
			out.closers = append(out.closers, file)
			out.files = append(out.files, service.Upload{Name: header.Filename, Data: file})
		}
	}
	return out, nil
}

// entryUpdateReq is the JSON body of metadata updates.
type entryUpdateReq struct {
	Title    string       `json:"title" binding:"required"`
	Content  string       `json:"content"`
	Audience []model.Role `json:"audience" binding:"required"`
	Groups   []string     `json:"groups"`
}

func (r entryUpdateReq) toInput() service.EntryInput {
	return service.EntryInput{
		Title:    r.Title,
		Content:  r.Content,
		Audience: r.Audience,
		Groups:   r.Groups,
	}
}
