// Package entity defines the response shapes of the portal API.
package entity

import (
	"github.com/schoolhub/portal/storage/model"
)

// Msg is the standard error/status body: a message plus optional payload.
type Msg struct {
	Message string `json:"message"`
	Obj     any    `json:"obj,omitempty"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string     `json:"token"`
	Role  model.Role `json:"role"`
	Login string     `json:"login"`
}

// VerifyResponse is returned by token verification.
type VerifyResponse struct {
	Login string     `json:"login"`
	Role  model.Role `json:"role"`
	Group string     `json:"group"`
}

// UserView is a user record without the password hash.
type UserView struct {
	Id    string     `json:"id"`
	Login string     `json:"login"`
	Role  model.Role `json:"role"`
	Group string     `json:"group"`
}

func NewUserView(u model.User) UserView {
	return UserView{Id: u.Id, Login: u.Login, Role: u.Role, Group: u.Group}
}

// EntryView is a content index record annotated with the per-viewer edit
// flag and resolved asset URLs.
type EntryView struct {
	Id       int64        `json:"id"`
	Title    string       `json:"title"`
	Audience []model.Role `json:"audience"`
	Groups   []string     `json:"groups,omitempty"`
	Image    string       `json:"image,omitempty"`
	Files    []string     `json:"files,omitempty"`
	CanEdit  bool         `json:"canEdit"`
}

// EntryDetail is a single entry with its markdown body and, for materials,
// the visible subset of nested articles.
type EntryDetail struct {
	EntryView
	Content  string        `json:"content"`
	Articles []ArticleView `json:"articles,omitempty"`
}

// ArticleView is a nested article record annotated like EntryView.
type ArticleView struct {
	Id       string       `json:"id"`
	Title    string       `json:"title"`
	Audience []model.Role `json:"audience"`
	Groups   []string     `json:"groups,omitempty"`
	Image    string       `json:"image,omitempty"`
	Files    []string     `json:"files,omitempty"`
	CanEdit  bool         `json:"canEdit"`
}

// ArticleDetail is a single article with its markdown body.
type ArticleDetail struct {
	ArticleView
	Content string `json:"content"`
}
