package service

import (
	"github.com/schoolhub/portal/storage/model"
)

// The content access policy is implemented once and applied identically to
// news, announcements, materials and nested articles.
//
// An entry is visible to a viewer when the viewer is an admin, or when the
// viewer's role is in the entry's audience (entries carrying the guest
// audience are public), and the entry's group list is either empty or
// contains the viewer's group. Anonymous callers match through the guest
// audience only and never match group-restricted entries.

// Visible applies the visibility rule to one audience/groups pair.
func Visible(viewer *Identity, audience []model.Role, groups []string) bool {
	if viewer != nil && viewer.Role == model.RoleAdmin {
		return true
	}

	roleMatch := false
	for _, a := range audience {
		if a == model.AudienceGuest {
			roleMatch = true
			break
		}
		if viewer != nil && a == viewer.Role {
			roleMatch = true
			break
		}
	}
	if !roleMatch {
		return false
	}

	if len(groups) == 0 {
		return true
	}
	if viewer == nil {
		return false
	}
	for _, g := range groups {
		if g == viewer.Group {
			return true
		}
	}
	return false
}

// CanEdit reports whether the viewer may mutate content. Admins and teachers
// edit; students and guests never do, independent of audience matching.
func CanEdit(viewer *Identity) bool {
	if viewer == nil {
		return false
	}
	return viewer.Role == model.RoleAdmin || viewer.Role == model.RoleTeacher
}

// FilterEntries reduces a content index to the subset visible to the viewer,
// preserving the on-disk insertion order.
func FilterEntries(viewer *Identity, entries []model.ContentEntry) []model.ContentEntry {
	visible := make([]model.ContentEntry, 0, len(entries))
	for _, e := range entries {
		if Visible(viewer, e.Audience, e.Groups) {
			visible = append(visible, e)
		}
	}
	return visible
}

// FilterArticles reduces a material's article list the same way.
func FilterArticles(viewer *Identity, articles []model.Article) []model.Article {
	visible := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if Visible(viewer, a.Audience, a.Groups) {
			visible = append(visible, a)
		}
	}
	return visible
}
