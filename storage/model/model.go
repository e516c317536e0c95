// Package model defines the persisted entities of the portal: users, groups,
// content entries with nested articles, and ranking rows.
package model

// Role is the closed set of account roles. Unknown values are rejected at
// the API boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleUser    Role = "user"
)

// AudienceGuest is not an account role: it marks content as public. It is
// valid inside ContentEntry.Audience only.
const AudienceGuest Role = "guest"

// NoGroup is the group value of accounts not assigned to any cohort.
const NoGroup = "none"

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleUser:
		return true
	}
	return false
}

func ValidAudience(r Role) bool {
	switch r {
	case AudienceGuest, RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Kind is the closed set of content kinds. All three share the same entry
// shape; materials alone nest articles.
type Kind string

const (
	KindNews          Kind = "news"
	KindAnnouncements Kind = "announcements"
	KindMaterials     Kind = "materials"
)

func Kinds() []Kind {
	return []Kind{KindNews, KindAnnouncements, KindMaterials}
}

type User struct {
	Id           string `json:"id"`
	Login        string `json:"login"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	Group        string `json:"group"`
}

type Group struct {
	Name string `json:"name"`
}

// ContentEntry is the index record of one news item, announcement or
// material. Id doubles as creation timestamp (unix milliseconds) and as the
// markdown body filename stem. The body itself lives in a side-car file.
type ContentEntry struct {
	Id       int64     `json:"id"`
	Title    string    `json:"title"`
	Audience []Role    `json:"audience"`
	Groups   []string  `json:"groups,omitempty"`
	Image    string    `json:"image,omitempty"`
	Files    []string  `json:"files,omitempty"`
	Articles []Article `json:"articles,omitempty"`
}

// Article is a nested entry inside a material: same shape one level down,
// with an opaque string id.
type Article struct {
	Id       string   `json:"id"`
	Title    string   `json:"title"`
	Audience []Role   `json:"audience"`
	Groups   []string `json:"groups,omitempty"`
	Image    string   `json:"image,omitempty"`
	Files    []string `json:"files,omitempty"`
}

type RankingEntry struct {
	Id     string `json:"id"`
	Group  string `json:"group"`
	Points int    `json:"points"`
}
