package service

import (
	"testing"

	"github.com/schoolhub/portal/storage/model"
)

func TestVisible(t *testing.T) {
	guest := (*Identity)(nil)
	admin := &Identity{Role: model.RoleAdmin, Group: model.NoGroup}
	teacher := &Identity{Role: model.RoleTeacher, Group: model.NoGroup}
	studentA := &Identity{Role: model.RoleStudent, Group: "10a"}
	studentB := &Identity{Role: model.RoleStudent, Group: "10b"}
	plainUser := &Identity{Role: model.RoleUser, Group: model.NoGroup}

	tests := []struct {
		name     string
		viewer   *Identity
		audience []model.Role
		groups   []string
		expected bool
	}{
		{
			name:     "guest audience visible to anonymous",
			viewer:   guest,
			audience: []model.Role{model.AudienceGuest},
			expected: true,
		},
		{
			name:     "guest audience visible to student",
			viewer:   studentA,
			audience: []model.Role{model.AudienceGuest},
			expected: true,
		},
		{
			name:     "guest audience visible to teacher",
			viewer:   teacher,
			audience: []model.Role{model.AudienceGuest},
			expected: true,
		},
		{
			name:     "guest audience visible to plain user",
			viewer:   plainUser,
			audience: []model.Role{model.AudienceGuest},
			expected: true,
		},
		{
			name:     "teacher audience invisible to student",
			viewer:   studentA,
			audience: []model.Role{model.RoleTeacher},
			expected: false,
		},
		{
			name:     "teacher audience invisible to student even with matching group",
			viewer:   studentA,
			audience: []model.Role{model.RoleTeacher},
			groups:   []string{"10a"},
			expected: false,
		},
		{
			name:     "teacher audience invisible to anonymous",
			viewer:   guest,
			audience: []model.Role{model.RoleTeacher},
			expected: false,
		},
		{
			name:     "student audience invisible to plain user",
			viewer:   plainUser,
			audience: []model.Role{model.RoleStudent},
			expected: false,
		},
		{
			name:     "admin sees everything",
			viewer:   admin,
			audience: []model.Role{model.RoleTeacher},
			groups:   []string{"10b"},
			expected: true,
		},
		{
			name:     "group member with matching role sees entry",
			viewer:   studentA,
			audience: []model.Role{model.RoleStudent},
			groups:   []string{"10a"},
			expected: true,
		},
		{
			name:     "other group never sees entry even with matching role",
			viewer:   studentB,
			audience: []model.Role{model.RoleStudent},
			groups:   []string{"10a"},
			expected: false,
		},
		{
			name:     "empty group list means all audience members",
			viewer:   studentB,
			audience: []model.Role{model.RoleStudent},
			expected: true,
		},
		{
			name:     "anonymous never matches group restricted entries",
			viewer:   guest,
			audience: []model.Role{model.AudienceGuest},
			groups:   []string{"10a"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(tt.viewer, tt.audience, tt.groups)
			if got != tt.expected {
				t.Errorf("Visible() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name     string
		viewer   *Identity
		expected bool
	}{
		{"admin edits", &Identity{Role: model.RoleAdmin}, true},
		{"teacher edits", &Identity{Role: model.RoleTeacher}, true},
		{"student never edits", &Identity{Role: model.RoleStudent}, false},
		{"plain user never edits", &Identity{Role: model.RoleUser}, false},
		{"guest never edits", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEdit(tt.viewer); got != tt.expected {
				t.Errorf("CanEdit() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFilterEntriesKeepsOrder(t *testing.T) {
	student := &Identity{Role: model.RoleStudent, Group: "10a"}
	entries := []model.ContentEntry{
		{Id: 3, Audience: []model.Role{model.RoleStudent}},
		{Id: 1, Audience: []model.Role{model.RoleTeacher}},
		{Id: 2, Audience: []model.Role{model.AudienceGuest}},
	}

	visible := FilterEntries(student, entries)
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible entries, got %d", len(visible))
	}
	if visible[0].Id != 3 || visible[1].Id != 2 {
		t.Errorf("insertion order not preserved: got %d, %d", visible[0].Id, visible[1].Id)
	}
}
