package models

import (
	"strings"
	"time"
)

// Project is the top-level organizational unit. Every session, note and
// todo belongs to exactly one project.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	SessionCount int       `json:"sessionCount"`
}

// ProjectPatch is a partial update. Nil fields keep their current value.
type ProjectPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p *ProjectPatch) Validate() error {
	if p.Name == nil && p.Description == nil {
		return Invalidf("no updates provided")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Invalidf("name cannot be empty")
	}
	return nil
}
