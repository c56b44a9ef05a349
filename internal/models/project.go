package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectStatus captures where a proposal sits in its review lifecycle.
type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusAccepted ProjectStatus = "accepted"
)

// Valid reports whether the status is reachable by a stored project.
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusPending || s == ProjectStatusAccepted
}

// GroupMember describes a co-author listed on a proposal.
type GroupMember struct {
	Name  string `json:"name"`
	RegNo string `json:"reg_no"`
}

// Project is a proposal submitted by a student to a supervisor.
type Project struct {
	ID              uint                             `gorm:"primaryKey" json:"id"`
	ProjectTitle    string                           `gorm:"size:255;not null" json:"project_title"`
	Description     string                           `gorm:"type:text" json:"description"`
	Proposal        string                           `gorm:"type:text" json:"proposal"`
	ProposalFileURL string                           `gorm:"size:512" json:"proposal_file_url"`
	ProjectType     string                           `gorm:"size:64" json:"project_type"`
	Program         string                           `gorm:"size:128" json:"program"`
	StudentID       uint                             `gorm:"not null;index" json:"student_id"`
	Student         User                             `gorm:"foreignKey:StudentID" json:"-"`
	SupervisorID    uint                             `gorm:"not null;index" json:"supervisor_id"`
	Supervisor      User                             `gorm:"foreignKey:SupervisorID" json:"-"`
	GroupMembers    datatypes.JSONSlice[GroupMember] `json:"group_members"`
	Status          ProjectStatus                    `gorm:"size:32;not null;default:pending;index" json:"status"`
	ReviewedBy      *uint                            `json:"reviewed_by"`
	ReviewedAt      *time.Time                       `json:"reviewed_at"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt                   `gorm:"index" json:"-"`
}

// IsPending reports whether the project still awaits a supervisor decision.
func (p Project) IsPending() bool {
	return p.Status == ProjectStatusPending
}
