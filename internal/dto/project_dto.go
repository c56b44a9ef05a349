package dto

import (
	"time"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// GroupMemberPayload describes a co-author on a proposal.
type GroupMemberPayload struct {
	Name  string `json:"name" validate:"required,max=255"`
	RegNo string `json:"regNo" validate:"omitempty,max=64"`
}

// ProjectCreateRequest is the body a student submits to open a proposal.
type ProjectCreateRequest struct {
	ProjectTitle string               `json:"projectTitle" validate:"required,min=3,max=255"`
	Description  string               `json:"description" validate:"omitempty,max=5000"`
	Proposal     string               `json:"proposal" validate:"omitempty,max=20000"`
	ProjectType  string               `json:"projectType" validate:"omitempty,max=64"`
	Program      string               `json:"program" validate:"omitempty,max=128"`
	SupervisorID uint                 `json:"supervisor" validate:"required"`
	GroupMembers []GroupMemberPayload `json:"groupMembers" validate:"omitempty,max=20,dive"`
}

// StudentSummary is the owner projection shown on project records.
type StudentSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	RegNo    string `json:"regNo"`
}

// SupervisorSummary is the assignee projection shown on project records.
type SupervisorSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
}

// ProjectResponse is the enriched project record returned to clients.
type ProjectResponse struct {
	ID              uint                 `json:"id"`
	ProjectTitle    string               `json:"projectTitle"`
	Description     string               `json:"description"`
	Proposal        string               `json:"proposal"`
	ProposalFileURL string               `json:"proposalFileUrl,omitempty"`
	ProjectType     string               `json:"projectType"`
	Program         string               `json:"program"`
	Student         StudentSummary       `json:"student"`
	Supervisor      SupervisorSummary    `json:"supervisor"`
	GroupMembers    []GroupMemberPayload `json:"groupMembers"`
	Status          string               `json:"status"`
	ReviewedBy      *uint                `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time           `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// NewProjectResponse converts a model into a DTO. Profiles fall back to the
// foreign keys when the association was not loaded.
func NewProjectResponse(project models.Project) ProjectResponse {
	members := make([]GroupMemberPayload, 0, len(project.GroupMembers))
	for _, member := range project.GroupMembers {
		members = append(members, GroupMemberPayload{Name: member.Name, RegNo: member.RegNo})
	}

	return ProjectResponse{
		ID:              project.ID,
		ProjectTitle:    project.ProjectTitle,
		Description:     project.Description,
		Proposal:        project.Proposal,
		ProposalFileURL: project.ProposalFileURL,
		ProjectType:     project.ProjectType,
		Program:         project.Program,
		Student: StudentSummary{
			ID:       project.StudentID,
			FullName: project.Student.Profile.FullName,
			RegNo:    project.Student.Profile.RegNo,
		},
		Supervisor: SupervisorSummary{
			ID:       project.SupervisorID,
			FullName: project.Supervisor.Profile.FullName,
		},
		GroupMembers: members,
		Status:       string(project.Status),
		ReviewedBy:   project.ReviewedBy,
		ReviewedAt:   project.ReviewedAt,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

// NewProjectResponseSlice converts a slice of models into DTOs.
func NewProjectResponseSlice(projects []models.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, NewProjectResponse(project))
	}

	return responses
}

// ProjectListRequest narrows the supervisor and admin listings.
type ProjectListRequest struct {
	Status       string
	StudentID    uint
	SupervisorID uint
	Search       string
	Page         int
	PageSize     int
}

// ProjectListResponse wraps a paginated project listing.
type ProjectListResponse struct {
	Items      []ProjectResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}
