package dto

import (
	"time"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// AdminStudentListRequest defines filters for listing students.
type AdminStudentListRequest struct {
	Page     int
	PageSize int
	Search   string
	Program  string
}

// AdminStudentResponse serializes student data for admin endpoints.
type AdminStudentResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	RegNo      string    `json:"regNo"`
	Program    string    `json:"program"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AdminStudentDetailResponse adds the student's visible proposals.
type AdminStudentDetailResponse struct {
	AdminStudentResponse
	Projects []ProjectResponse `json:"projects"`
}

// AdminStudentListResponse wraps a paginated student response.
type AdminStudentListResponse struct {
	Items      []AdminStudentResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// AdminStudentUpdateRequest captures partial update payloads for students.
type AdminStudentUpdateRequest struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   *string `json:"fullName" validate:"omitempty,min=1,max=255"`
	RegNo      *string `json:"regNo" validate:"omitempty,min=1,max=64"`
	Program    *string `json:"program" validate:"omitempty,max=128"`
	Department *string `json:"department" validate:"omitempty,max=128"`
}

// NewAdminStudentResponse converts a student account into a DTO.
func NewAdminStudentResponse(student models.User) AdminStudentResponse {
	return AdminStudentResponse{
		ID:         student.ID,
		Email:      student.Email,
		FullName:   student.Profile.FullName,
		RegNo:      student.Profile.RegNo,
		Program:    student.Profile.Program,
		Department: student.Profile.Department,
		CreatedAt:  student.CreatedAt,
		UpdatedAt:  student.UpdatedAt,
	}
}

// AdminProjectUpdateRequest is the decoded admin patch document. Ownership
// and assignment are not patchable.
type AdminProjectUpdateRequest struct {
	ProjectTitle *string               `json:"projectTitle" validate:"omitempty,min=3,max=255"`
	Description  *string               `json:"description" validate:"omitempty,max=5000"`
	Proposal     *string               `json:"proposal" validate:"omitempty,max=20000"`
	ProjectType  *string               `json:"projectType" validate:"omitempty,max=64"`
	Program      *string               `json:"program" validate:"omitempty,max=128"`
	GroupMembers *[]GroupMemberPayload `json:"groupMembers" validate:"omitempty,max=20,dive"`
	Status       *string               `json:"status" validate:"omitempty,oneof=pending accepted"`
}

// TotalProjectsResponse is returned by GET /admin/total-projects.
type TotalProjectsResponse struct {
	TotalProjects int64 `json:"totalProjects"`
}

// TotalSupervisorsResponse is returned by GET /admin/total-supervisors.
type TotalSupervisorsResponse struct {
	TotalSupervisors int64 `json:"totalSupervisors"`
}

// TotalStudentsResponse is returned by GET /admin/total-students.
type TotalStudentsResponse struct {
	TotalStudents int64 `json:"totalStudents"`
}

// AdminOverviewResponse aggregates the admin dashboard counters.
type AdminOverviewResponse struct {
	TotalProjects    int64     `json:"totalProjects"`
	PendingProjects  int64     `json:"pendingProjects"`
	AcceptedProjects int64     `json:"acceptedProjects"`
	TotalStudents    int64     `json:"totalStudents"`
	TotalSupervisors int64     `json:"totalSupervisors"`
	GeneratedAt      time.Time `json:"generatedAt"`
	CacheHit         bool      `json:"cacheHit"`
}
