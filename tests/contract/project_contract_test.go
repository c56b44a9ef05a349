package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/handler"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/service"
)

type stubProjectService struct {
	project dto.ProjectResponse
	err     error
}

func (s stubProjectService) Create(context.Context, authz.Identity, dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	return s.project, s.err
}

func (s stubProjectService) Get(context.Context, authz.Identity, uint) (dto.ProjectResponse, error) {
	return s.project, s.err
}

func (s stubProjectService) ListRequests(context.Context, authz.Identity, string) ([]dto.ProjectResponse, error) {
	return []dto.ProjectResponse{s.project}, s.err
}

func (s stubProjectService) ListAccepted(context.Context, authz.Identity) ([]dto.ProjectResponse, error) {
	return []dto.ProjectResponse{s.project}, s.err
}

func (s stubProjectService) Accept(context.Context, authz.Identity, uint) (dto.ProjectResponse, error) {
	return s.project, s.err
}

func (s stubProjectService) Reject(context.Context, authz.Identity, uint) error {
	return s.err
}

func (s stubProjectService) UploadProposal(context.Context, authz.Identity, uint, *multipart.FileHeader) (dto.ProjectResponse, error) {
	return s.project, s.err
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func serve(t *testing.T, svc service.ProjectService, role models.Role) *http.Response {
	t.Helper()
	app := fiber.New()
	group := app.Group("/api/projects", func(c *fiber.Ctx) error {
		middleware.SetIdentity(c, authz.Identity{ID: 10, Role: role})
		return c.Next()
	})
	handler.NewProjectHandler(svc, zerolog.Nop()).Register(group)

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/api/projects/requests/1/accept", nil))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) interface{} {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestProjectResponseContract(t *testing.T) {
	schema := compileSchema(t, "project_response.schema.json")

	reviewer := uint(10)
	reviewedAt := time.Now().UTC()
	project := dto.ProjectResponse{
		ID:           1,
		ProjectTitle: "Graph Mining",
		Description:  "Mining citation graphs",
		Student:      dto.StudentSummary{ID: 1, FullName: "Sara Student", RegNo: "CS-001"},
		Supervisor:   dto.SupervisorSummary{ID: 10, FullName: "Victor Supervisor"},
		GroupMembers: []dto.GroupMemberPayload{{Name: "Ana", RegNo: "CS-009"}},
		Status:       string(models.ProjectStatusAccepted),
		ReviewedBy:   &reviewer,
		ReviewedAt:   &reviewedAt,
		CreatedAt:    reviewedAt.Add(-time.Hour),
		UpdatedAt:    reviewedAt,
	}

	resp := serve(t, stubProjectService{project: project}, models.RoleSupervisor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, schema.Validate(decodeBody(t, resp)))
}

func TestErrorResponseContract(t *testing.T) {
	schema := compileSchema(t, "error_response.schema.json")

	cases := []struct {
		name   string
		err    error
		role   models.Role
		status int
	}{
		{name: "conflict", err: service.ErrProjectNotPending, role: models.RoleSupervisor, status: http.StatusConflict},
		{name: "not found", err: service.ErrProjectNotFound, role: models.RoleSupervisor, status: http.StatusNotFound},
		{name: "validation", err: &service.ValidationError{Field: "id", Message: "invalid"}, role: models.RoleSupervisor, status: http.StatusBadRequest},
		{name: "role guard", role: models.RoleStudent, status: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(t, stubProjectService{err: tc.err}, tc.role)
			require.Equal(t, tc.status, resp.StatusCode)
			require.NoError(t, schema.Validate(decodeBody(t, resp)))
		})
	}
}
