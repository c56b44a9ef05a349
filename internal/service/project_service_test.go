package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
)

const (
	studentS    uint = 1
	studentT    uint = 2
	supervisorV uint = 10
	supervisorW uint = 11
	adminA      uint = 20
)

type projectFixture struct {
	svc       ProjectService
	projects  *memoryProjectRepo
	activity  *memoryActivityRepo
	publisher *recordingPublisher
	storage   *storageStub
}

func newProjectFixture(t *testing.T) projectFixture {
	t.Helper()
	users := newMemoryUserRepo(
		models.User{ID: studentS, Email: "s@campus.test", Role: models.RoleStudent, Profile: models.UserProfile{FullName: "Sara Student", RegNo: "R-1"}},
		models.User{ID: studentT, Email: "t@campus.test", Role: models.RoleStudent, Profile: models.UserProfile{FullName: "Tom Student", RegNo: "R-2"}},
		models.User{ID: supervisorV, Email: "v@campus.test", Role: models.RoleSupervisor, Profile: models.UserProfile{FullName: "Victor Supervisor"}},
		models.User{ID: supervisorW, Email: "w@campus.test", Role: models.RoleSupervisor, Profile: models.UserProfile{FullName: "Wendy Supervisor"}},
		models.User{ID: adminA, Email: "a@campus.test", Role: models.RoleAdmin, Profile: models.UserProfile{FullName: "Ada Admin"}},
	)
	projects := newMemoryProjectRepo(users)
	activityRepo := &memoryActivityRepo{}
	publisher := &recordingPublisher{}
	storage := &storageStub{}

	svc := NewProjectService(
		projects,
		users,
		validator.New(validator.WithRequiredStructEnabled()),
		NewActivityService(activityRepo, testLogger()),
		testLogger(),
		WithProjectEvents(publisher),
		WithProposalStorage(storage, 1024),
	)

	return projectFixture{svc: svc, projects: projects, activity: activityRepo, publisher: publisher, storage: storage}
}

func asStudent(id uint) authz.Identity    { return authz.Identity{ID: id, Role: models.RoleStudent} }
func asSupervisor(id uint) authz.Identity { return authz.Identity{ID: id, Role: models.RoleSupervisor} }

func createThesis(t *testing.T, f projectFixture, owner, assignee uint, title string) dto.ProjectResponse {
	t.Helper()
	project, err := f.svc.Create(context.Background(), asStudent(owner), dto.ProjectCreateRequest{
		ProjectTitle: title,
		Description:  "A study of " + title,
		SupervisorID: assignee,
		GroupMembers: []dto.GroupMemberPayload{{Name: "Ana", RegNo: "R-9"}},
	})
	require.NoError(t, err)
	return project
}

func TestProjectServiceCreateListsPendingForOwner(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	created := createThesis(t, f, studentS, supervisorV, "Thesis A")
	require.Equal(t, string(models.ProjectStatusPending), created.Status)
	require.Equal(t, "Sara Student", created.Student.FullName)
	require.Equal(t, "R-1", created.Student.RegNo)
	require.Equal(t, "Victor Supervisor", created.Supervisor.FullName)

	owned, err := f.svc.ListRequests(ctx, asStudent(studentS), "")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, "Thesis A", owned[0].ProjectTitle)
	require.Equal(t, string(models.ProjectStatusPending), owned[0].Status)

	others, err := f.svc.ListRequests(ctx, asStudent(studentT), "")
	require.NoError(t, err)
	require.Empty(t, others)

	require.Equal(t, []string{EventProjectCreated}, f.publisher.types())
	require.Equal(t, []string{ActionProjectCreated}, f.activity.actions())
}

func TestProjectServiceCreateRequiresStudent(t *testing.T) {
	f := newProjectFixture(t)
	payload := dto.ProjectCreateRequest{ProjectTitle: "Thesis A", SupervisorID: supervisorV}

	_, err := f.svc.Create(context.Background(), asSupervisor(supervisorV), payload)
	require.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.svc.Create(context.Background(), authz.Identity{}, payload)
	require.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestProjectServiceCreateValidatesSupervisor(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	var validationErr *ValidationError
	_, err := f.svc.Create(ctx, asStudent(studentS), dto.ProjectCreateRequest{ProjectTitle: "Thesis A", SupervisorID: 999})
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "supervisor", validationErr.Field)

	_, err = f.svc.Create(ctx, asStudent(studentS), dto.ProjectCreateRequest{ProjectTitle: "Thesis A", SupervisorID: studentT})
	require.ErrorAs(t, err, &validationErr)

	_, err = f.svc.Create(ctx, asStudent(studentS), dto.ProjectCreateRequest{SupervisorID: supervisorV})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
}

func TestProjectServiceCreateRequiresLiveStudentAccount(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	payload := dto.ProjectCreateRequest{ProjectTitle: "Thesis A", SupervisorID: supervisorV}

	var validationErr *ValidationError
	_, err := f.svc.Create(ctx, asStudent(99), payload)
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "student", validationErr.Field)

	_, err = f.svc.Create(ctx, asStudent(supervisorW), payload)
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "student", validationErr.Field)

	projects, err := f.svc.ListRequests(ctx, asSupervisor(supervisorV), "")
	require.NoError(t, err)
	require.Empty(t, projects)
	require.Empty(t, f.publisher.types())
}

func TestProjectServiceCreateSanitisesText(t *testing.T) {
	f := newProjectFixture(t)

	created, err := f.svc.Create(context.Background(), asStudent(studentS), dto.ProjectCreateRequest{
		ProjectTitle: "Thesis <script>alert(1)</script>A",
		Description:  "<b>bold</b> claim",
		SupervisorID: supervisorV,
	})
	require.NoError(t, err)
	require.Equal(t, "Thesis A", created.ProjectTitle)
	require.Equal(t, "bold claim", created.Description)
}

func TestProjectServiceAcceptMovesBetweenViews(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	accepted, err := f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.ProjectStatusAccepted), accepted.Status)
	require.NotNil(t, accepted.ReviewedBy)
	require.Equal(t, supervisorV, *accepted.ReviewedBy)

	acceptedView, err := f.svc.ListRequests(ctx, asSupervisor(supervisorV), "accepted")
	require.NoError(t, err)
	require.Len(t, acceptedView, 1)
	require.Equal(t, created.ID, acceptedView[0].ID)

	pendingView, err := f.svc.ListRequests(ctx, asSupervisor(supervisorV), "pending")
	require.NoError(t, err)
	require.Empty(t, pendingView)

	acceptedList, err := f.svc.ListAccepted(ctx, asSupervisor(supervisorV))
	require.NoError(t, err)
	require.Len(t, acceptedList, 1)

	require.Equal(t, []string{EventProjectCreated, EventProjectAccepted}, f.publisher.types())
}

func TestProjectServiceReacceptConflicts(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	_, err := f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.ErrorIs(t, err, ErrProjectNotPending)

	stored, err := f.svc.Get(ctx, asStudent(studentS), created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.ProjectStatusAccepted), stored.Status)
}

func TestProjectServiceRejectAppliesToAcceptedProjects(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	_, err := f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Reject(ctx, asSupervisor(supervisorW), created.ID), authz.ErrForbidden)
	require.NoError(t, f.svc.Reject(ctx, asSupervisor(supervisorV), created.ID))

	_, err = f.svc.Get(ctx, asStudent(studentS), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
	accepted, err := f.svc.ListAccepted(ctx, asSupervisor(supervisorV))
	require.NoError(t, err)
	require.Empty(t, accepted)
}

func TestProjectServiceRejectRemovesFromEveryView(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	require.NoError(t, f.svc.Reject(ctx, asSupervisor(supervisorV), created.ID))

	_, err := f.svc.Get(ctx, asStudent(studentS), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
	_, err = f.svc.Get(ctx, asSupervisor(supervisorV), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	owned, err := f.svc.ListRequests(ctx, asStudent(studentS), "")
	require.NoError(t, err)
	require.Empty(t, owned)

	_, err = f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
	require.ErrorIs(t, f.svc.Reject(ctx, asSupervisor(supervisorV), created.ID), ErrProjectNotFound)

	require.Contains(t, f.activity.actions(), ActionProjectRejected)
	require.Contains(t, f.publisher.types(), EventProjectRejected)
}

func TestProjectServiceStudentCannotReview(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	_, err := f.svc.Accept(ctx, asStudent(studentS), created.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.ErrorIs(t, f.svc.Reject(ctx, asStudent(studentS), created.ID), authz.ErrForbidden)

	stored, err := f.svc.Get(ctx, asStudent(studentS), created.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.ProjectStatusPending), stored.Status)
}

func TestProjectServiceUnassignedSupervisorIsForbidden(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	theirs := createThesis(t, f, studentT, supervisorW, "Thesis W")

	_, err := f.svc.Accept(ctx, asSupervisor(supervisorV), theirs.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.ErrorIs(t, f.svc.Reject(ctx, asSupervisor(supervisorV), theirs.ID), authz.ErrForbidden)

	_, err = f.svc.Get(ctx, asSupervisor(supervisorV), theirs.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)

	stored, err := f.svc.Get(ctx, asSupervisor(supervisorW), theirs.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.ProjectStatusPending), stored.Status)
	require.Nil(t, stored.ReviewedBy)
}

func TestProjectServiceGetEnforcesOwnership(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	_, err := f.svc.Get(ctx, asStudent(studentT), created.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.svc.Get(ctx, authz.Identity{ID: adminA, Role: models.RoleAdmin}, created.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.svc.Get(ctx, asStudent(studentS), 999)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectServiceListRejectsUnknownStatus(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.svc.ListRequests(context.Background(), asSupervisor(supervisorV), "archived")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = f.svc.ListAccepted(context.Background(), asStudent(studentS))
	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestProjectServiceLostReviewReportsWinner(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	removed := createThesis(t, f, studentS, supervisorV, "Thesis A")
	accepted := createThesis(t, f, studentT, supervisorV, "Thesis B")

	f.projects.beforeReview = func(id uint) {
		f.projects.beforeReview = nil
		require.NoError(t, f.projects.Reject(ctx, id, supervisorV, time.Now()))
	}
	_, err := f.svc.Accept(ctx, asSupervisor(supervisorV), removed.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	f.projects.beforeReview = func(id uint) {
		f.projects.beforeReview = nil
		require.NoError(t, f.projects.Accept(ctx, id, supervisorV, time.Now()))
	}
	_, err = f.svc.Accept(ctx, asSupervisor(supervisorV), accepted.ID)
	require.ErrorIs(t, err, ErrProjectNotPending)

	f.projects.beforeReview = func(id uint) {
		f.projects.beforeReview = nil
		require.NoError(t, f.projects.Reject(ctx, id, supervisorV, time.Now()))
	}
	err = f.svc.Reject(ctx, asSupervisor(supervisorV), accepted.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectServiceConcurrentReviewEndsRemoved(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(reject bool) {
			defer wg.Done()
			var err error
			if reject {
				err = f.svc.Reject(ctx, asSupervisor(supervisorV), created.ID)
			} else {
				_, err = f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
			}
			if err == nil {
				mu.Lock()
				if reject {
					rejected++
				} else {
					accepted++
				}
				mu.Unlock()
				return
			}
			if err != ErrProjectNotFound && err != ErrProjectNotPending {
				t.Errorf("unexpected error: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	require.Equal(t, 1, rejected)
	require.LessOrEqual(t, accepted, 1)
	_, err := f.svc.Get(ctx, asStudent(studentS), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectServiceUploadProposal(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	updated, err := f.svc.UploadProposal(ctx, asStudent(studentS), created.ID, buildFileHeader(t, "thesis-a.pdf", pdf))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/thesis-a.pdf", updated.ProposalFileURL)
	require.Equal(t, pdf, f.storage.uploaded.Bytes())
	require.Contains(t, f.activity.actions(), ActionProposalUploaded)
}

func TestProjectServiceUploadProposalRules(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := createThesis(t, f, studentS, supervisorV, "Thesis A")
	text := buildFileHeader(t, "notes.txt", []byte("chapter outline"))

	_, err := f.svc.UploadProposal(ctx, asStudent(studentT), created.ID, text)
	require.ErrorIs(t, err, authz.ErrForbidden)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	_, err = f.svc.UploadProposal(ctx, asStudent(studentS), created.ID, buildFileHeader(t, "cover.pdf", png))
	require.ErrorIs(t, err, ErrProposalTypeNotAllowed)

	_, err = f.svc.UploadProposal(ctx, asStudent(studentS), created.ID, buildFileHeader(t, "big.txt", bytes.Repeat([]byte("a"), 2048)))
	require.ErrorIs(t, err, ErrProposalTooLarge)

	_, err = f.svc.Accept(ctx, asSupervisor(supervisorV), created.ID)
	require.NoError(t, err)
	_, err = f.svc.UploadProposal(ctx, asStudent(studentS), created.ID, text)
	require.ErrorIs(t, err, ErrProjectNotPending)
}

type storageStub struct {
	uploaded bytes.Buffer
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
