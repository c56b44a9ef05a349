package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo(users ...models.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: map[uint]models.User{}}
	for _, user := range users {
		if user.ID > repo.nextID {
			repo.nextID = user.ID
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, user := range m.users {
		if user.Email == normalized {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profile.FullName < result[j].Profile.FullName })
	return result, nil
}

// memoryProjectRepo mirrors the conditional-update semantics of the GORM
// repository. Rejected and deleted rows stay in the map but are hidden.
type memoryProjectRepo struct {
	mu       sync.Mutex
	users    *memoryUserRepo
	projects map[uint]models.Project
	hidden   map[uint]bool
	nextID   uint
	// beforeReview runs between the engine's read and the conditional update.
	beforeReview func(id uint)
}

func newMemoryProjectRepo(users *memoryUserRepo) *memoryProjectRepo {
	return &memoryProjectRepo{
		users:    users,
		projects: map[uint]models.Project{},
		hidden:   map[uint]bool{},
	}
}

func (m *memoryProjectRepo) Create(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	project.ID = m.nextID
	project.Status = models.ProjectStatusPending
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	m.projects[project.ID] = *project
	return nil
}

func (m *memoryProjectRepo) enrich(project models.Project) models.Project {
	if m.users != nil {
		if student, err := m.users.GetByID(context.Background(), project.StudentID); err == nil {
			project.Student = student
		}
		if supervisor, err := m.users.GetByID(context.Background(), project.SupervisorID); err == nil {
			project.Supervisor = supervisor
		}
	}
	return project
}

func (m *memoryProjectRepo) GetByID(ctx context.Context, id uint) (models.Project, error) {
	m.mu.Lock()
	project, ok := m.projects[id]
	hidden := m.hidden[id]
	m.mu.Unlock()
	if !ok || hidden {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return m.enrich(project), nil
}

func (m *memoryProjectRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Project, error) {
	projects, _, err := m.List(ctx, repository.ProjectFilter{StudentID: &studentID})
	return projects, err
}

func (m *memoryProjectRepo) ListBySupervisor(ctx context.Context, supervisorID uint, status models.ProjectStatus) ([]models.Project, error) {
	projects, _, err := m.List(ctx, repository.ProjectFilter{SupervisorID: &supervisorID, Status: status})
	return projects, err
}

func (m *memoryProjectRepo) List(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	m.mu.Lock()
	ids := make([]uint, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	matched := make([]models.Project, 0)
	for _, id := range ids {
		project := m.projects[id]
		if m.hidden[id] {
			continue
		}
		if filter.StudentID != nil && project.StudentID != *filter.StudentID {
			continue
		}
		if filter.SupervisorID != nil && project.SupervisorID != *filter.SupervisorID {
			continue
		}
		if filter.Status != "" && project.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(project.ProjectTitle), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, project)
	}
	m.mu.Unlock()

	total := int64(len(matched))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	for i := range matched {
		matched[i] = m.enrich(matched[i])
	}
	return matched, total, nil
}

func (m *memoryProjectRepo) Count(ctx context.Context, filter repository.ProjectFilter) (int64, error) {
	_, total, err := m.List(ctx, filter)
	return total, err
}

func (m *memoryProjectRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Project, error) {
	m.mu.Lock()
	project, ok := m.projects[id]
	if !ok || m.hidden[id] {
		m.mu.Unlock()
		return models.Project{}, gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "project_title":
			project.ProjectTitle = value.(string)
		case "description":
			project.Description = value.(string)
		case "proposal":
			project.Proposal = value.(string)
		case "project_type":
			project.ProjectType = value.(string)
		case "program":
			project.Program = value.(string)
		case "proposal_file_url":
			project.ProposalFileURL = value.(string)
		case "status":
			project.Status = value.(models.ProjectStatus)
		}
	}
	project.UpdatedAt = time.Now()
	m.projects[id] = project
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *memoryProjectRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok || m.hidden[id] {
		return gorm.ErrRecordNotFound
	}
	m.hidden[id] = true
	return nil
}

func (m *memoryProjectRepo) Accept(ctx context.Context, id, supervisorID uint, at time.Time) error {
	return m.review(id, supervisorID, at, false)
}

func (m *memoryProjectRepo) Reject(ctx context.Context, id, supervisorID uint, at time.Time) error {
	return m.review(id, supervisorID, at, true)
}

func (m *memoryProjectRepo) review(id, supervisorID uint, at time.Time, reject bool) error {
	if m.beforeReview != nil {
		m.beforeReview(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok || m.hidden[id] || project.SupervisorID != supervisorID {
		return gorm.ErrRecordNotFound
	}
	if !reject && project.Status != models.ProjectStatusPending {
		return gorm.ErrRecordNotFound
	}
	project.ReviewedBy = &supervisorID
	project.ReviewedAt = &at
	if reject {
		m.hidden[id] = true
	} else {
		project.Status = models.ProjectStatusAccepted
	}
	m.projects[id] = project
	return nil
}

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.ActivityLog, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityID != nil && (entry.EntityID == nil || *entry.EntityID != *filter.EntityID) {
			continue
		}
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		result = append(result, entry)
	}
	return result, int64(len(result)), nil
}

func (m *memoryActivityRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ProjectEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, event ProjectEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}
