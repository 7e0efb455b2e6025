package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type fakeDepartments struct {
	codes []string
	err   error
}

func (f *fakeDepartments) List(ctx context.Context) ([]models.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Department, 0, len(f.codes))
	for _, code := range f.codes {
		out = append(out, models.Department{Code: code, Name: "Department of " + code})
	}
	return out, nil
}

func (f *fakeDepartments) Exists(ctx context.Context, code string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, c := range f.codes {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeAssignments struct {
	rows   []models.ClassRepAssignment
	nextID int64
	err    error
}

func (f *fakeAssignments) ListByUsername(ctx context.Context, username string) ([]models.ClassRepAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ClassRepAssignment
	for _, a := range f.rows {
		if a.Username == username {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignments) Insert(ctx context.Context, username, className, department string) (*models.AssignmentResult, error) {
	for _, a := range f.rows {
		if a.Username == username && a.ClassName == className && a.DepartmentCode == department {
			return &models.AssignmentResult{Outcome: models.OutcomeAlreadyExists, Assignment: a}, nil
		}
	}
	f.nextID++
	a := models.ClassRepAssignment{ID: f.nextID, Username: username, ClassName: className, DepartmentCode: department, AssignedAt: time.Now()}
	f.rows = append(f.rows, a)
	return &models.AssignmentResult{Outcome: models.OutcomeCreated, Assignment: a}, nil
}

func (f *fakeAssignments) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.ClassRepAssignment, error) {
	var out []models.ClassRepAssignment
	for _, a := range f.rows {
		if filter.Department != "" && a.DepartmentCode != filter.Department {
			continue
		}
		if filter.Username != "" && a.Username != filter.Username {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssignments) FindByID(ctx context.Context, id int64) (*models.ClassRepAssignment, error) {
	for _, a := range f.rows {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignments) Delete(ctx context.Context, id int64) error {
	for i, a := range f.rows {
		if a.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeUsers struct {
	rows   map[int64]*models.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: make(map[int64]*models.User)}
}

func (f *fakeUsers) add(username string, role models.UserRole, department string, passwordHash string) *models.User {
	f.nextID++
	u := &models.User{ID: f.nextID, Username: username, Role: role, PasswordHash: passwordHash}
	if department != "" {
		d := department
		u.DepartmentCode = &d
	}
	f.rows[u.ID] = u
	return u
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.rows {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.rows[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.rows {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Department != "" && u.Department() != filter.Department {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsers) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	n := 0
	for _, u := range f.rows {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if _, err := f.FindByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("create user: %w", repository.ErrUniqueViolation)
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.rows[user.ID] = &stored
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeSessions struct {
	rows         map[string]*models.UserSession
	revokedUsers []int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: make(map[string]*models.UserSession)}
}

func (f *fakeSessions) Create(ctx context.Context, session *models.UserSession) error {
	stored := *session
	f.rows[session.ID] = &stored
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id string) (*models.UserSession, error) {
	if s, ok := f.rows[id]; ok {
		found := *s
		return &found, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessions) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	if s, ok := f.rows[id]; ok && s.RevokedAt == nil {
		at := revokedAt
		s.RevokedAt = &at
	}
	return nil
}

func (f *fakeSessions) RevokeByUser(ctx context.Context, userID int64, revokedAt time.Time) error {
	f.revokedUsers = append(f.revokedUsers, userID)
	for _, s := range f.rows {
		if s.UserID == userID && s.RevokedAt == nil {
			at := revokedAt
			s.RevokedAt = &at
		}
	}
	return nil
}

type fakeEntities struct {
	rows      []models.Entity
	nextID    int64
	insertErr map[string]error
}

func newFakeEntities() *fakeEntities {
	return &fakeEntities{insertErr: make(map[string]error)}
}

func (f *fakeEntities) seed(kind models.EntityKind, name, department string) models.Entity {
	result, _ := f.Insert(context.Background(), kind, name, department)
	return result.Entity
}

func (f *fakeEntities) Insert(ctx context.Context, kind models.EntityKind, name, department string) (*models.EntityResult, error) {
	if err, ok := f.insertErr[name]; ok {
		return nil, err
	}
	for _, e := range f.rows {
		if e.Kind == kind && e.Name == name && e.DepartmentCode == department {
			return &models.EntityResult{Outcome: models.OutcomeAlreadyExists, Entity: e}, nil
		}
	}
	f.nextID++
	e := models.Entity{ID: f.nextID, Kind: kind, Name: name, DepartmentCode: department, CreatedAt: time.Now()}
	f.rows = append(f.rows, e)
	return &models.EntityResult{Outcome: models.OutcomeCreated, Entity: e}, nil
}

func (f *fakeEntities) List(ctx context.Context, kind models.EntityKind, department string) ([]models.Entity, error) {
	var out []models.Entity
	for _, e := range f.rows {
		if e.Kind != kind || (department != "" && e.DepartmentCode != department) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEntities) FindByID(ctx context.Context, kind models.EntityKind, id int64) (*models.Entity, error) {
	for _, e := range f.rows {
		if e.Kind == kind && e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEntities) Delete(ctx context.Context, kind models.EntityKind, id int64) error {
	for i, e := range f.rows {
		if e.Kind == kind && e.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeEntities) Exists(ctx context.Context, kind models.EntityKind, name, department string) (bool, error) {
	for _, e := range f.rows {
		if e.Kind == kind && e.Name == name && e.DepartmentCode == department {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntities) Names(ctx context.Context, kind models.EntityKind, department string) ([]string, error) {
	var names []string
	for _, e := range f.rows {
		if e.Kind == kind && e.DepartmentCode == department {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type fakeLessons struct {
	rows      []models.LessonAttendanceRecord
	nextID    int64
	createErr error
	queryErr  error
	queries   int
}

func (f *fakeLessons) add(date string, class, unit, trainer, slot string, status models.LessonStatus, reason string, department string) {
	day, _ := time.Parse(models.DateLayout, date)
	record := &models.LessonAttendanceRecord{
		LessonDate:     day,
		ClassName:      class,
		UnitName:       unit,
		TrainerName:    trainer,
		TimeSlot:       slot,
		Status:         status,
		ReportedBy:     "seed",
		DepartmentCode: department,
	}
	if reason != "" {
		record.Reason = &reason
	}
	_ = f.Create(context.Background(), record)
}

func (f *fakeLessons) Create(ctx context.Context, record *models.LessonAttendanceRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.LessonDate.Equal(record.LessonDate) && r.ClassName == record.ClassName && r.UnitName == record.UnitName &&
			r.TrainerName == record.TrainerName && r.TimeSlot == record.TimeSlot {
			return fmt.Errorf("create lesson report: %w", repository.ErrUniqueViolation)
		}
	}
	f.nextID++
	record.ID = f.nextID
	record.CreatedAt = time.Now()
	f.rows = append(f.rows, *record)
	return nil
}

func (f *fakeLessons) List(ctx context.Context, filter models.ReportFilter) ([]models.LessonAttendanceRecord, int, error) {
	var out []models.LessonAttendanceRecord
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if filter.Department != "" && r.DepartmentCode != filter.Department {
			continue
		}
		if filter.ReportedBy != "" && r.ReportedBy != filter.ReportedBy {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeLessons) DeleteByIDs(ctx context.Context, ids []int64, guard func([]models.LessonAttendanceRecord) error) (int, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var locked []models.LessonAttendanceRecord
	for _, r := range f.rows {
		if wanted[r.ID] {
			locked = append(locked, r)
		}
	}
	if err := guard(locked); err != nil {
		return 0, err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !wanted[r.ID] {
			kept = append(kept, r)
		}
	}
	deleted := len(f.rows) - len(kept)
	f.rows = kept
	return deleted, nil
}

func (f *fakeLessons) Records(ctx context.Context, filter models.AttendanceFilter) ([]models.LessonAttendanceRecord, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	in := func(values []string, v string) bool {
		if len(values) == 0 {
			return true
		}
		for _, x := range values {
			if x == v {
				return true
			}
		}
		return false
	}
	var out []models.LessonAttendanceRecord
	for _, r := range f.rows {
		if filter.Department != "" && r.DepartmentCode != filter.Department {
			continue
		}
		if !filter.Range.Contains(r.LessonDate) {
			continue
		}
		if !in(filter.Trainers, r.TrainerName) || !in(filter.Units, r.UnitName) || !in(filter.Classes, r.ClassName) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

// world wires the services over in-memory fakes seeded with the ICT and ELEC departments.
type world struct {
	departments *fakeDepartments
	assignments *fakeAssignments
	users       *fakeUsers
	sessions    *fakeSessions
	entities    *fakeEntities
	lessons     *fakeLessons
	cache       *fakeCache

	access    *AccessService
	metrics   *MetricsService
	analytics *AnalyticsService
	entitySvc *EntityService
	reports   *ReportService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		departments: &fakeDepartments{codes: []string{"ICT", "ELEC"}},
		assignments: &fakeAssignments{},
		users:       newFakeUsers(),
		sessions:    newFakeSessions(),
		entities:    newFakeEntities(),
		lessons:     &fakeLessons{},
		cache:       newFakeCache(),
		metrics:     NewMetricsService(),
	}
	w.access = NewAccessService(w.assignments, w.departments, nil)
	cache := NewCacheService(w.cache, w.metrics, time.Minute, nil, true)
	w.analytics = NewAnalyticsService(w.lessons, w.access, cache, w.metrics, nil)
	w.entitySvc = NewEntityService(w.entities, w.access, nil, nil)
	w.reports = NewReportService(w.lessons, w.entities, w.access, w.analytics, w.metrics, nil, nil)
	return w
}

func (w *world) userSvc() *UserService {
	return NewUserService(w.users, w.sessions, w.access, nil, nil)
}

func (w *world) assignmentSvc() *AssignmentService {
	return NewAssignmentService(w.assignments, w.users, w.entities, w.access, nil, nil)
}

func sessionFor(u *models.User) *models.Session {
	return &models.Session{ID: fmt.Sprintf("session-%d", u.ID), UserID: u.ID, Username: u.Username, Role: u.Role, Department: u.Department()}
}

func errorCode(err error) string {
	if appErr := appErrors.FromError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}
