package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories for service tests. They mirror the Mongo
// implementations' observable behavior: sentinel errors, sort orders and
// duplicate detection.

// --- users ---

type mockUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return user.ID, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// --- programs ---

type mockProgramRepo struct {
	programs map[primitive.ObjectID]domain.Program
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[primitive.ObjectID]domain.Program)}
}

func (m *mockProgramRepo) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	program.ID = primitive.NewObjectID()
	m.programs[program.ID] = *program
	return program.ID, nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *mockProgramRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	var out []domain.Program
	for _, p := range m.programs {
		if p.CoachID == coachID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProgramRepo) ListOnSale(_ context.Context) ([]domain.Program, error) {
	var out []domain.Program
	for _, p := range m.programs {
		if p.IsPublic && p.IsForSale {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProgramRepo) Update(_ context.Context, program *domain.Program) error {
	if _, ok := m.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	m.programs[program.ID] = *program
	return nil
}

// --- blueprints ---

type mockBlueprintRepo struct {
	blueprints map[primitive.ObjectID]domain.Blueprint
}

func newMockBlueprintRepo() *mockBlueprintRepo {
	return &mockBlueprintRepo{blueprints: make(map[primitive.ObjectID]domain.Blueprint)}
}

func (m *mockBlueprintRepo) InsertMany(_ context.Context, blueprints []domain.Blueprint) error {
	for i := range blueprints {
		for _, existing := range m.blueprints {
			if existing.ProgramID == blueprints[i].ProgramID &&
				existing.PhaseNumber == blueprints[i].PhaseNumber &&
				existing.DayNumber == blueprints[i].DayNumber {
				return repository.ErrDuplicate
			}
		}
		blueprints[i].ID = primitive.NewObjectID()
		if blueprints[i].RoutineBlockIDs == nil {
			blueprints[i].RoutineBlockIDs = []primitive.ObjectID{}
		}
		m.blueprints[blueprints[i].ID] = blueprints[i]
	}
	return nil
}

func (m *mockBlueprintRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Blueprint, error) {
	bp, ok := m.blueprints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &bp, nil
}

func (m *mockBlueprintRepo) GetByProgramID(_ context.Context, programID primitive.ObjectID) ([]domain.Blueprint, error) {
	var out []domain.Blueprint
	for _, bp := range m.blueprints {
		if bp.ProgramID == programID {
			out = append(out, bp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PhaseNumber != out[j].PhaseNumber {
			return out[i].PhaseNumber < out[j].PhaseNumber
		}
		return out[i].DayNumber < out[j].DayNumber
	})
	return out, nil
}

func (m *mockBlueprintRepo) GetByProgramPhaseDay(_ context.Context, programID primitive.ObjectID, phase, day int) (*domain.Blueprint, error) {
	for _, bp := range m.blueprints {
		if bp.ProgramID == programID && bp.PhaseNumber == phase && bp.DayNumber == day {
			found := bp
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockBlueprintRepo) PhaseExists(_ context.Context, programID primitive.ObjectID, phase int) (bool, error) {
	for _, bp := range m.blueprints {
		if bp.ProgramID == programID && bp.PhaseNumber == phase {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBlueprintRepo) MaxDayInPhase(_ context.Context, programID primitive.ObjectID, phase int) (int, int, error) {
	maxDay, count := 0, 0
	for _, bp := range m.blueprints {
		if bp.ProgramID == programID && bp.PhaseNumber == phase {
			count++
			if bp.DayNumber > maxDay {
				maxDay = bp.DayNumber
			}
		}
	}
	return maxDay, count, nil
}

func (m *mockBlueprintRepo) DeleteByPhase(_ context.Context, programID primitive.ObjectID, phase int) (int64, error) {
	var deleted int64
	for id, bp := range m.blueprints {
		if bp.ProgramID == programID && bp.PhaseNumber == phase {
			delete(m.blueprints, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockBlueprintRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.blueprints[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.blueprints, id)
	return nil
}

func (m *mockBlueprintRepo) UpdateMeta(_ context.Context, id primitive.ObjectID, dayTitle, notes *string) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	if dayTitle != nil {
		bp.DayTitle = *dayTitle
	}
	if notes != nil {
		bp.Notes = *notes
	}
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) AppendRoutineBlock(_ context.Context, id, blockID primitive.ObjectID) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range bp.RoutineBlockIDs {
		if existing == blockID {
			return repository.ErrDuplicate
		}
	}
	bp.RoutineBlockIDs = append(bp.RoutineBlockIDs, blockID)
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) RemoveRoutineBlock(_ context.Context, id, blockID primitive.ObjectID) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	kept := bp.RoutineBlockIDs[:0]
	for _, existing := range bp.RoutineBlockIDs {
		if existing != blockID {
			kept = append(kept, existing)
		}
	}
	bp.RoutineBlockIDs = kept
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) SetRoutineBlockOrder(_ context.Context, id primitive.ObjectID, blockIDs []primitive.ObjectID) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	bp.RoutineBlockIDs = blockIDs
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) ClearRoutineBlocks(_ context.Context, id primitive.ObjectID) error {
	return m.SetRoutineBlockOrder(context.Background(), id, []primitive.ObjectID{})
}

func (m *mockBlueprintRepo) AppendSection(_ context.Context, id primitive.ObjectID, section domain.Section) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	bp.Sections = append(bp.Sections, section)
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) UpdateSection(_ context.Context, id primitive.ObjectID, section domain.Section) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	for i, s := range bp.Sections {
		if s.ID == section.ID {
			bp.Sections[i] = section
			m.blueprints[id] = bp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockBlueprintRepo) RemoveSection(_ context.Context, id, sectionID primitive.ObjectID) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	kept := bp.Sections[:0]
	for _, s := range bp.Sections {
		if s.ID != sectionID {
			kept = append(kept, s)
		}
	}
	bp.Sections = kept
	m.blueprints[id] = bp
	return nil
}

func (m *mockBlueprintRepo) SetSections(_ context.Context, id primitive.ObjectID, sections []domain.Section) error {
	bp, ok := m.blueprints[id]
	if !ok {
		return repository.ErrNotFound
	}
	bp.Sections = sections
	m.blueprints[id] = bp
	return nil
}

// --- routine blocks ---

type mockRoutineBlockRepo struct {
	blocks map[primitive.ObjectID]domain.RoutineBlock
}

func newMockRoutineBlockRepo() *mockRoutineBlockRepo {
	return &mockRoutineBlockRepo{blocks: make(map[primitive.ObjectID]domain.RoutineBlock)}
}

func (m *mockRoutineBlockRepo) Create(_ context.Context, block *domain.RoutineBlock) (primitive.ObjectID, error) {
	block.ID = primitive.NewObjectID()
	if block.Items == nil {
		block.Items = []domain.RoutineItem{}
	}
	m.blocks[block.ID] = *block
	return block.ID, nil
}

func (m *mockRoutineBlockRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.RoutineBlock, error) {
	b, ok := m.blocks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *mockRoutineBlockRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.RoutineBlock, error) {
	var out []domain.RoutineBlock
	for _, id := range ids {
		if b, ok := m.blocks[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockRoutineBlockRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.RoutineBlock, error) {
	var out []domain.RoutineBlock
	for _, b := range m.blocks {
		if b.CoachID == coachID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockRoutineBlockRepo) Update(_ context.Context, block *domain.RoutineBlock) error {
	if _, ok := m.blocks[block.ID]; !ok {
		return repository.ErrNotFound
	}
	m.blocks[block.ID] = *block
	return nil
}

func (m *mockRoutineBlockRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	b, ok := m.blocks[id]
	if !ok || b.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(m.blocks, id)
	return nil
}

func (m *mockRoutineBlockRepo) AppendItem(_ context.Context, id primitive.ObjectID, item domain.RoutineItem) error {
	b, ok := m.blocks[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Items = append(b.Items, item)
	m.blocks[id] = b
	return nil
}

func (m *mockRoutineBlockRepo) RemoveItem(_ context.Context, id, itemID primitive.ObjectID) error {
	b, ok := m.blocks[id]
	if !ok {
		return repository.ErrNotFound
	}
	kept := b.Items[:0]
	for _, item := range b.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	b.Items = kept
	m.blocks[id] = b
	return nil
}

func (m *mockRoutineBlockRepo) SetItems(_ context.Context, id primitive.ObjectID, items []domain.RoutineItem) error {
	b, ok := m.blocks[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Items = items
	m.blocks[id] = b
	return nil
}

// --- exercises ---

type mockExerciseRepo struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newMockExerciseRepo() *mockExerciseRepo {
	return &mockExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (m *mockExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	m.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (m *mockExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := m.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *mockExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, id := range ids {
		if e, ok := m.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExerciseRepo) Search(_ context.Context, filter repository.ExerciseSearchFilter) ([]domain.Exercise, int64, error) {
	var matched []domain.Exercise
	for _, e := range m.exercises {
		if e.CoachID != filter.CoachID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if len(filter.Categories) > 0 && !containsString(filter.Categories, e.Category) {
			continue
		}
		if len(filter.ValueTypes) > 0 && !containsValueType(filter.ValueTypes, e.ValueType) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return []domain.Exercise{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *mockExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	if _, ok := m.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	m.exercises[exercise.ID] = *exercise
	return nil
}

func (m *mockExerciseRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	e, ok := m.exercises[id]
	if !ok || e.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(m.exercises, id)
	return nil
}

func (m *mockExerciseRepo) SetMediaKey(_ context.Context, id primitive.ObjectID, mediaKey string) error {
	e, ok := m.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.MediaKey = mediaKey
	m.exercises[id] = e
	return nil
}

// --- enrollments ---

type mockEnrollmentRepo struct {
	enrollments map[primitive.ObjectID]domain.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[primitive.ObjectID]domain.Enrollment)}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	for _, e := range m.enrollments {
		if e.UserID == enrollment.UserID && e.ProgramID == enrollment.ProgramID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	enrollment.ID = primitive.NewObjectID()
	m.enrollments[enrollment.ID] = *enrollment
	return enrollment.ID, nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *mockEnrollmentRepo) GetByProgramID(_ context.Context, programID primitive.ObjectID) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if e.ProgramID == programID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) GetByUserAndProgram(_ context.Context, userID, programID primitive.ObjectID) (*domain.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.UserID == userID && e.ProgramID == programID {
			found := e
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockEnrollmentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.EnrollmentStatus) error {
	e, ok := m.enrollments[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = status
	m.enrollments[id] = e
	return nil
}

func (m *mockEnrollmentRepo) SetStartDate(_ context.Context, id primitive.ObjectID, date *time.Time) error {
	e, ok := m.enrollments[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.StartDate = date
	m.enrollments[id] = e
	return nil
}

func (m *mockEnrollmentRepo) SetEndDate(_ context.Context, id primitive.ObjectID, date *time.Time) error {
	e, ok := m.enrollments[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.EndDate = date
	m.enrollments[id] = e
	return nil
}

func (m *mockEnrollmentRepo) CountByStatus(_ context.Context, programID primitive.ObjectID) (map[domain.EnrollmentStatus]int64, error) {
	counts := make(map[domain.EnrollmentStatus]int64)
	for _, e := range m.enrollments {
		if e.ProgramID == programID {
			counts[e.Status]++
		}
	}
	return counts, nil
}

func (m *mockEnrollmentRepo) GetExpiring(_ context.Context, programID primitive.ObjectID, from, to time.Time) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if e.ProgramID != programID || e.EndDate == nil {
			continue
		}
		if !e.EndDate.Before(from) && !e.EndDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	var expired int64
	for id, e := range m.enrollments {
		if e.Status == domain.EnrollmentActive && e.EndDate != nil && e.EndDate.Before(now) {
			e.Status = domain.EnrollmentExpired
			m.enrollments[id] = e
			expired++
		}
	}
	return expired, nil
}

// --- workout logs ---

type mockWorkoutLogRepo struct {
	logs map[primitive.ObjectID]domain.WorkoutLog
}

func newMockWorkoutLogRepo() *mockWorkoutLogRepo {
	return &mockWorkoutLogRepo{logs: make(map[primitive.ObjectID]domain.WorkoutLog)}
}

func (m *mockWorkoutLogRepo) Create(_ context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()
	m.logs[log.ID] = *log
	return log.ID, nil
}

func (m *mockWorkoutLogRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (m *mockWorkoutLogRepo) GetByUserID(_ context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var out []domain.WorkoutLog
	for _, l := range m.logs {
		if l.UserID != userID {
			continue
		}
		if exerciseID != nil && (l.ExerciseID == nil || *l.ExerciseID != *exerciseID) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.Before(out[j].LogDate) })
	return out, nil
}

func (m *mockWorkoutLogRepo) GetByBlueprintID(_ context.Context, blueprintID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var out []domain.WorkoutLog
	for _, l := range m.logs {
		if l.BlueprintID != nil && *l.BlueprintID == blueprintID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockWorkoutLogRepo) CountByBlueprintIDs(_ context.Context, blueprintIDs []primitive.ObjectID) (int64, int64, error) {
	idSet := make(map[primitive.ObjectID]bool, len(blueprintIDs))
	for _, id := range blueprintIDs {
		idSet[id] = true
	}
	var total, checked int64
	for _, l := range m.logs {
		if l.BlueprintID != nil && idSet[*l.BlueprintID] {
			total++
			if l.IsCheckedByCoach {
				checked++
			}
		}
	}
	return total, checked, nil
}

func (m *mockWorkoutLogRepo) Update(_ context.Context, log *domain.WorkoutLog) error {
	existing, ok := m.logs[log.ID]
	if !ok {
		return repository.ErrNotFound
	}
	log.CreatedAt = existing.CreatedAt
	m.logs[log.ID] = *log
	return nil
}

func (m *mockWorkoutLogRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	l, ok := m.logs[id]
	if !ok || l.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *mockWorkoutLogRepo) SetCoachComment(_ context.Context, id primitive.ObjectID, comment string) error {
	l, ok := m.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.CoachComment = comment
	m.logs[id] = l
	return nil
}

func (m *mockWorkoutLogRepo) SetCheckFlag(_ context.Context, id primitive.ObjectID, checked bool) error {
	l, ok := m.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.IsCheckedByCoach = checked
	m.logs[id] = l
	return nil
}

// --- small helpers ---

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsValueType(values []domain.WorkoutValueType, v domain.WorkoutValueType) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
