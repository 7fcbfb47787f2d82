// Package testutil provides in-memory repositories for service and handler
// tests.
package testutil

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	teacherRepo "anoa.com/learnhub/internal/modules/teacher/repository"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
)

// DB is the shared backing store so cross-table behaviour (cascades, unique
// emails, orphan lookups) matches the gorm repositories.
type DB struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account
	students map[uuid.UUID]*entity.Student
	teachers map[uuid.UUID]*entity.Teacher

	courses      map[uuid.UUID]*entity.Course
	transactions map[uuid.UUID]*entity.Transaction
	reviews      map[uuid.UUID]*entity.Review
}

func NewDB() *DB {
	return &DB{
		accounts: map[uuid.UUID]*entity.Account{},
		students: map[uuid.UUID]*entity.Student{},
		teachers: map[uuid.UUID]*entity.Teacher{},

		courses:      map[uuid.UUID]*entity.Course{},
		transactions: map[uuid.UUID]*entity.Transaction{},
		reviews:      map[uuid.UUID]*entity.Review{},
	}
}

func (db *DB) Accounts() userRepo.AccountRepository    { return &Accounts{db: db} }
func (db *DB) Students() studentRepo.StudentRepository { return &Students{db: db} }
func (db *DB) Teachers() teacherRepo.TeacherRepository { return &Teachers{db: db} }

// SeedAccount stores a copy of account, assigning an ID when missing.
func (db *DB) SeedAccount(account *entity.Account) *entity.Account {
	db.mu.Lock()
	defer db.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	cp := *account
	db.accounts[account.ID] = &cp
	return account
}

func (db *DB) SeedStudent(s *entity.Student) *entity.Student {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	db.students[s.ID] = &cp
	return s
}

func (db *DB) SeedTeacher(t *entity.Teacher) *entity.Teacher {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	db.teachers[t.ID] = &cp
	return t
}

func (db *DB) emailTaken(email string) bool {
	for _, a := range db.accounts {
		if a.Email == email {
			return true
		}
	}
	return false
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type Accounts struct {
	db *DB
}

func (r *Accounts) Create(_ context.Context, account *entity.Account, profile entity.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	account.Email = entity.NormalizeEmail(account.Email)
	if r.db.emailTaken(account.Email) {
		return gorm.ErrDuplicatedKey
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	cp := *account
	r.db.accounts[account.ID] = &cp

	if profile != nil {
		profile.SetAccountID(account.ID)
		switch p := profile.(type) {
		case *entity.Student:
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			sc := *p
			r.db.students[p.ID] = &sc
		case *entity.Teacher:
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			tc := *p
			r.db.teachers[p.ID] = &tc
		}
	}
	return nil
}

func (r *Accounts) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if a, ok := r.db.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Accounts) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email = entity.NormalizeEmail(email)
	for _, a := range r.db.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Accounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.emailTaken(entity.NormalizeEmail(email)), nil
}

func (r *Accounts) FindAll(_ context.Context, filter userRepo.AccountFilter) ([]entity.Account, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []entity.Account
	for _, a := range r.db.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && a.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" && !strings.Contains(a.Email, strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Accounts) UpdateActive(_ context.Context, id uuid.UUID, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.IsActive = active
	return nil
}

func (r *Accounts) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *Accounts) FindOrphans(_ context.Context, createdBefore time.Time) ([]entity.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	hasProfile := map[uuid.UUID]bool{}
	for _, s := range r.db.students {
		hasProfile[s.AccountID] = true
	}
	for _, t := range r.db.teachers {
		hasProfile[t.AccountID] = true
	}

	var out []entity.Account
	for _, a := range r.db.accounts {
		if a.Role.Moderated() && !hasProfile[a.ID] && a.CreatedAt.Before(createdBefore) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *Accounts) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.accounts, id)
	return nil
}

type Students struct {
	db *DB
}

func (r *Students) withAccount(s *entity.Student) *entity.Student {
	cp := *s
	if a, ok := r.db.accounts[s.AccountID]; ok {
		ac := *a
		cp.Account = &ac
	}
	return &cp
}

func (r *Students) FindByID(_ context.Context, id uuid.UUID) (*entity.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.students[id]; ok {
		return r.withAccount(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Students) FindByAccountID(_ context.Context, accountID uuid.UUID) (*entity.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.students {
		if s.AccountID == accountID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Students) FindAll(_ context.Context, filter studentRepo.StudentFilter) ([]entity.Student, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Student
	for _, s := range r.db.students {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *r.withAccount(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Students) Update(_ context.Context, student *entity.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[student.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.FirstName, s.LastName, s.PhoneNumber = student.FirstName, student.LastName, student.PhoneNumber
	s.DateOfBirth, s.Address = student.DateOfBirth, student.Address
	return nil
}

func (r *Students) UpdateModeration(_ context.Context, id uuid.UUID, m entity.Moderation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Moderation = m
	return nil
}

func (r *Students) DeleteWithAccount(_ context.Context, student *entity.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.students, student.ID)
	delete(r.db.accounts, student.AccountID)
	return nil
}

type Teachers struct {
	db *DB
}

func (r *Teachers) withAccount(t *entity.Teacher) *entity.Teacher {
	cp := *t
	if a, ok := r.db.accounts[t.AccountID]; ok {
		ac := *a
		cp.Account = &ac
	}
	return &cp
}

func (r *Teachers) FindByID(_ context.Context, id uuid.UUID) (*entity.Teacher, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t, ok := r.db.teachers[id]; ok {
		return r.withAccount(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Teachers) FindByAccountID(_ context.Context, accountID uuid.UUID) (*entity.Teacher, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.teachers {
		if t.AccountID == accountID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Teachers) FindAll(_ context.Context, filter teacherRepo.TeacherFilter) ([]entity.Teacher, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Teacher
	for _, t := range r.db.teachers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Specialization != "" && !slices.Contains([]string(t.Specialization), filter.Specialization) {
			continue
		}
		out = append(out, *r.withAccount(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Teachers) Update(_ context.Context, teacher *entity.Teacher) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teachers[teacher.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.FirstName, t.LastName, t.PhoneNumber = teacher.FirstName, teacher.LastName, teacher.PhoneNumber
	t.Bio, t.Specialization, t.Qualifications, t.Experience = teacher.Bio, teacher.Specialization, teacher.Qualifications, teacher.Experience
	return nil
}

func (r *Teachers) UpdateModeration(_ context.Context, id uuid.UUID, m entity.Moderation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teachers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Moderation = m
	return nil
}

func (r *Teachers) DeleteWithAccount(_ context.Context, teacher *entity.Teacher) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.teachers, teacher.ID)
	delete(r.db.accounts, teacher.AccountID)
	return nil
}
