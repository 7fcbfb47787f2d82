package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	reviewRepo "anoa.com/learnhub/internal/modules/review/repository"
	transactionRepo "anoa.com/learnhub/internal/modules/transaction/repository"
)

func (db *DB) Courses() courseRepo.CourseRepository                { return &Courses{db: db} }
func (db *DB) Transactions() transactionRepo.TransactionRepository { return &Transactions{db: db} }
func (db *DB) Reviews() reviewRepo.ReviewRepository                { return &Reviews{db: db} }

func (db *DB) SeedCourse(c *entity.Course) *entity.Course {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	db.courses[c.ID] = &cp
	return c
}

func (db *DB) SeedTransaction(t *entity.Transaction) *entity.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	db.transactions[t.ID] = &cp
	return t
}

type Courses struct {
	db *DB
}

func (r *Courses) Create(_ context.Context, course *entity.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if course.Status == "" {
		course.Status = entity.StatusPending
	}
	course.CreatedAt = time.Now()
	cp := *course
	r.db.courses[course.ID] = &cp
	return nil
}

func (r *Courses) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Courses) FindAll(_ context.Context, filter courseRepo.CourseFilter) ([]entity.Course, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Course
	for _, c := range r.db.courses {
		if filter.Status != "" && c.Status != filter.Status {
			if filter.OrTeacherID == nil || *filter.OrTeacherID != c.TeacherID {
				continue
			}
		}
		if filter.TeacherID != nil && *filter.TeacherID != c.TeacherID {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Courses) Update(_ context.Context, course *entity.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[course.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	moderation, teacherID := c.Moderation, c.TeacherID
	*c = *course
	c.Moderation, c.TeacherID = moderation, teacherID
	return nil
}

func (r *Courses) UpdateModeration(_ context.Context, id uuid.UUID, m entity.Moderation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Moderation = m
	return nil
}

func (r *Courses) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.courses, id)
	for rid, rv := range r.db.reviews {
		if rv.CourseID == id {
			delete(r.db.reviews, rid)
		}
	}
	return nil
}

type Transactions struct {
	db *DB
}

func (r *Transactions) Create(_ context.Context, tx *entity.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Code == "" {
		code, err := entity.NewTransactionCode(time.Now())
		if err != nil {
			return err
		}
		tx.Code = code
	}
	if tx.Status == "" {
		tx.Status = entity.StatusPending
	}
	if tx.Currency == "" {
		tx.Currency = entity.DefaultCurrency
	}
	tx.CreatedAt = time.Now()
	cp := *tx
	r.db.transactions[tx.ID] = &cp
	return nil
}

func (r *Transactions) FindByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.transactions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *Transactions) FindAll(_ context.Context, filter transactionRepo.TransactionFilter) ([]entity.Transaction, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Transaction
	for _, t := range r.db.transactions {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AccountID != nil && *filter.AccountID != t.AccountID {
			continue
		}
		if filter.TransactionType != "" && t.TransactionType != filter.TransactionType {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Transactions) UpdateStatus(_ context.Context, tx *entity.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.transactions[tx.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Moderation, t.CompletedAt = tx.Moderation, tx.CompletedAt
	return nil
}

type Reviews struct {
	db *DB
}

func (r *Reviews) Create(_ context.Context, review *entity.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.reviews {
		if existing.StudentID == review.StudentID && existing.CourseID == review.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.Status == "" {
		review.Status = entity.StatusApproved
		now := time.Now()
		review.VerifiedAt = &now
	}
	review.CreatedAt = time.Now()
	cp := *review
	r.db.reviews[review.ID] = &cp
	return nil
}

func (r *Reviews) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rv, ok := r.db.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *Reviews) FindAll(_ context.Context, filter reviewRepo.ReviewFilter) ([]entity.Review, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Review
	for _, rv := range r.db.reviews {
		if filter.CourseID != nil && *filter.CourseID != rv.CourseID {
			continue
		}
		out = append(out, *rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return window(out, filter.Limit, filter.Offset), int64(len(out)), nil
}

func (r *Reviews) Update(_ context.Context, review *entity.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rv, ok := r.db.reviews[review.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rv.Rating, rv.Comment = review.Rating, review.Comment
	return nil
}

func (r *Reviews) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.reviews, id)
	return nil
}
