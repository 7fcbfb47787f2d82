package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/review/dto"
	"anoa.com/learnhub/internal/modules/review/repository"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
)

type ReviewService interface {
	Create(ctx context.Context, actor *entity.Account, req dto.CreateReviewRequest) (*entity.Review, error)
	List(ctx context.Context, filter dto.ReviewFilter) (*commonDto.Paginated[entity.Review], error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateReviewRequest) (*entity.Review, error)
	Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error
}

type reviewService struct {
	repo     repository.ReviewRepository
	students studentRepo.StudentRepository
	courses  courseRepo.CourseRepository
}

func NewReviewService(repo repository.ReviewRepository, students studentRepo.StudentRepository, courses courseRepo.CourseRepository) ReviewService {
	return &reviewService{repo: repo, students: students, courses: courses}
}

// Create only accepts reviews from students with an approved profile, on
// approved courses, once per course.
func (s *reviewService) Create(ctx context.Context, actor *entity.Account, req dto.CreateReviewRequest) (*entity.Review, error) {
	if actor == nil || actor.Role != entity.RoleStudent {
		return nil, apperror.Forbidden("Only students can create reviews")
	}
	student, err := s.students.FindByAccountID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Forbidden("Only students can create reviews")
		}
		return nil, err
	}
	if !student.IsApproved() {
		return nil, apperror.Forbidden("Your account is pending admin approval")
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, apperror.Invalid("courseId", "courseId must be a valid UUID")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Course not found")
		}
		return nil, err
	}
	if !course.IsApproved() {
		return nil, apperror.NotFound("Course not found")
	}

	review := &entity.Review{
		AccountID: actor.ID,
		StudentID: student.ID,
		CourseID:  course.ID,
		Rating:    req.Rating,
		Comment:   sanitize.Text(req.Comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusBadRequest, "You have already reviewed this course", apperror.ErrConflict)
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, filter dto.ReviewFilter) (*commonDto.Paginated[entity.Review], error) {
	limit, offset := filter.Normalize()
	repoFilter := repository.ReviewFilter{Limit: limit, Offset: offset}
	if filter.CourseID != "" {
		if id, err := uuid.Parse(filter.CourseID); err == nil {
			repoFilter.CourseID = &id
		}
	}

	reviews, total, err := s.repo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(reviews, total, filter.PageQuery)
	return &page, nil
}

func (s *reviewService) Get(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review not found")
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) owned(ctx context.Context, actor *entity.Account, id uuid.UUID) (*entity.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (actor.Role != entity.RoleAdmin && actor.ID != review.AccountID) {
		return nil, apperror.Forbidden("You can only modify your own reviews")
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = sanitize.Text(*req.Comment)
	}
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, review.ID)
}
