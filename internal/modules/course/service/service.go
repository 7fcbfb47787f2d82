package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/dto"
	"anoa.com/learnhub/internal/modules/course/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	teacherRepo "anoa.com/learnhub/internal/modules/teacher/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
	"anoa.com/learnhub/pkg/search"
)

type CourseService interface {
	Create(ctx context.Context, actor *entity.Account, req dto.CreateCourseRequest) (*entity.Course, error)
	List(ctx context.Context, viewer *entity.Account, filter dto.CourseFilter) (*commonDto.Paginated[entity.Course], error)
	Get(ctx context.Context, viewer *entity.Account, id uuid.UUID) (*entity.Course, error)
	Search(ctx context.Context, req dto.SearchCourseRequest) (*dto.SearchResponse, error)
	Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateCourseRequest) (*entity.Course, error)
	Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error
	Moderate(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Course, error)
}

// AttachmentLinker claims uploaded files for a course.
type AttachmentLinker interface {
	AttachToCourse(ctx context.Context, actor *entity.Account, courseID uuid.UUID, attachmentIDs []uuid.UUID) error
}

type courseService struct {
	repo        repository.CourseRepository
	teachers    teacherRepo.TeacherRepository
	attachments AttachmentLinker
	index       search.CourseIndex
	machine     *approval.Machine
	notifier    notification.ModerationNotifier
}

func NewCourseService(
	repo repository.CourseRepository,
	teachers teacherRepo.TeacherRepository,
	attachments AttachmentLinker,
	index search.CourseIndex,
	machine *approval.Machine,
	notifier notification.ModerationNotifier,
) CourseService {
	if index == nil {
		index = search.Noop{}
	}
	if machine == nil {
		machine = approval.NewProfileMachine()
	}
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &courseService{
		repo:        repo,
		teachers:    teachers,
		attachments: attachments,
		index:       index,
		machine:     machine,
		notifier:    notifier,
	}
}

func isAdmin(a *entity.Account) bool {
	return a != nil && a.Role == entity.RoleAdmin
}

// teacherOf returns the teacher profile of a teacher account, or nil.
func (s *courseService) teacherOf(ctx context.Context, a *entity.Account) (*entity.Teacher, error) {
	if a == nil || a.Role != entity.RoleTeacher {
		return nil, nil
	}
	teacher, err := s.teachers.FindByAccountID(ctx, a.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return teacher, nil
}

func (s *courseService) isOwner(ctx context.Context, a *entity.Account, course *entity.Course) (bool, error) {
	teacher, err := s.teacherOf(ctx, a)
	if err != nil || teacher == nil {
		return false, err
	}
	return teacher.ID == course.TeacherID, nil
}

func (s *courseService) link(ctx context.Context, actor *entity.Account, courseID uuid.UUID, ids []uuid.UUID) error {
	if s.attachments == nil || len(ids) == 0 {
		return nil
	}
	return s.attachments.AttachToCourse(ctx, actor, courseID, ids)
}

func (s *courseService) reindex(course *entity.Course) {
	if err := s.index.IndexCourse(course); err != nil {
		log.Printf("[Course] failed to sync search index for %s: %v", course.ID, err)
	}
}

func (s *courseService) Create(ctx context.Context, actor *entity.Account, req dto.CreateCourseRequest) (*entity.Course, error) {
	teacher, err := s.teacherOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	if teacher == nil || !teacher.IsApproved() {
		return nil, apperror.Forbidden("Only approved teachers can create courses")
	}

	course := &entity.Course{
		TeacherID:   teacher.ID,
		Title:       sanitize.Text(req.Title),
		Description: sanitize.Text(req.Description),
		Author:      sanitize.Text(req.Author),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
		Price:       req.Price,
		CourseName:  sanitize.Text(req.CourseName),
		Category:    sanitize.Text(req.Category),
		Duration:    req.Duration,
		Level:       req.Level,
		Documents:   req.Documents,
		Syllabus:    req.Syllabus,
		Moderation:  entity.Moderation{Status: entity.StatusPending},
	}
	if course.Level == "" {
		course.Level = entity.LevelBeginner
	}
	if course.Title == "" || course.Description == "" {
		return nil, apperror.Invalid("title", "title and description must contain text")
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	if err := s.link(ctx, actor, course.ID, req.AttachmentIDs); err != nil {
		return nil, err
	}

	event := notification.NewEvent(actor, entity.SubjectCourse, course.ID, notification.ActionCreated,
		approval.Change{To: entity.StatusPending})
	if err := s.notifier.Record(ctx, event); err != nil {
		log.Printf("[Course] failed to record submission of %s: %v", course.ID, err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, viewer *entity.Account, filter dto.CourseFilter) (*commonDto.Paginated[entity.Course], error) {
	limit, offset := filter.Normalize()
	repoFilter := repository.CourseFilter{
		Category: filter.Category,
		Level:    filter.Level,
		Limit:    limit,
		Offset:   offset,
	}
	if filter.TeacherID != "" {
		if id, err := uuid.Parse(filter.TeacherID); err == nil {
			repoFilter.TeacherID = &id
		}
	}

	if isAdmin(viewer) {
		repoFilter.Status = entity.Status(filter.Status)
	} else {
		repoFilter.Status = entity.StatusApproved
		teacher, err := s.teacherOf(ctx, viewer)
		if err != nil {
			return nil, err
		}
		if teacher != nil {
			repoFilter.OrTeacherID = &teacher.ID
		}
	}

	courses, total, err := s.repo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(courses, total, filter.PageQuery)
	return &page, nil
}

func (s *courseService) find(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Course not found")
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) Get(ctx context.Context, viewer *entity.Account, id uuid.UUID) (*entity.Course, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.IsApproved() || isAdmin(viewer) {
		return course, nil
	}
	owner, err := s.isOwner(ctx, viewer, course)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, apperror.NotFound("Course not found")
	}
	return course, nil
}

func (s *courseService) Search(_ context.Context, req dto.SearchCourseRequest) (*dto.SearchResponse, error) {
	limit, offset := req.Normalize()
	hits, total, err := s.index.SearchCourses(req.Query, search.Filter{
		Category: req.Category,
		Level:    req.Level,
		Limit:    int64(limit),
		Offset:   int64(offset),
	})
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(hits, total, req.PageQuery)
	return &page, nil
}

func (s *courseService) authorize(ctx context.Context, actor *entity.Account, course *entity.Course) error {
	if isAdmin(actor) {
		return nil
	}
	owner, err := s.isOwner(ctx, actor, course)
	if err != nil {
		return err
	}
	if !owner {
		return apperror.Forbidden("You can only modify your own courses")
	}
	return nil
}

func (s *courseService) Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateCourseRequest) (*entity.Course, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, course); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if v := sanitize.Text(*req.Title); v != "" {
			course.Title = v
		}
	}
	if req.Description != nil {
		if v := sanitize.Text(*req.Description); v != "" {
			course.Description = v
		}
	}
	if req.Author != nil {
		course.Author = sanitize.Text(*req.Author)
	}
	if req.Thumbnail != nil {
		course.Thumbnail = strings.TrimSpace(*req.Thumbnail)
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.CourseName != nil {
		course.CourseName = sanitize.Text(*req.CourseName)
	}
	if req.Category != nil {
		course.Category = sanitize.Text(*req.Category)
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Documents != nil {
		course.Documents = req.Documents
	}
	if req.Syllabus != nil {
		course.Syllabus = req.Syllabus
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	if err := s.link(ctx, actor, course.ID, req.AttachmentIDs); err != nil {
		return nil, err
	}
	s.reindex(course)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error {
	course, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, course); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return err
	}
	if err := s.index.DeleteCourse(course.ID.String()); err != nil {
		log.Printf("[Course] failed to remove %s from search index: %v", course.ID, err)
	}

	event := notification.NewEvent(actor, entity.SubjectCourse, course.ID, notification.ActionDeleted,
		approval.Change{From: course.Status})
	if err := s.notifier.Record(ctx, event); err != nil {
		log.Printf("[Course] failed to record deletion of %s: %v", course.ID, err)
	}
	return nil
}

func (s *courseService) Moderate(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Course, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := s.machine.Apply(&course.Moderation, action, sanitize.Text(reason))
	if err != nil {
		return nil, err
	}
	if !change.Changed() {
		return course, nil
	}

	if err := s.repo.UpdateModeration(ctx, course.ID, course.Moderation); err != nil {
		return nil, err
	}
	if err := s.notifier.RecordChange(ctx, actor, course, change); err != nil {
		log.Printf("[Course] failed to record %s of %s: %v", action, course.ID, err)
	}
	s.reindex(course)
	return course, nil
}
