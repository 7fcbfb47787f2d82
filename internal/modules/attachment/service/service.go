package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/attachment/dto"
	"anoa.com/learnhub/internal/modules/attachment/repository"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/storage"
)

const uploadFolder = "courses"

type AttachmentService interface {
	UploadAttachment(ctx context.Context, actor *entity.Account, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error)
	AttachToCourse(ctx context.Context, actor *entity.Account, courseID uuid.UUID, attachmentIDs []uuid.UUID) error
	CleanupOrphanAttachments(ctx context.Context) (int, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.AssetStorage
	grace          time.Duration
	now            func() time.Time
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, fileStorage storage.AssetStorage, grace time.Duration) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
		grace:          grace,
		now:            time.Now,
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, actor *entity.Account, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if s.fileStorage == nil {
		return nil, apperror.New(503, "File uploads are not configured", storage.ErrNotConfigured)
	}
	if file.Size > dto.MaxUploadBytes {
		return nil, apperror.Invalid("file", "file must be at most 20MB")
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	asset, err := s.fileStorage.Upload(ctx, f, uploadFolder, file.Filename)
	if err != nil {
		return nil, err
	}

	attachment := &entity.Attachment{
		AccountID: actor.ID,
		FileURL:   asset.URL,
		FileType:  file.Header.Get("Content-Type"),
		FileName:  file.Filename,
		Bytes:     asset.Bytes,
	}
	if attachment.FileType == "" {
		attachment.FileType = asset.Type
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.fileStorage.Delete(ctx, asset.URL); delErr != nil {
			log.Printf("[Attachment] failed to roll back upload %s: %v", asset.URL, delErr)
		}
		return nil, err
	}

	return &dto.UploadAttachmentResponse{
		ID:       attachment.ID,
		FileURL:  attachment.FileURL,
		FileType: attachment.FileType,
		FileName: attachment.FileName,
		Bytes:    attachment.Bytes,
	}, nil
}

func (s *attachmentService) AttachToCourse(ctx context.Context, actor *entity.Account, courseID uuid.UUID, attachmentIDs []uuid.UUID) error {
	if len(attachmentIDs) == 0 || actor == nil {
		return nil
	}
	return s.attachmentRepo.AttachToCourse(ctx, attachmentIDs, courseID, actor.ID)
}

// CleanupOrphanAttachments removes uploads never claimed by a course.
// Failures are logged and retried on the next run.
func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) (int, error) {
	orphans, err := s.attachmentRepo.FindOrphans(ctx, s.now().Add(-s.grace))
	if err != nil {
		return 0, fmt.Errorf("find orphan attachments: %w", err)
	}

	removed := 0
	for _, orphan := range orphans {
		if s.fileStorage != nil {
			if err := s.fileStorage.Delete(ctx, orphan.FileURL); err != nil {
				log.Printf("[Sweep] failed to delete asset %s: %v", orphan.FileURL, err)
				continue
			}
		}
		if err := s.attachmentRepo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("[Sweep] failed to delete attachment %s: %v", orphan.ID, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[Sweep] removed %d orphan attachments", removed)
	}
	return removed, nil
}

// CleanupJob runs CleanupOrphanAttachments on a cron schedule.
type CleanupJob struct {
	service  AttachmentService
	schedule string
}

func NewCleanupJob(service AttachmentService, schedule string) *CleanupJob {
	return &CleanupJob{service: service, schedule: schedule}
}

func (j *CleanupJob) Name() string     { return "orphan-attachment-sweep" }
func (j *CleanupJob) Schedule() string { return j.schedule }

func (j *CleanupJob) Execute(ctx context.Context) error {
	_, err := j.service.CleanupOrphanAttachments(ctx)
	return err
}
