package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/notification/dto"
	"anoa.com/learnhub/internal/modules/notification/repository"
	commonDto "anoa.com/learnhub/pkg/dto"
)

// Channel carries every recorded moderation event as JSON.
const Channel = "moderation_events"

const (
	ActionSubmitted = "registration_submitted"
	ActionCreated   = "created"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionSuspended = "suspended"
	ActionStatus    = "status_changed"
	ActionActivated = "account_activated"
	ActionDisabled  = "account_deactivated"
	ActionDeleted   = "deleted"
)

// ModerationNotifier records moderation activity and fans it out to admins.
type ModerationNotifier interface {
	Record(ctx context.Context, event *entity.ModerationEvent) error
	RecordChange(ctx context.Context, actor *entity.Account, subject entity.Moderatable, change approval.Change) error
	ListEvents(ctx context.Context, filter dto.EventFilter) (*commonDto.Paginated[entity.ModerationEvent], error)
}

type notificationService struct {
	repo        repository.EventRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.EventRepository, redisClient *redis.Client) ModerationNotifier {
	return &notificationService{repo: repo, redisClient: redisClient}
}

func (s *notificationService) Record(ctx context.Context, event *entity.ModerationEvent) error {
	if err := s.repo.Create(ctx, event); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel, payload).Err(); err != nil {
				log.Printf("[Notification] publish failed: %v", err)
			}
		}
	}
	return nil
}

// RecordChange is a no-op for unchanged transitions.
func (s *notificationService) RecordChange(ctx context.Context, actor *entity.Account, subject entity.Moderatable, change approval.Change) error {
	if !change.Changed() {
		return nil
	}
	kind, id := subject.ModerationSubject()
	return s.Record(ctx, NewEvent(actor, kind, id, ActionFor(change.To), change))
}

func (s *notificationService) ListEvents(ctx context.Context, filter dto.EventFilter) (*commonDto.Paginated[entity.ModerationEvent], error) {
	limit, offset := filter.Normalize()
	repoFilter := repository.EventFilter{
		SubjectType: filter.SubjectType,
		Limit:       limit,
		Offset:      offset,
	}
	if filter.SubjectID != "" {
		id, err := uuid.Parse(filter.SubjectID)
		if err == nil {
			repoFilter.SubjectID = &id
		}
	}

	events, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(events, total, filter.PageQuery)
	return &page, nil
}

// NewEvent builds an event; actor may be nil for self-service actions.
func NewEvent(actor *entity.Account, kind string, id uuid.UUID, action string, change approval.Change) *entity.ModerationEvent {
	e := &entity.ModerationEvent{
		SubjectType: kind,
		SubjectID:   id,
		Action:      action,
		FromStatus:  change.From,
		ToStatus:    change.To,
		Reason:      change.Reason,
	}
	if actor != nil {
		actorID := actor.ID
		e.ActorID = &actorID
	}
	return e
}

func ActionFor(status entity.Status) string {
	switch status {
	case entity.StatusApproved:
		return ActionApproved
	case entity.StatusRejected:
		return ActionRejected
	case entity.StatusSuspended:
		return ActionSuspended
	default:
		return ActionStatus
	}
}

// Discard drops every event; used where no audit trail is wired.
type Discard struct{}

func (Discard) Record(context.Context, *entity.ModerationEvent) error { return nil }

func (Discard) RecordChange(context.Context, *entity.Account, entity.Moderatable, approval.Change) error {
	return nil
}

func (Discard) ListEvents(_ context.Context, filter dto.EventFilter) (*commonDto.Paginated[entity.ModerationEvent], error) {
	page := commonDto.NewPaginated[entity.ModerationEvent](nil, 0, filter.PageQuery)
	return &page, nil
}
