package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/storage"
)

type memRepo struct {
	rows map[uuid.UUID]*entity.Attachment
	fail error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID]*entity.Attachment{}}
}

func (r *memRepo) Create(_ context.Context, a *entity.Attachment) error {
	if r.fail != nil {
		return r.fail
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *memRepo) AttachToCourse(_ context.Context, ids []uuid.UUID, courseID, accountID uuid.UUID) error {
	for _, id := range ids {
		a, ok := r.rows[id]
		if !ok || a.AccountID != accountID {
			continue
		}
		if a.CourseID != nil && *a.CourseID != courseID {
			continue
		}
		cid := courseID
		a.CourseID = &cid
	}
	return nil
}

func (r *memRepo) FindOrphans(_ context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var out []entity.Attachment
	for _, a := range r.rows {
		if a.CourseID == nil && a.CreatedAt.Before(cutoff) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

type memStorage struct {
	uploaded map[string][]byte
	deleted  []string
	failOn   string
}

func newMemStorage() *memStorage {
	return &memStorage{uploaded: map[string][]byte{}}
}

func (s *memStorage) Upload(_ context.Context, r io.Reader, folder, fileName string) (*storage.Asset, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	url := "https://res.cloudinary.com/demo/raw/upload/v1/" + folder + "/" + fileName
	s.uploaded[url] = body
	return &storage.Asset{URL: url, PublicID: folder + "/" + fileName, Type: "raw", Bytes: len(body)}, nil
}

func (s *memStorage) Delete(_ context.Context, url string) error {
	if url == s.failOn {
		return errors.New("cdn unavailable")
	}
	s.deleted = append(s.deleted, url)
	delete(s.uploaded, url)
	return nil
}

func fileHeader(t *testing.T, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadAttachmentStoresAsset(t *testing.T) {
	repo, store := newMemRepo(), newMemStorage()
	svc := NewAttachmentService(repo, store, time.Hour)
	teacher := &entity.Account{ID: uuid.New(), Role: entity.RoleTeacher}

	resp, err := svc.UploadAttachment(context.Background(), teacher, fileHeader(t, "syllabus.pdf", "application/pdf", []byte("%PDF")))
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", resp.FileType)
	assert.Equal(t, "syllabus.pdf", resp.FileName)
	assert.Equal(t, 4, resp.Bytes)
	require.Contains(t, repo.rows, resp.ID)
	assert.Equal(t, teacher.ID, repo.rows[resp.ID].AccountID)
	assert.Contains(t, store.uploaded, resp.FileURL)
}

func TestUploadAttachmentRollsBackOnSaveFailure(t *testing.T) {
	repo, store := newMemRepo(), newMemStorage()
	repo.fail = errors.New("db down")
	svc := NewAttachmentService(repo, store, time.Hour)

	_, err := svc.UploadAttachment(context.Background(), &entity.Account{ID: uuid.New()}, fileHeader(t, "a.pdf", "application/pdf", []byte("x")))
	require.Error(t, err)
	assert.Empty(t, store.uploaded)
	assert.Len(t, store.deleted, 1)
}

func TestUploadAttachmentWithoutStorage(t *testing.T) {
	svc := NewAttachmentService(newMemRepo(), nil, time.Hour)

	_, err := svc.UploadAttachment(context.Background(), &entity.Account{ID: uuid.New()}, fileHeader(t, "a.pdf", "application/pdf", []byte("x")))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
}

func TestAttachToCourseOnlyClaimsOwnUploads(t *testing.T) {
	repo := newMemRepo()
	svc := NewAttachmentService(repo, newMemStorage(), time.Hour)
	owner, other := uuid.New(), uuid.New()
	mine := &entity.Attachment{AccountID: owner, FileURL: "m"}
	theirs := &entity.Attachment{AccountID: other, FileURL: "t"}
	require.NoError(t, repo.Create(context.Background(), mine))
	require.NoError(t, repo.Create(context.Background(), theirs))

	courseID := uuid.New()
	err := svc.AttachToCourse(context.Background(), &entity.Account{ID: owner}, courseID, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)

	require.NotNil(t, repo.rows[mine.ID].CourseID)
	assert.Equal(t, courseID, *repo.rows[mine.ID].CourseID)
	assert.Nil(t, repo.rows[theirs.ID].CourseID)
}

func TestCleanupOrphanAttachments(t *testing.T) {
	repo, store := newMemRepo(), newMemStorage()
	svc := NewAttachmentService(repo, store, time.Hour).(*attachmentService)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	courseID := uuid.New()
	stale := &entity.Attachment{AccountID: uuid.New(), FileURL: "stale", CreatedAt: now.Add(-2 * time.Hour)}
	fresh := &entity.Attachment{AccountID: uuid.New(), FileURL: "fresh", CreatedAt: now.Add(-time.Minute)}
	linked := &entity.Attachment{AccountID: uuid.New(), FileURL: "linked", CourseID: &courseID, CreatedAt: now.Add(-48 * time.Hour)}
	broken := &entity.Attachment{AccountID: uuid.New(), FileURL: "broken", CreatedAt: now.Add(-3 * time.Hour)}
	for _, a := range []*entity.Attachment{stale, fresh, linked, broken} {
		require.NoError(t, repo.Create(context.Background(), a))
	}
	store.failOn = "broken"

	removed, err := NewCleanupJob(svc, "@hourly").service.CleanupOrphanAttachments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NotContains(t, repo.rows, stale.ID)
	assert.Contains(t, repo.rows, fresh.ID)
	assert.Contains(t, repo.rows, linked.ID)
	assert.Contains(t, repo.rows, broken.ID)
	assert.Equal(t, []string{"stale"}, store.deleted)
}

func TestCleanupJobMetadata(t *testing.T) {
	job := NewCleanupJob(NewAttachmentService(newMemRepo(), nil, time.Hour), "0 */6 * * *")
	assert.Equal(t, "orphan-attachment-sweep", job.Name())
	assert.Equal(t, "0 */6 * * *", job.Schedule())
	assert.NoError(t, job.Execute(context.Background()))
}
