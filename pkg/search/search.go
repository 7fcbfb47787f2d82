// Package search keeps approved courses in a meilisearch index.
package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/sanitize"
)

const CoursesIndex = "courses"

// CourseIndex is what course services need from the search backend.
type CourseIndex interface {
	IndexCourse(course *entity.Course) error
	DeleteCourse(id string) error
	SearchCourses(query string, filter Filter) ([]CourseHit, int64, error)
}

type Filter struct {
	Category string
	Level    string
	Limit    int64
	Offset   int64
}

// CourseHit is the indexed projection of an approved course.
type CourseHit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CourseName  string  `json:"course_name,omitempty"`
	Author      string  `json:"author,omitempty"`
	Category    string  `json:"category,omitempty"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	TeacherID   string  `json:"teacher_id"`
	CreatedAt   int64   `json:"created_at"`
}

type meiliCourseIndex struct {
	client meilisearch.ServiceManager
}

func NewMeiliCourseIndex(client meilisearch.ServiceManager) CourseIndex {
	s := &meiliCourseIndex{client: client}
	s.initIndex()
	return s
}

func (s *meiliCourseIndex) initIndex() {
	filterable := []any{"category", "level", "teacher_id"}
	if _, err := s.client.Index(CoursesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update courses filterable attributes: %v", err)
	}

	sortable := []string{"created_at", "price"}
	if _, err := s.client.Index(CoursesIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update courses sortable attributes: %v", err)
	}
	log.Println("Meilisearch indexes initialized")
}

// NewCourseHit projects a course into its search document.
func NewCourseHit(course *entity.Course) CourseHit {
	return CourseHit{
		ID:          course.ID.String(),
		Title:       sanitize.Text(course.Title),
		Description: sanitize.Text(course.Description),
		CourseName:  sanitize.Text(course.CourseName),
		Author:      course.Author,
		Category:    course.Category,
		Level:       course.Level,
		Price:       course.Price,
		Thumbnail:   course.Thumbnail,
		TeacherID:   course.TeacherID.String(),
		CreatedAt:   course.CreatedAt.Unix(),
	}
}

func (s *meiliCourseIndex) IndexCourse(course *entity.Course) error {
	if !course.IsApproved() {
		return s.DeleteCourse(course.ID.String())
	}

	doc := NewCourseHit(course)
	pk := "id"
	task, err := s.client.Index(CoursesIndex).AddDocuments([]CourseHit{doc}, &pk)
	if err != nil {
		return fmt.Errorf("failed to index course: %w", err)
	}
	log.Printf("Indexed course %s, task id: %d", course.ID, task.TaskUID)
	return nil
}

func (s *meiliCourseIndex) DeleteCourse(id string) error {
	_, err := s.client.Index(CoursesIndex).DeleteDocument(id)
	return err
}

type rawResult struct {
	Hits               []CourseHit `json:"hits"`
	EstimatedTotalHits int64       `json:"estimatedTotalHits"`
}

func (s *meiliCourseIndex) SearchCourses(query string, filter Filter) ([]CourseHit, int64, error) {
	req := &meilisearch.SearchRequest{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Sort:   []string{"created_at:desc"},
	}
	if expr := filter.Expression(); expr != "" {
		req.Filter = expr
	}

	raw, err := s.client.Index(CoursesIndex).SearchRaw(sanitize.Text(query), req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search courses: %w", err)
	}

	var res rawResult
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search result: %w", err)
	}
	return res.Hits, res.EstimatedTotalHits, nil
}

// Expression renders the meilisearch filter for f.
func (f Filter) Expression() string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("category = %q", f.Category))
	}
	if f.Level != "" {
		parts = append(parts, fmt.Sprintf("level = %q", f.Level))
	}
	return strings.Join(parts, " AND ")
}

// Noop is used when no search backend is configured.
type Noop struct{}

func (Noop) IndexCourse(*entity.Course) error { return nil }
func (Noop) DeleteCourse(string) error        { return nil }
func (Noop) SearchCourses(string, Filter) ([]CourseHit, int64, error) {
	return []CourseHit{}, 0, nil
}
