package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/learnhub/courses/intro.webp": "learnhub/courses/intro",
		"https://res.cloudinary.com/demo/image/upload/learnhub/video.mp4":                "learnhub/video",
		"https://res.cloudinary.com/demo/raw/upload/v9/syllabus.pdf":                      "syllabus",
		"https://res.cloudinary.com/demo/image/upload/videos/lesson.mp4":                  "videos/lesson",
		"https://example.com/no-upload-segment.png":                                       "",
		"::bad url":                                                                       "",
	}

	for in, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(in), in)
	}
}

func TestFolderJoin(t *testing.T) {
	s := &cloudinaryStorage{rootFolder: "learnhub"}
	assert.Equal(t, "learnhub/courses", s.folder("/courses/"))
	assert.Equal(t, "learnhub", s.folder(""))

	s.rootFolder = ""
	assert.Equal(t, "courses", s.folder("courses"))
}
