package storage

import (
	"testing"
	"time"

	"github.com/poiesic/advisor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("CSE2221")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCourseDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	doc := &core.CourseDocument{
		Id:            core.IDFromContent("CSE2231"),
		Number:        "CSE2231",
		NumberRaw:     "2231",
		Title:         "Software II: Software Development and Design",
		Prerequisites: "Prereq: 2221",
		Units:         "4",
		Level:         core.LevelUndergraduate,
		Kind:          core.KindFull,
		Text:          "Course Number: CSE2231 CSE2231 CSE2231\nCourse Title: CSE2231 - Software II",
		Vector:        []float32{0.25, -0.5, 1.0, 0.0},
		InsertedAt:    now,
	}

	data := MarshalCourseDocument(doc)
	decoded, err := UnmarshalCourseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	t.Run("document without vector", func(t *testing.T) {
		bare := *doc
		bare.Vector = nil
		decoded, err := UnmarshalCourseDocument(MarshalCourseDocument(&bare))
		require.NoError(t, err)
		assert.Nil(t, decoded.Vector)
		assert.Equal(t, bare.Text, decoded.Text)
	})

	t.Run("truncated data", func(t *testing.T) {
		_, err := UnmarshalCourseDocument(data[:len(data)/2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalCourseDocument(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
