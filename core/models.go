// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the storage identifier of a course document.
// The title and full document of one course share the same ID.
type ID uint64

// IDFromContent derives a stable 64-bit ID from text using blake2b.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Level is the academic level a course or a student belongs to.
type Level int

const (
	// LevelUndergraduate is the default level for new sessions.
	LevelUndergraduate Level = iota + 1
	// LevelGraduate covers 5000+ courses and graduate students.
	LevelGraduate
)

// String returns the name used in documents and prompts.
func (l Level) String() string {
	switch l {
	case LevelUndergraduate:
		return "undergraduate"
	case LevelGraduate:
		return "graduate"
	default:
		return "unknown"
	}
}

// ParseLevel converts "undergraduate" or "graduate" into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "undergraduate":
		return LevelUndergraduate, nil
	case "graduate":
		return LevelGraduate, nil
	default:
		return 0, ErrInvalidLevel
	}
}

// DocumentKind distinguishes the two documents stored per course.
type DocumentKind int

const (
	// KindTitle is the title-weighted document used for the first semantic pass.
	KindTitle DocumentKind = iota + 1
	// KindFull carries description, prerequisites and units.
	KindFull
)

// Collection names one of the four partitions of the catalog.
type Collection struct {
	Level Level
	Kind  DocumentKind
}

// Name returns the collection name, e.g. "undergrad_titles" or "grad_courses".
func (c Collection) Name() string {
	prefix := "undergrad"
	if c.Level == LevelGraduate {
		prefix = "grad"
	}
	if c.Kind == KindTitle {
		return prefix + "_titles"
	}
	return prefix + "_courses"
}

// CollectionsFor returns the title and full collections for a level.
// Any level other than graduate maps to the undergraduate pair.
func CollectionsFor(level Level) (title Collection, full Collection) {
	if level != LevelGraduate {
		level = LevelUndergraduate
	}
	return Collection{Level: level, Kind: KindTitle}, Collection{Level: level, Kind: KindFull}
}

// AllCollections lists every collection in a fixed order.
func AllCollections() []Collection {
	ugTitle, ugFull := CollectionsFor(LevelUndergraduate)
	gTitle, gFull := CollectionsFor(LevelGraduate)
	return []Collection{ugTitle, ugFull, gTitle, gFull}
}

// Course is a catalog entry as scraped from the course listing.
type Course struct {
	Number        CourseID
	Title         string
	Description   string
	Prerequisites string
	Units         string
	Level         Level
}

// CourseDocument is one stored document of a course in a collection.
type CourseDocument struct {
	Id            ID
	Number        CourseID
	NumberRaw     string // last four digits of Number
	Title         string
	Prerequisites string
	Units         string
	Level         Level
	Kind          DocumentKind
	Text          string    // document text returned to callers
	Vector        []float32 // embedding of Text
	InsertedAt    time.Time
}

// DocumentMatch is a similarity hit.
type DocumentMatch struct {
	Document *CourseDocument
	Score    float32
}

// Turn is one remembered exchange in a conversation.
type Turn struct {
	User      string
	Assistant string
	Timestamp time.Time
}
