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

package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/advisor/core"
)

// MarshalID encodes an ID for use as an index value.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID decodes an ID written by MarshalID.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalCourseDocument encodes a document in MUS format.
// Field order: Id, Number, NumberRaw, Title, Prerequisites, Units, Level,
// Kind, Text, Vector, InsertedAt.
func MarshalCourseDocument(doc *core.CourseDocument) []byte {
	buf := make([]byte, courseDocumentSize(doc))
	n := varint.Uint64.Marshal(uint64(doc.Id), buf)
	n += ord.String.Marshal(string(doc.Number), buf[n:])
	n += ord.String.Marshal(doc.NumberRaw, buf[n:])
	n += ord.String.Marshal(doc.Title, buf[n:])
	n += ord.String.Marshal(doc.Prerequisites, buf[n:])
	n += ord.String.Marshal(doc.Units, buf[n:])
	n += varint.Int.Marshal(int(doc.Level), buf[n:])
	n += varint.Int.Marshal(int(doc.Kind), buf[n:])
	n += ord.String.Marshal(doc.Text, buf[n:])
	n += varint.Int.Marshal(len(doc.Vector), buf[n:])
	for _, f := range doc.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), buf[n:])
	}
	varint.Int64.Marshal(doc.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalCourseDocument decodes a document written by MarshalCourseDocument.
func UnmarshalCourseDocument(data []byte) (*core.CourseDocument, error) {
	d := decoder{data: data}
	doc := &core.CourseDocument{}

	doc.Id = core.ID(d.uint64())
	doc.Number = core.CourseID(d.string())
	doc.NumberRaw = d.string()
	doc.Title = d.string()
	doc.Prerequisites = d.string()
	doc.Units = d.string()
	doc.Level = core.Level(d.int())
	doc.Kind = core.DocumentKind(d.int())
	doc.Text = d.string()

	length := d.int()
	if d.err == nil && (length < 0 || length > len(data)) {
		d.err = fmt.Errorf("vector length %d out of range", length)
	}
	if d.err == nil && length > 0 {
		doc.Vector = make([]float32, length)
		for i := range doc.Vector {
			doc.Vector[i] = math.Float32frombits(d.uint32())
		}
	}
	insertedAt := d.int64()

	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	doc.InsertedAt = time.UnixMicro(insertedAt).UTC()
	return doc, nil
}

func courseDocumentSize(doc *core.CourseDocument) int {
	size := varint.Uint64.Size(uint64(doc.Id))
	size += ord.String.Size(string(doc.Number))
	size += ord.String.Size(doc.NumberRaw)
	size += ord.String.Size(doc.Title)
	size += ord.String.Size(doc.Prerequisites)
	size += ord.String.Size(doc.Units)
	size += varint.Int.Size(int(doc.Level))
	size += varint.Int.Size(int(doc.Kind))
	size += ord.String.Size(doc.Text)
	size += varint.Int.Size(len(doc.Vector))
	for _, f := range doc.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	size += varint.Int64.Size(doc.InsertedAt.UnixMicro())
	return size
}

// decoder reads consecutive MUS fields and keeps the first error.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.data[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.data[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.data[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.data[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) uint32() uint32 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint32.Unmarshal(d.data[d.off:])
	d.off += n
	d.err = err
	return v
}
