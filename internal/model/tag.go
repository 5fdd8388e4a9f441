package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Tag represents a named label attached to questions.
// Stored in the "Tag" collection (MongoDB) or the "tags" table (PostgreSQL).
type Tag struct {
	Name        string `json:"name" db:"name" bson:"name" validate:"required"`
	Description string `json:"description,omitempty" db:"description" bson:"description,omitempty"`
}

// Validate checks the required fields of a tag record
func (t *Tag) Validate() error {
	return validate.Struct(t)
}

// TagCount is a tag name paired with the number of questions referencing it
type TagCount struct {
	Name string `json:"name"`
	QCnt int    `json:"qcnt"`
}

// TagCountMap maps tag names to question counts, preserving insertion order.
// The zero value is an empty map ready to use.
type TagCountMap struct {
	names  []string
	counts map[string]int
}

// NewTagCountMap creates an empty count map
func NewTagCountMap() *TagCountMap {
	return &TagCountMap{counts: make(map[string]int)}
}

// Set stores the count for name. An existing name keeps its position.
func (m *TagCountMap) Set(name string, count int) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	if _, ok := m.counts[name]; !ok {
		m.names = append(m.names, name)
	}
	m.counts[name] = count
}

// Add increments the count for name, inserting it when absent
func (m *TagCountMap) Add(name string, delta int) {
	m.Set(name, m.counts[name]+delta)
}

// Get returns the count for name and whether it is present
func (m *TagCountMap) Get(name string) (int, bool) {
	count, ok := m.counts[name]
	return count, ok
}

// Len returns the number of tags in the map
func (m *TagCountMap) Len() int {
	return len(m.names)
}

// Names returns the tag names in insertion order
func (m *TagCountMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Counts returns one entry per tag in insertion order. Never nil.
func (m *TagCountMap) Counts() []TagCount {
	counts := make([]TagCount, 0, len(m.names))
	for _, name := range m.names {
		counts = append(counts, TagCount{Name: name, QCnt: m.counts[name]})
	}
	return counts
}

// TagCountMapFromCounts rebuilds a map from an ordered count list
func TagCountMapFromCounts(counts []TagCount) *TagCountMap {
	m := NewTagCountMap()
	for _, c := range counts {
		m.Add(c.Name, c.QCnt)
	}
	return m
}
