package repository

import (
	"context"
	"fmt"

	"github.com/yourorg/qa-platform/internal/model"
)

// TagRepository reads tag records and question/tag references from the store
type TagRepository interface {
	// FindByName returns the first tag whose name equals name, or nil if none exists
	FindByName(ctx context.Context, name string) (*model.Tag, error)

	// CountQuestionsByTag returns every stored tag with the number of questions
	// referencing it, in tag insertion order. Tags without questions count 0.
	CountQuestionsByTag(ctx context.Context) (*model.TagCountMap, error)
}

// storedTag builds a tag from a stored record, rejecting records that break the schema
func storedTag(name, description string) (*model.Tag, error) {
	tag := &model.Tag{Name: name, Description: description}
	if err := tag.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stored tag record: %w", err)
	}
	return tag, nil
}
