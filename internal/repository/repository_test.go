package repository

import (
	"testing"
)

func TestStoredTag(t *testing.T) {
	tag, err := storedTag("algorithms", "Algorithmic topics")
	if err != nil {
		t.Fatalf("storedTag: %v", err)
	}
	if tag.Name != "algorithms" || tag.Description != "Algorithmic topics" {
		t.Fatalf("tag = %+v", tag)
	}
}

func TestStoredTagRejectsMissingName(t *testing.T) {
	tag, err := storedTag("", "orphan description")
	if err == nil {
		t.Fatalf("record without name accepted: %+v", tag)
	}
}
