package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yourorg/qa-platform/internal/apperr"
	"github.com/yourorg/qa-platform/internal/model"

	"go.uber.org/zap"
)

type fakeTagRepo struct {
	tags      map[string]*model.Tag
	counts    *model.TagCountMap
	findErr   error
	countErr  error
	countCall int
}

func (f *fakeTagRepo) FindByName(_ context.Context, name string) (*model.Tag, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.tags[name], nil
}

func (f *fakeTagRepo) CountQuestionsByTag(context.Context) (*model.TagCountMap, error) {
	f.countCall++
	if f.countErr != nil {
		return nil, f.countErr
	}
	return f.counts, nil
}

type memCache struct {
	entries map[string][]byte
	ttl     time.Duration
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	c.ttl = ttl
	return nil
}

func sampleCounts() *model.TagCountMap {
	m := model.NewTagCountMap()
	m.Set("algorithms", 2)
	m.Set("react", 1)
	return m
}

func TestGetTagCountMap(t *testing.T) {
	repo := &fakeTagRepo{counts: sampleCounts()}
	svc := NewTagService(repo, zap.NewNop())

	counts, err := svc.GetTagCountMap(context.Background())
	if err != nil {
		t.Fatalf("GetTagCountMap: %v", err)
	}
	if !reflect.DeepEqual(counts.Counts(), sampleCounts().Counts()) {
		t.Fatalf("counts = %v", counts.Counts())
	}
}

func TestGetTagCountMapNilMapIsAggregationError(t *testing.T) {
	svc := NewTagService(&fakeTagRepo{}, zap.NewNop())

	_, err := svc.GetTagCountMap(context.Background())
	if !apperr.Is(err, apperr.KindAggregation) {
		t.Fatalf("err = %v, want aggregation error", err)
	}
	if apperr.MessageOf(err) != ErrMsgTagCountMap {
		t.Fatalf("message = %q", apperr.MessageOf(err))
	}
}

func TestGetTagCountMapStoreError(t *testing.T) {
	svc := NewTagService(&fakeTagRepo{countErr: errors.New("boom")}, zap.NewNop())

	_, err := svc.GetTagCountMap(context.Background())
	if !apperr.Is(err, apperr.KindDataAccess) {
		t.Fatalf("err = %v, want data access error", err)
	}
	if apperr.MessageOf(err) != "boom" {
		t.Fatalf("message = %q", apperr.MessageOf(err))
	}
}

func TestGetTagCountMapCachesAggregate(t *testing.T) {
	repo := &fakeTagRepo{counts: sampleCounts()}
	cache := newMemCache()
	svc := NewTagService(repo, zap.NewNop(), WithCountCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		counts, err := svc.GetTagCountMap(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if !reflect.DeepEqual(counts.Counts(), sampleCounts().Counts()) {
			t.Fatalf("call %d: counts = %v", i, counts.Counts())
		}
	}

	if repo.countCall != 1 {
		t.Fatalf("repository called %d times, want 1", repo.countCall)
	}
	if cache.ttl != time.Minute {
		t.Fatalf("ttl = %v", cache.ttl)
	}
}

func TestGetTagCountMapBypassesBrokenCache(t *testing.T) {
	repo := &fakeTagRepo{counts: sampleCounts()}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := NewTagService(repo, zap.NewNop(), WithCountCache(cache, time.Minute))

	if _, err := svc.GetTagCountMap(context.Background()); err != nil {
		t.Fatalf("GetTagCountMap: %v", err)
	}
	if repo.countCall != 1 {
		t.Fatalf("repository called %d times, want 1", repo.countCall)
	}
}

func TestGetTagCountMapIgnoresMalformedCacheEntry(t *testing.T) {
	repo := &fakeTagRepo{counts: sampleCounts()}
	cache := newMemCache()
	cache.entries[tagCountMapCacheKey] = []byte("{not json")
	svc := NewTagService(repo, zap.NewNop(), WithCountCache(cache, time.Minute))

	if _, err := svc.GetTagCountMap(context.Background()); err != nil {
		t.Fatalf("GetTagCountMap: %v", err)
	}
	if repo.countCall != 1 {
		t.Fatalf("repository called %d times, want 1", repo.countCall)
	}

	var stored []model.TagCount
	if err := json.Unmarshal(cache.entries[tagCountMapCacheKey], &stored); err != nil {
		t.Fatalf("cache entry not rewritten: %v", err)
	}
}

func TestGetTagByName(t *testing.T) {
	repo := &fakeTagRepo{tags: map[string]*model.Tag{
		"algorithms": {Name: "algorithms", Description: "Algorithmic topics"},
	}}
	svc := NewTagService(repo, zap.NewNop())

	tag, err := svc.GetTagByName(context.Background(), "algorithms")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if tag.Description != "Algorithmic topics" {
		t.Fatalf("tag = %+v", tag)
	}
}

func TestGetTagByNameNotFound(t *testing.T) {
	svc := NewTagService(&fakeTagRepo{}, zap.NewNop())

	_, err := svc.GetTagByName(context.Background(), "nonexistent")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := apperr.MessageOf(err); got != `Tag with name "nonexistent" not found` {
		t.Fatalf("message = %q", got)
	}
}

func TestGetTagByNameStoreError(t *testing.T) {
	svc := NewTagService(&fakeTagRepo{findErr: errors.New("timeout")}, zap.NewNop())

	_, err := svc.GetTagByName(context.Background(), "go")
	if !apperr.Is(err, apperr.KindDataAccess) {
		t.Fatalf("err = %v, want data access error", err)
	}
}
