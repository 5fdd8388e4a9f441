package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/qa-platform/internal/apperr"
	"github.com/yourorg/qa-platform/internal/model"
	"github.com/yourorg/qa-platform/internal/repository"

	"go.uber.org/zap"
)

const (
	tagCountMapCacheKey = "tags:count_map"

	// ErrMsgTagCountMap is reported when the aggregator returns no map
	ErrMsgTagCountMap = "Error while fetching tag count map"
)

// CountCache stores the serialized tag count aggregate
type CountCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TagService handles tag catalog queries
type TagService struct {
	tagRepo  repository.TagRepository
	cache    CountCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Option configures a TagService
type Option func(*TagService)

// WithCountCache caches the tag count aggregate for ttl
func WithCountCache(cache CountCache, ttl time.Duration) Option {
	return func(s *TagService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// NewTagService creates a new tag service
func NewTagService(tagRepo repository.TagRepository, logger *zap.Logger, opts ...Option) *TagService {
	s := &TagService{
		tagRepo: tagRepo,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTagCountMap returns the number of questions referencing each tag
func (s *TagService) GetTagCountMap(ctx context.Context) (*model.TagCountMap, error) {
	if counts, ok := s.cachedCountMap(ctx); ok {
		return counts, nil
	}

	counts, err := s.tagRepo.CountQuestionsByTag(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataAccess, err)
	}
	if counts == nil {
		return nil, apperr.New(apperr.KindAggregation, ErrMsgTagCountMap)
	}

	s.storeCountMap(ctx, counts)
	return counts, nil
}

// GetTagByName retrieves a single tag by its name
func (s *TagService) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByName(ctx, name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataAccess, err)
	}

	if tag == nil {
		return nil, apperr.NotFound("Tag with name \"%s\" not found", name)
	}

	return tag, nil
}

func (s *TagService) cachedCountMap(ctx context.Context) (*model.TagCountMap, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, ok, err := s.cache.Get(ctx, tagCountMapCacheKey)
	if err != nil {
		s.logger.Warn("Failed to read tag count cache", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var counts []model.TagCount
	if err := json.Unmarshal(data, &counts); err != nil {
		s.logger.Warn("Discarding malformed tag count cache entry", zap.Error(err))
		return nil, false
	}

	s.logger.Debug("Tag count cache hit", zap.Int("tags", len(counts)))
	return model.TagCountMapFromCounts(counts), true
}

func (s *TagService) storeCountMap(ctx context.Context, counts *model.TagCountMap) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(counts.Counts())
	if err != nil {
		s.logger.Warn("Failed to encode tag count map", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, tagCountMapCacheKey, data, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to write tag count cache", zap.Error(err))
	}
}
