package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/survey-service/internal/domain"
)

// SurveyCache stores survey definitions as JSON under survey:<id>.
type SurveyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSurveyCache returns a cache backed by client. A zero ttl keeps entries until evicted.
func NewSurveyCache(client *redis.Client, ttl time.Duration) *SurveyCache {
	return &SurveyCache{client: client, ttl: ttl}
}

func surveyKey(id int64) string {
	return fmt.Sprintf("survey:%d", id)
}

// Get returns the cached survey, or (nil, nil) on a miss.
func (c *SurveyCache) Get(ctx context.Context, id int64) (*domain.Survey, error) {
	raw, err := c.client.Get(ctx, surveyKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var survey domain.Survey
	if err := json.Unmarshal(raw, &survey); err != nil {
		return nil, fmt.Errorf("decode cached survey %d: %w", id, err)
	}
	return &survey, nil
}

// Set stores the survey.
func (c *SurveyCache) Set(ctx context.Context, survey *domain.Survey) error {
	raw, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, surveyKey(survey.ID), raw, c.ttl).Err()
}

// Invalidate drops a cached survey.
func (c *SurveyCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, surveyKey(id)).Err()
}
