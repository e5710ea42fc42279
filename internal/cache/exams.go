// Package cache keeps the exam catalog in Redis. The catalog is read on
// every booking form load and changes rarely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/scheduling"
)

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Exams is a read-through cache in front of an ExamRepository. Cache
// failures are logged and the call falls through to the repository.
type Exams struct {
	next   scheduling.ExamRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

var _ scheduling.ExamRepository = (*Exams)(nil)

func NewExams(next scheduling.ExamRepository, rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *Exams {
	return &Exams{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: "exams",
		log:    log.With().Str("component", "exam_cache").Logger(),
	}
}

// All list variants live in one hash so a write can drop them together.
func (c *Exams) listsKey() string { return c.prefix + ":lists" }

func (c *Exams) idKey(id int64) string { return c.prefix + ":id:" + strconv.FormatInt(id, 10) }

func (c *Exams) ListExams(ctx context.Context) ([]model.Exam, error) {
	return c.list(ctx, "all", func() ([]model.Exam, error) {
		return c.next.ListExams(ctx)
	})
}

func (c *Exams) ExamsBySpecialty(ctx context.Context, specialty string) ([]model.Exam, error) {
	return c.list(ctx, "specialty:"+specialty, func() ([]model.Exam, error) {
		return c.next.ExamsBySpecialty(ctx, specialty)
	})
}

func (c *Exams) list(ctx context.Context, field string, load func() ([]model.Exam, error)) ([]model.Exam, error) {
	raw, err := c.rdb.HGet(ctx, c.listsKey(), field).Bytes()
	if err == nil {
		var out []model.Exam
		if err := json.Unmarshal(raw, &out); err == nil && out != nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("field", field).Msg("cache read failed")
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Exam{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	_, err = c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, c.listsKey(), field, data)
		p.Expire(ctx, c.listsKey(), c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("field", field).Msg("cache write failed")
	}
	return out, nil
}

func (c *Exams) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	raw, err := c.rdb.Get(ctx, c.idKey(id)).Bytes()
	if err == nil {
		var e model.Exam
		if err := json.Unmarshal(raw, &e); err == nil {
			return &e, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Int64("exam_id", id).Msg("cache read failed")
	}

	e, err := c.next.GetExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(e); err == nil {
		if err := c.rdb.Set(ctx, c.idKey(id), data, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Int64("exam_id", id).Msg("cache write failed")
		}
	}
	return e, nil
}

func (c *Exams) CreateExam(ctx context.Context, e *model.Exam) error {
	if err := c.next.CreateExam(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx, c.listsKey())
	return nil
}

func (c *Exams) UpdateExam(ctx context.Context, e *model.Exam) error {
	if err := c.next.UpdateExam(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx, c.listsKey(), c.idKey(e.ID))
	return nil
}

func (c *Exams) DeleteExam(ctx context.Context, id int64) error {
	if err := c.next.DeleteExam(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, c.listsKey(), c.idKey(id))
	return nil
}

func (c *Exams) invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
