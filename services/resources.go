package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lborres/careerguide/core"
)

// Authorizer attaches the current bearer token to outgoing calls.
type Authorizer interface {
	AuthContext(ctx context.Context) context.Context
}

type ResourcesConfig struct {
	API     core.ResourceAPI
	Auth    Authorizer
	Cache   *core.EntryCache
	Storage *Storage
	Logger  *slog.Logger
}

// Resources serves the counselor directory, conversations, resume and
// learning journey from the entry cache, fetching on a miss.
type Resources struct {
	api     core.ResourceAPI
	auth    Authorizer
	cache   *core.EntryCache
	storage *Storage
	logger  *slog.Logger
}

func NewResources(c ResourcesConfig) *Resources {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return &Resources{
		api:     c.API,
		auth:    c.Auth,
		cache:   c.Cache,
		storage: c.Storage,
		logger:  c.Logger,
	}
}

// cached returns the fresh entry for category/id, or calls fetch and caches
// its result. A cache write failure is logged, not returned.
func cached[T any](ctx context.Context, r *Resources, category core.Category, id string, fetch func(ctx context.Context) (T, error)) (T, error) {
	if data, ok := core.ReadEntry[T](ctx, r.cache, category, id); ok {
		return data, nil
	}

	data, err := fetch(r.auth.AuthContext(ctx))
	if err != nil {
		var zero T
		return zero, err
	}

	r.remember(ctx, category, id, data)
	return data, nil
}

func (r *Resources) remember(ctx context.Context, category core.Category, id string, data any) {
	if err := core.WriteEntry(ctx, r.cache, category, id, data); err != nil {
		r.logger.Warn("cache write failed", "key", category.Key(id), "error", err)
		return
	}
	r.storage.SetItem(ctx, core.KeyLastSync, r.cache.Now().UnixMilli())
}

func failed(what string, env core.Envelope) error {
	return fmt.Errorf("%s: %w: %s", what, core.ErrRequestFailed, messageOr(env.Message, "unsuccessful response"))
}

func (r *Resources) Counselors(ctx context.Context) ([]core.Counselor, error) {
	return cached(ctx, r, core.CategoryCounselors, "", func(ctx context.Context) ([]core.Counselor, error) {
		resp, err := r.api.GetCounselors(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch counselors: %w", err)
		}
		if !resp.Success {
			return nil, failed("fetch counselors", resp.Envelope)
		}
		return resp.Counselors, nil
	})
}

// Counselor looks id up in the cached directory before asking the API.
func (r *Resources) Counselor(ctx context.Context, id string) (*core.Counselor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, core.ErrCounselorIDRequired
	}

	if directory, ok := core.ReadEntry[[]core.Counselor](ctx, r.cache, core.CategoryCounselors, ""); ok {
		for _, c := range directory {
			if strconv.Itoa(c.ID) == id {
				found := c
				return &found, nil
			}
		}
	}

	resp, err := r.api.GetCounselor(r.auth.AuthContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("fetch counselor %s: %w", id, err)
	}
	if !resp.Success || resp.Counselor == nil {
		return nil, failed("fetch counselor "+id, resp.Envelope)
	}
	return resp.Counselor, nil
}

func (r *Resources) Messages(ctx context.Context, counselorID string) ([]core.Message, error) {
	if strings.TrimSpace(counselorID) == "" {
		return nil, core.ErrCounselorIDRequired
	}
	return cached(ctx, r, core.CategoryMessages, counselorID, func(ctx context.Context) ([]core.Message, error) {
		resp, err := r.api.GetMessages(ctx, counselorID)
		if err != nil {
			return nil, fmt.Errorf("fetch messages: %w", err)
		}
		if !resp.Success {
			return nil, failed("fetch messages", resp.Envelope)
		}
		return resp.Messages, nil
	})
}

// SendMessage posts a message and drops the cached conversation so the next
// read includes it.
func (r *Resources) SendMessage(ctx context.Context, counselorID, body string) (*core.Message, error) {
	if strings.TrimSpace(counselorID) == "" {
		return nil, core.ErrCounselorIDRequired
	}
	if strings.TrimSpace(body) == "" {
		return nil, core.ErrMessageRequired
	}

	resp, err := r.api.SendMessage(r.auth.AuthContext(ctx), core.SendMessageRequest{
		CounselorID: counselorID,
		Message:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if !resp.Success {
		return nil, failed("send message", resp.Envelope)
	}

	if err := r.cache.Delete(ctx, core.CategoryMessages, counselorID); err != nil {
		r.logger.Warn("cache invalidation failed", "key", core.CategoryMessages.Key(counselorID), "error", err)
	}
	return resp.Data, nil
}

func (r *Resources) Resume(ctx context.Context) (json.RawMessage, error) {
	return r.document(ctx, core.CategoryResume, r.api.GetResume)
}

func (r *Resources) SaveResume(ctx context.Context, data json.RawMessage) error {
	return r.saveDocument(ctx, core.CategoryResume, data, r.api.SaveResume)
}

func (r *Resources) LearningJourney(ctx context.Context) (json.RawMessage, error) {
	return r.document(ctx, core.CategoryLearningJourney, r.api.GetLearningJourney)
}

func (r *Resources) SaveLearningJourney(ctx context.Context, data json.RawMessage) error {
	return r.saveDocument(ctx, core.CategoryLearningJourney, data, r.api.SaveLearningJourney)
}

func (r *Resources) document(ctx context.Context, category core.Category, fetch func(context.Context) (*core.DocumentResponse, error)) (json.RawMessage, error) {
	return cached(ctx, r, category, "", func(ctx context.Context) (json.RawMessage, error) {
		resp, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", category, err)
		}
		if !resp.Success {
			return nil, failed("fetch "+string(category), resp.Envelope)
		}
		return resp.Data, nil
	})
}

// saveDocument sends data and overwrites the cached entry with it.
func (r *Resources) saveDocument(ctx context.Context, category core.Category, data json.RawMessage, save func(context.Context, json.RawMessage) (*core.DocumentResponse, error)) error {
	if !json.Valid(data) {
		return fmt.Errorf("save %s: invalid JSON document", category)
	}

	resp, err := save(r.auth.AuthContext(ctx), data)
	if err != nil {
		return fmt.Errorf("save %s: %w", category, err)
	}
	if !resp.Success {
		return failed("save "+string(category), resp.Envelope)
	}

	r.remember(ctx, category, "", data)
	return nil
}

// ClearCache removes every cached resource and the last sync time. Session
// and settings keys are kept.
func (r *Resources) ClearCache(ctx context.Context) error {
	if err := r.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return r.storage.Delete(ctx, core.KeyLastSync)
}

// LastSync reports when a resource was last fetched or saved.
func (r *Resources) LastSync(ctx context.Context) (time.Time, bool) {
	var millis int64
	if !r.storage.GetItem(ctx, core.KeyLastSync, &millis) {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (r *Resources) Stats() core.CacheStats {
	return r.cache.Stats()
}
