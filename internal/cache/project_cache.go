// Package cache wraps the project repository with a redis-backed
// cache-aside layer. Reads populate on miss; writes invalidate after the
// store commit. Redis being down never fails a request: reads fall
// through to the store and invalidation failures are logged, leaving a
// stale entry that expires with its TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
)

const defaultOpTimeout = 250 * time.Millisecond

// ProjectCache decorates a ProjectRepository with per-project snapshot
// caching. It holds the inner repository by reference and implements the
// same contract, so callers compose it in wherever the plain repository
// would go.
type ProjectCache struct {
	inner     repository.ProjectRepository
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger
}

var _ repository.ProjectRepository = (*ProjectCache)(nil)

// New constructs a ProjectCache. ttl bounds snapshot staleness between an
// invalidation failure and the next read; opTimeout caps how long a
// request waits on redis before falling open.
func New(inner repository.ProjectRepository, client *redis.Client, ttl, opTimeout time.Duration, logger *slog.Logger) *ProjectCache {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &ProjectCache{inner: inner, client: client, ttl: ttl, opTimeout: opTimeout, logger: logger}
}

// Key returns the cache key for a project identifier.
func Key(projectID int64) string {
	return "project:" + strconv.FormatInt(projectID, 10)
}

// GetProjectByID serves a live cached snapshot when one exists and falls
// through to the store otherwise, repopulating on a hit there. A miss for
// a project that does not exist is never cached.
func (c *ProjectCache) GetProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	key := Key(projectID)

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	cached, err := c.client.Get(opCtx, key).Bytes()
	cancel()
	switch {
	case err == nil:
		var project domain.Project
		if unmarshalErr := json.Unmarshal(cached, &project); unmarshalErr == nil {
			return &project, nil
		}
		// Undecodable entry: drop it and treat as a miss.
		c.Invalidate(ctx, projectID)
	case errors.Is(err, redis.Nil):
		// cache miss
	default:
		c.logger.Warn("cache read failed, falling through to store", "key", key, "error", err)
	}

	project, err := c.inner.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(project); marshalErr == nil {
		opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		if setErr := c.client.Set(opCtx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("cache populate failed", "key", key, "error", setErr)
		}
		cancel()
	}
	return project, nil
}

// ListProjectsByUser is not cached; listings change with every membership
// and ownership mutation across projects.
func (c *ProjectCache) ListProjectsByUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	return c.inner.ListProjectsByUser(ctx, userID)
}

// CreateProject delegates; nothing is cached for an id that did not
// exist before.
func (c *ProjectCache) CreateProject(ctx context.Context, project *domain.Project) error {
	return c.inner.CreateProject(ctx, project)
}

// UpdateProject writes through to the store first and invalidates only
// after the store confirms, so a concurrent reader can never repopulate
// the old snapshot after this call returns.
func (c *ProjectCache) UpdateProject(ctx context.Context, project *domain.Project) error {
	if err := c.inner.UpdateProject(ctx, project); err != nil {
		return err
	}
	c.Invalidate(ctx, project.ID)
	return nil
}

// DeleteProject deletes from the store, then drops the cache entry.
func (c *ProjectCache) DeleteProject(ctx context.Context, projectID int64) error {
	if err := c.inner.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	c.Invalidate(ctx, projectID)
	return nil
}

// AddMember mutates the membership list embedded in the cached snapshot,
// so it follows the same write-then-invalidate ordering.
func (c *ProjectCache) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	if err := c.inner.AddMember(ctx, member); err != nil {
		return err
	}
	c.Invalidate(ctx, member.ProjectID)
	return nil
}

// UpdateMemberRole changes the stored role, then drops the cache entry.
func (c *ProjectCache) UpdateMemberRole(ctx context.Context, projectID, userID int64, role domain.Role) error {
	if err := c.inner.UpdateMemberRole(ctx, projectID, userID, role); err != nil {
		return err
	}
	c.Invalidate(ctx, projectID)
	return nil
}

// RemoveMember removes the membership, then drops the cache entry.
func (c *ProjectCache) RemoveMember(ctx context.Context, projectID, userID int64) error {
	if err := c.inner.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	c.Invalidate(ctx, projectID)
	return nil
}

// Invalidate drops the cached snapshot for a project. Failures are
// logged, not returned: by the time invalidation runs the store write is
// durable, and the entry still expires with its TTL.
func (c *ProjectCache) Invalidate(ctx context.Context, projectID int64) {
	key := Key(projectID)
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if err := c.client.Del(opCtx, key).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "key", key, "error", err)
		return
	}
	c.logger.Debug("cache invalidated", "key", key)
}
