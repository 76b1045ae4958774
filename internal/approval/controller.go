package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/domain"

	"github.com/google/uuid"
)

const (
	defaultTTL           = 24 * time.Hour
	defaultRetention     = 24 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// Controller is the suspend/resume mechanism shared by every domain worker.
// It persists checkpoints when a request pauses for approval and enforces
// exactly-once resume.
type Controller struct {
	store         Store
	ttl           time.Duration
	retention     time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

type ControllerConfig struct {
	Store Store
	// TTL bounds how long an unresolved checkpoint may stay pending before
	// the sweeper collects it. Zero means the default of 24h.
	TTL time.Duration
	// Retention bounds how long a resolved checkpoint is kept so a replayed
	// decision still gets AlreadyResolved. Zero means the default of 24h.
	Retention     time.Duration
	SweepInterval time.Duration
	Logger        *slog.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		store:         cfg.Store,
		ttl:           cfg.TTL,
		retention:     cfg.Retention,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger,
	}
}

// Begin persists a checkpoint draft under a fresh unique identifier and
// returns the stored checkpoint.
func (c *Controller) Begin(ctx context.Context, draft domain.Checkpoint) (*domain.Checkpoint, error) {
	draft.ID = uuid.NewString()
	draft.CreatedAt = time.Now()

	if err := c.store.Put(ctx, &draft); err != nil {
		return nil, fmt.Errorf("persist checkpoint: %w", err)
	}
	c.logger.Info("checkpoint created",
		"checkpoint", draft.ID,
		"capability", draft.CapabilityName,
		"frames", len(draft.Frames),
	)
	return &draft, nil
}

// Resume consumes a pending checkpoint. Exactly one resume is honored per
// checkpoint; the store serializes concurrent attempts and only the first
// gets the checkpoint back.
func (c *Controller) Resume(ctx context.Context, id string, decision domain.Decision) (*domain.Checkpoint, error) {
	cp, err := c.store.Claim(ctx, id)
	if err != nil {
		return nil, err
	}
	c.logger.Info("checkpoint resolved",
		"checkpoint", id,
		"capability", cp.CapabilityName,
		"selected", decision.Selected,
	)
	return cp, nil
}

// Pending lists checkpoints still awaiting a decision, oldest first.
func (c *Controller) Pending(ctx context.Context) ([]*domain.Checkpoint, error) {
	return c.store.Pending(ctx)
}

// StartSweeper runs the time-to-live janitor until the context is cancelled.
// Unresolved checkpoints are otherwise unbounded.
func (c *Controller) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	c.logger.Info("checkpoint sweeper started", "ttl", c.ttl, "interval", c.sweepInterval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("checkpoint sweeper stopping")
			return
		case <-ticker.C:
			now := time.Now()
			removed, err := c.store.Sweep(ctx, now.Add(-c.ttl), now.Add(-c.retention))
			if err != nil {
				c.logger.Warn("checkpoint sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				c.logger.Info("swept expired checkpoints", "removed", removed)
			}
		}
	}
}
