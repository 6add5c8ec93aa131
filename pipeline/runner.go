package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gridsetter/models"
	"gridsetter/search"

	"github.com/google/uuid"
)

// Downloader retrieves the bytes of a selected asset
type Downloader interface {
	Download(ctx context.Context, asset models.ArtworkAsset) ([]byte, error)
}

// Writer stores artwork under its Steam filename and returns the final path
type Writer interface {
	Write(appID uint32, t models.ImageType, data []byte, dir string) (string, error)
}

// Config controls a run
type Config struct {
	Types          []models.ImageType
	GridDir        string
	Workers        int
	UseStoredAppID bool
}

// Runner resolves, downloads and writes artwork for a batch of shortcuts
type Runner struct {
	resolver   *search.Resolver
	downloader Downloader
	writer     Writer
	cfg        Config
	logger     *slog.Logger
}

// NewRunner creates a runner
func NewRunner(resolver *search.Resolver, downloader Downloader, writer Writer, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if len(cfg.Types) == 0 {
		cfg.Types = models.AllImageTypes
	}
	return &Runner{
		resolver:   resolver,
		downloader: downloader,
		writer:     writer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run processes shortcuts on a pool of workers. Each shortcut and each image
// type fails independently. Once ctx is done no further shortcut is started
// and the remaining ones are reported as cancelled; artwork that was
// already downloaded is still written.
func (r *Runner) Run(ctx context.Context, shortcuts []models.Shortcut) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		GridDir:   r.cfg.GridDir,
		Shortcuts: make([]ShortcutOutcome, len(shortcuts)),
	}
	logger := r.logger.With("run", report.RunID)
	logger.Info("starting run", "shortcuts", len(shortcuts), "types", r.cfg.Types,
		"workers", r.cfg.Workers, "grid_dir", r.cfg.GridDir)

	workers := min(r.cfg.Workers, len(shortcuts))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Shortcuts[i] = r.process(ctx, logger, shortcuts[i])
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range shortcuts {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(shortcuts); i++ {
		report.Shortcuts[i] = r.cancelled(shortcuts[i], context.Cause(ctx))
	}

	s := report.Summary()
	logger.Info("run finished", "written", s.Written, "absent", s.Absent, "no_match", s.NoMatch,
		"failed", s.Failed, "cancelled", s.Cancelled)
	return report
}

func (r *Runner) process(ctx context.Context, logger *slog.Logger, sc models.Shortcut) ShortcutOutcome {
	out := ShortcutOutcome{Shortcut: sc, GridID: sc.GridID(r.cfg.UseStoredAppID)}
	logger = logger.With("name", sc.AppName, "app_id", out.GridID)

	if sc.StoredAppID != 0 && sc.StoredAppID != sc.AppID {
		logger.Warn("stored appid differs from derived appid",
			"stored", sc.StoredAppID, "derived", sc.AppID, "using", out.GridID)
	}

	res, err := r.resolver.Resolve(ctx, sc, r.cfg.Types)
	if err != nil {
		status := r.failure(ctx)
		logger.Warn("resolve failed", "error", err)
		for _, t := range r.cfg.Types {
			out.Types = append(out.Types, newOutcome(t, status, err))
		}
		return out
	}
	out.Match = res.Match

	for _, t := range r.cfg.Types {
		out.Types = append(out.Types, r.apply(ctx, logger, out.GridID, t, res))
	}
	return out
}

func (r *Runner) apply(ctx context.Context, logger *slog.Logger, gridID uint32, t models.ImageType, res *search.Resolution) TypeOutcome {
	asset, err := res.Asset(t)
	switch {
	case errors.Is(err, search.ErrNoMatch):
		return newOutcome(t, StatusNoMatch, err)
	case errors.Is(err, search.ErrNoAssetForType):
		return newOutcome(t, StatusAbsent, err)
	case err != nil:
		return newOutcome(t, r.failure(ctx), err)
	}

	if err := ctx.Err(); err != nil {
		return newOutcome(t, StatusCancelled, context.Cause(ctx))
	}

	data, err := r.downloader.Download(ctx, *asset)
	if err != nil {
		logger.Warn("download failed", "type", t, "asset", asset.ID, "error", err)
		return newOutcome(t, r.failure(ctx), fmt.Errorf("download %s: %w", t, err))
	}

	path, err := r.writer.Write(gridID, t, data, r.cfg.GridDir)
	if err != nil {
		logger.Error("write failed", "type", t, "error", err)
		return newOutcome(t, StatusFailed, err)
	}

	logger.Debug("artwork written", "type", t, "asset", asset.ID, "path", path)
	o := newOutcome(t, StatusWritten, nil)
	o.Path = path
	o.AssetID = asset.ID
	return o
}

// failure classifies an error seen while ctx may have been cancelled
func (r *Runner) failure(ctx context.Context) Status {
	if ctx.Err() != nil {
		return StatusCancelled
	}
	return StatusFailed
}

func (r *Runner) cancelled(sc models.Shortcut, cause error) ShortcutOutcome {
	out := ShortcutOutcome{Shortcut: sc, GridID: sc.GridID(r.cfg.UseStoredAppID)}
	for _, t := range r.cfg.Types {
		out.Types = append(out.Types, newOutcome(t, StatusCancelled, cause))
	}
	return out
}
