// Package app drives the skeletal bridge headlessly: it loads one skeleton
// from the asset root, plays an animation and ticks the stage schedule at a
// fixed rate, logging animation events and mesh statistics.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/Faultbox/skelbridge/internal/assets"
	"github.com/Faultbox/skelbridge/internal/config"
	"github.com/Faultbox/skelbridge/internal/engine/schedule"
	"github.com/Faultbox/skelbridge/internal/engine/skeletal"
	"github.com/Faultbox/skelbridge/internal/engine/texture"
	"github.com/Faultbox/skelbridge/internal/logger"
	"github.com/Faultbox/skelbridge/pkg/pack"
)

// ErrLoadFailed is returned by Step once the skeleton has failed to load.
var ErrLoadFailed = errors.New("skeleton failed to load")

// SlotStats describes one mesh slot after the last tick.
type SlotStats struct {
	Index     int
	Vertices  int
	Triangles int
	Variant   string // empty when no material is attached
}

// Stats accumulates over the app's lifetime.
type Stats struct {
	Ticks  int
	Events map[skeletal.EventKind]int
	Named  map[string]int
	Slots  []SlotStats
}

// App is the headless viewer.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	server *assets.Server
	plugin *skeletal.Plugin
	sched  *schedule.Schedule
	packs  []*pack.Archive
	entity donburi.Entity
	ready  bool
	stats  Stats
}

// New loads the configured skeleton and prepares the schedule. Loading is
// asynchronous; the entity becomes ready during a later Step.
func New(cfg *config.Config, opts ...schedule.Option) (*App, error) {
	files := assets.NewManager()
	var packs []*pack.Archive
	closePacks := func() {
		for _, p := range packs {
			p.Close()
		}
	}
	for _, name := range cfg.Loader.Packs {
		archive, err := pack.Open(name)
		if err != nil {
			closePacks()
			return nil, fmt.Errorf("asset pack %s: %w", name, err)
		}
		files.AddRoot(archive)
		packs = append(packs, archive)
	}
	if cfg.Loader.AssetRoot != "" {
		if err := files.AddDir(cfg.Loader.AssetRoot); err != nil {
			closePacks()
			return nil, fmt.Errorf("asset root: %w", err)
		}
	}
	server := assets.NewServer(files, texture.NewRegistry())

	sched, err := schedule.New(skeletal.Stages(), opts...)
	if err != nil {
		closePacks()
		return nil, err
	}
	plugin := skeletal.New(donburi.NewWorld(), server, skeletal.OptionsFromConfig(cfg))
	if err := plugin.Install(sched); err != nil {
		closePacks()
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    logger.Named("app"),
		server: server,
		plugin: plugin,
		sched:  sched,
		packs:  packs,
		stats: Stats{
			Events: make(map[skeletal.EventKind]int),
			Named:  make(map[string]int),
		},
	}

	handle := server.LoadSkeleton(cfg.Runtime.Skeleton, cfg.Runtime.Atlas)
	a.entity = plugin.Spawn(skeletal.NewBundle(handle))

	a.log.Info("app initialized",
		zap.String("asset_root", cfg.Loader.AssetRoot),
		zap.Strings("packs", cfg.Loader.Packs),
		zap.String("skeleton", cfg.Runtime.Skeleton),
		zap.String("atlas", cfg.Runtime.Atlas))
	return a, nil
}

// Plugin returns the skeletal plugin.
func (a *App) Plugin() *skeletal.Plugin { return a.plugin }

// Entity returns the animated entity.
func (a *App) Entity() donburi.Entity { return a.entity }

// Ready reports whether the ready notification has been observed.
func (a *App) Ready() bool { return a.ready }

// Stats returns the statistics collected so far.
func (a *App) Stats() Stats { return a.stats }

// WaitAssets blocks until every started file load has finished.
func (a *App) WaitAssets() error { return a.server.Wait() }

// Step runs one tick of dt seconds.
func (a *App) Step(ctx context.Context, dt float32) error {
	if err := a.sched.Tick(ctx, dt); err != nil {
		return fmt.Errorf("tick %d: %w", a.stats.Ticks+1, err)
	}
	a.stats.Ticks++

	if st, err := a.plugin.State(a.entity); st == skeletal.Failed {
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	for _, ev := range a.plugin.ReadyEvents() {
		if ev.Entity == a.entity {
			a.onReady()
		}
	}
	for _, ev := range a.plugin.Events() {
		a.stats.Events[ev.Kind]++
		if ev.Kind == skeletal.EventNamed {
			a.stats.Named[ev.Name]++
		}
		a.log.Debug("animation event",
			zap.Stringer("kind", ev.Kind),
			zap.String("name", ev.Name),
			zap.Int("tick", a.stats.Ticks))
	}

	if a.ready {
		a.collectSlots()
	}
	return nil
}

func (a *App) onReady() {
	a.ready = true
	ctrl, _ := a.plugin.Controller(a.entity)
	a.log.Info("skeleton ready",
		zap.String("name", ctrl.Skeleton.Data.Name),
		zap.Int("bones", len(ctrl.Skeleton.Bones)),
		zap.Int("slots", len(ctrl.Skeleton.Slots)))

	name := a.cfg.Runtime.Animation
	if name == "" {
		return
	}
	if _, err := a.plugin.SetAnimation(a.entity, 0, name, a.cfg.Runtime.Loop); err != nil {
		a.log.Warn("cannot play animation", zap.String("animation", name), zap.Error(err))
	}
}

func (a *App) collectSlots() {
	w := a.plugin.World()
	slots := a.plugin.MeshSlots(a.entity)
	a.stats.Slots = a.stats.Slots[:0]
	for _, e := range slots {
		entry := w.Entry(e)
		ms := skeletal.MeshSlot.Get(entry)
		s := SlotStats{Index: ms.Index}
		if m, ok := a.plugin.Meshes().Get(ms.Mesh); ok {
			s.Vertices = m.VertexCount()
			s.Triangles = len(m.Indices) / 3
		}
		if entry.HasComponent(skeletal.MaterialSlot) {
			s.Variant = skeletal.MaterialSlot.Get(entry).Variant.String()
		}
		a.stats.Slots = append(a.stats.Slots, s)
	}
}

// Run ticks at the configured rate until the frame budget is spent or ctx is
// cancelled. Frames == 0 runs until cancellation.
func (a *App) Run(ctx context.Context) error {
	rate := a.cfg.Runtime.TickRate
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	a.log.Info("starting tick loop",
		zap.Duration("tick_rate", rate),
		zap.Int("frames", a.cfg.Runtime.Frames))

	lastTime := time.Now()
	reportTimer := time.Now()
	for frames := a.cfg.Runtime.Frames; frames == 0 || a.stats.Ticks < frames; {
		select {
		case <-ctx.Done():
			a.log.Info("tick loop interrupted", zap.Int("ticks", a.stats.Ticks))
			return nil
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTime).Seconds())
			lastTime = now
			if err := a.Step(ctx, dt); err != nil {
				return err
			}
		}

		if time.Since(reportTimer) >= time.Second {
			a.report()
			reportTimer = time.Now()
		}
	}
	a.report()
	return nil
}

func (a *App) report() {
	for _, s := range a.stats.Slots {
		a.log.Info("mesh slot",
			zap.Int("slot", s.Index),
			zap.Int("vertices", s.Vertices),
			zap.Int("triangles", s.Triangles),
			zap.String("material", s.Variant))
	}
	a.log.Info("tick stats",
		zap.Int("ticks", a.stats.Ticks),
		zap.Int("events", a.totalEvents()),
		zap.Any("named", a.stats.Named))
}

func (a *App) totalEvents() int {
	n := 0
	for _, c := range a.stats.Events {
		n += c
	}
	return n
}

// Close despawns the entity and releases asset resources.
func (a *App) Close() error {
	a.log.Info("closing app")
	a.plugin.Despawn(a.entity)
	err := a.server.Wait()
	a.server.Textures().Close()
	for _, p := range a.packs {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
