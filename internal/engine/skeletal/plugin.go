// Package skeletal bridges the skeletal animation runtime into the entity
// world. A Plugin turns entities carrying a skeleton handle into animated
// hierarchies: a controller, one mesh slot child per skeleton slot and a bone
// proxy tree mirroring the skeleton. Its systems run in six ordered stages:
//
//	load -> update -> sync entities -> sync bones -> sync entities applied -> render
//
// Host code may insert its own stages between them with
// schedule.Schedule.InsertAfter.
package skeletal

import (
	"errors"
	"runtime"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/Faultbox/skelbridge/internal/assets"
	"github.com/Faultbox/skelbridge/internal/config"
	"github.com/Faultbox/skelbridge/internal/engine/event"
	"github.com/Faultbox/skelbridge/internal/engine/material"
	"github.com/Faultbox/skelbridge/internal/engine/mesh"
	"github.com/Faultbox/skelbridge/internal/engine/scene"
	"github.com/Faultbox/skelbridge/internal/engine/schedule"
	"github.com/Faultbox/skelbridge/internal/logger"
)

// Stage names, in execution order.
const (
	StageLoad                = "skeletal.load"
	StageUpdate              = "skeletal.update"
	StageSyncEntities        = "skeletal.sync_entities"
	StageSyncBones           = "skeletal.sync_bones"
	StageSyncEntitiesApplied = "skeletal.sync_entities_applied"
	StageRender              = "skeletal.render"
)

// Stages returns the plugin's stages in execution order.
func Stages() []string {
	return []string{
		StageLoad,
		StageUpdate,
		StageSyncEntities,
		StageSyncBones,
		StageSyncEntitiesApplied,
		StageRender,
	}
}

// ErrDanglingTexture is returned by the render stage when a renderable refers
// to a texture the registry no longer knows.
var ErrDanglingTexture = errors.New("dangling texture reference")

// Options tune the plugin.
type Options struct {
	DefaultMix       float32
	TimeScale        float32
	MaxParseAttempts int
	// Workers bounds parallel controller rendering; <= 0 means GOMAXPROCS.
	Workers       int
	SlotDepthStep float32
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts the plugin settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultMix:       cfg.Animation.DefaultMix,
		TimeScale:        cfg.Animation.TimeScale,
		MaxParseAttempts: cfg.Loader.MaxParseAttempts,
		Workers:          cfg.Render.Workers,
		SlotDepthStep:    cfg.Render.SlotDepthStep,
	}
}

// Plugin owns the skeletal systems and the resources they share.
type Plugin struct {
	world  donburi.World
	assets *assets.Server
	opts   Options
	log    *zap.Logger

	meshes    *assets.Store[mesh.Mesh]
	materials *assets.Store[material.Material]

	cmds scene.Commands

	// Entities that became Ready in the current tick; published next tick.
	pendingReady []donburi.Entity
	ready        *event.Stream[ReadyEvent]

	queue  event.Queue[Event]
	events *event.Stream[Event]
}

// New creates a plugin operating on w and resolving skeletons through server.
func New(w donburi.World, server *assets.Server, opts Options) *Plugin {
	if opts.MaxParseAttempts <= 0 {
		opts.MaxParseAttempts = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.TimeScale == 0 {
		opts.TimeScale = 1
	}
	return &Plugin{
		world:     w,
		assets:    server,
		opts:      opts,
		log:       logger.Named("skeletal"),
		meshes:    assets.NewStore[mesh.Mesh](),
		materials: assets.NewStore[material.Material](),
		ready:     event.NewStream[ReadyEvent](),
		events:    event.NewStream[Event](),
	}
}

// Install registers the plugin's systems. The schedule must already contain
// every stage returned by Stages.
func (p *Plugin) Install(s *schedule.Schedule) error {
	systems := []struct {
		stage string
		sys   schedule.System
	}{
		{StageLoad, p.Load},
		{StageUpdate, p.Update},
		{StageSyncEntities, p.SyncEntities},
		{StageSyncBones, p.SyncBones},
		{StageSyncEntitiesApplied, p.SyncEntitiesApplied},
		{StageRender, p.Render},
	}
	for _, st := range systems {
		if err := s.AddSystem(st.stage, st.sys); err != nil {
			return err
		}
	}
	return nil
}

// World returns the entity world the plugin operates on.
func (p *Plugin) World() donburi.World { return p.world }

// Assets returns the asset server.
func (p *Plugin) Assets() *assets.Server { return p.assets }

// Meshes returns the mesh store referenced by MeshSlot components.
func (p *Plugin) Meshes() *assets.Store[mesh.Mesh] { return p.meshes }

// Materials returns the material store referenced by MaterialSlot components.
func (p *Plugin) Materials() *assets.Store[material.Material] { return p.materials }

// ReadyEvents returns the ready notifications published this tick.
func (p *Plugin) ReadyEvents() []ReadyEvent { return p.ready.Events() }

// Events returns the animation events published this tick.
func (p *Plugin) Events() []Event { return p.events.Events() }

func entityField(e donburi.Entity) zap.Field {
	return zap.Uint64("entity", uint64(e))
}
