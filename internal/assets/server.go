package assets

import (
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/skelbridge/internal/engine/texture"
	"github.com/Faultbox/skelbridge/internal/logger"
	"github.com/Faultbox/skelbridge/pkg/formats"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// LoadState is the progress of a path-based load.
type LoadState uint8

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not_loaded"
	}
}

type status struct {
	state LoadState
	err   error
}

type skeletonKey struct {
	atlas  Handle[AtlasAsset]
	source Handle[SourceAsset]
}

// Server loads assets in the background and hands out handles immediately.
// A handle resolves once its file has been read and parsed.
type Server struct {
	Atlases   *Store[AtlasAsset]
	Sources   *Store[SourceAsset]
	Skeletons *Store[SkeletonAsset]

	files    *Manager
	textures *texture.Registry
	log      *zap.Logger

	mu        sync.Mutex
	atlasIDs  map[string]Handle[AtlasAsset]
	sourceIDs map[string]Handle[SourceAsset]
	skelIDs   map[skeletonKey]Handle[SkeletonAsset]
	status    map[string]status
	group     *errgroup.Group
}

// NewServer creates a server reading from files and registering atlas pages
// in textures.
func NewServer(files *Manager, textures *texture.Registry) *Server {
	return &Server{
		Atlases:   NewStore[AtlasAsset](),
		Sources:   NewStore[SourceAsset](),
		Skeletons: NewStore[SkeletonAsset](),
		files:     files,
		textures:  textures,
		log:       logger.Named("assets"),
		atlasIDs:  make(map[string]Handle[AtlasAsset]),
		sourceIDs: make(map[string]Handle[SourceAsset]),
		skelIDs:   make(map[skeletonKey]Handle[SkeletonAsset]),
		status:    make(map[string]status),
		group:     &errgroup.Group{},
	}
}

// Textures returns the registry atlas pages are registered in.
func (s *Server) Textures() *texture.Registry { return s.textures }

// Files returns the underlying file manager.
func (s *Server) Files() *Manager { return s.files }

func (s *Server) setStatus(name string, st LoadState, err error) {
	s.mu.Lock()
	s.status[name] = status{state: st, err: err}
	s.mu.Unlock()
}

// State reports the load progress of a path.
func (s *Server) State(name string) (LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[path.Clean(name)]
	return st.state, st.err
}

// LoadAtlas starts loading an atlas. Repeated calls with the same path return
// the same handle.
func (s *Server) LoadAtlas(name string) Handle[AtlasAsset] {
	name = path.Clean(name)
	s.mu.Lock()
	if h, ok := s.atlasIDs[name]; ok {
		s.mu.Unlock()
		return h
	}
	h := s.Atlases.Reserve()
	s.atlasIDs[name] = h
	s.status[name] = status{state: Loading}
	g := s.group
	s.mu.Unlock()

	g.Go(func() error {
		data, err := s.files.Load(name)
		if err == nil {
			var atlas *rig.Atlas
			if atlas, err = formats.ParseAtlas(data); err == nil {
				s.Atlases.Set(h, s.registerAtlas(name, atlas))
			}
		}
		return s.finish(name, err)
	})
	return h
}

// LoadSource starts reading a skeleton file. The encoding follows the file
// extension (see KindFromPath).
func (s *Server) LoadSource(name string) Handle[SourceAsset] {
	name = path.Clean(name)
	s.mu.Lock()
	if h, ok := s.sourceIDs[name]; ok {
		s.mu.Unlock()
		return h
	}
	h := s.Sources.Reserve()
	s.sourceIDs[name] = h
	s.status[name] = status{state: Loading}
	g := s.group
	s.mu.Unlock()

	g.Go(func() error {
		data, err := s.files.Load(name)
		if err == nil {
			s.Sources.Set(h, &SourceAsset{Path: name, Kind: KindFromPath(name), Bytes: data})
		}
		return s.finish(name, err)
	})
	return h
}

func (s *Server) finish(name string, err error) error {
	if err != nil {
		s.setStatus(name, Failed, err)
		s.log.Warn("asset load failed", zap.String("path", name), zap.Error(err))
		return fmt.Errorf("loading %s: %w", name, err)
	}
	s.setStatus(name, Loaded, nil)
	s.log.Debug("asset loaded", zap.String("path", name))
	return nil
}

// LoadSkeleton starts loading a skeleton file and its atlas and returns the
// handle of the pair.
func (s *Server) LoadSkeleton(skeleton, atlas string) Handle[SkeletonAsset] {
	return s.AddSkeleton(s.LoadAtlas(atlas), s.LoadSource(skeleton))
}

// AddSkeleton pairs an atlas and a source. The same pair yields the same
// handle and therefore shares parsed data.
func (s *Server) AddSkeleton(atlas Handle[AtlasAsset], source Handle[SourceAsset]) Handle[SkeletonAsset] {
	key := skeletonKey{atlas: atlas, source: source}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.skelIDs[key]; ok {
		return h
	}
	h := s.Skeletons.Add(NewSkeletonAsset(atlas, source))
	s.skelIDs[key] = h
	return h
}

// AddAtlas inserts an already parsed atlas under name and registers its pages.
func (s *Server) AddAtlas(name string, atlas *rig.Atlas) Handle[AtlasAsset] {
	name = path.Clean(name)
	asset := s.registerAtlas(name, atlas)

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.atlasIDs[name]
	if !ok {
		h = s.Atlases.Reserve()
		s.atlasIDs[name] = h
	}
	s.Atlases.Set(h, asset)
	s.status[name] = status{state: Loaded}
	return h
}

// AddSource inserts skeleton bytes under name.
func (s *Server) AddSource(name string, kind SourceKind, data []byte) Handle[SourceAsset] {
	name = path.Clean(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.sourceIDs[name]
	if !ok {
		h = s.Sources.Reserve()
		s.sourceIDs[name] = h
	}
	s.Sources.Set(h, &SourceAsset{Path: name, Kind: kind, Bytes: data})
	s.status[name] = status{state: Loaded}
	return h
}

// registerAtlas registers every page as a deferred texture load relative to
// the atlas file and stores the resulting refs on the pages.
func (s *Server) registerAtlas(name string, atlas *rig.Atlas) *AtlasAsset {
	dir := path.Dir(name)
	for _, page := range atlas.Pages {
		page.Texture = s.textures.Register(path.Join(dir, page.File), page.PremultipliedAlpha)
	}
	return &AtlasAsset{Path: name, Atlas: atlas}
}

// Atlas resolves an atlas handle.
func (s *Server) Atlas(h Handle[AtlasAsset]) (*AtlasAsset, bool) { return s.Atlases.Get(h) }

// Source resolves a source handle.
func (s *Server) Source(h Handle[SourceAsset]) (*SourceAsset, bool) { return s.Sources.Get(h) }

// Skeleton resolves a skeleton handle.
func (s *Server) Skeleton(h Handle[SkeletonAsset]) (*SkeletonAsset, bool) { return s.Skeletons.Get(h) }

// UpdateTextures performs pending texture loads and returns how many
// succeeded.
func (s *Server) UpdateTextures() int {
	return s.textures.Update(s.files)
}

// Wait blocks until every load started so far has finished and returns the
// first load error among them.
func (s *Server) Wait() error {
	s.mu.Lock()
	g := s.group
	s.group = &errgroup.Group{}
	s.mu.Unlock()
	return g.Wait()
}
