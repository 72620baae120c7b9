package texture

import (
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/skelbridge/internal/logger"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// Loader reads raw file bytes by path.
type Loader interface {
	Load(path string) ([]byte, error)
}

// Texture is a registered page image. Its pixels arrive on a later
// Registry.Update; until then Image returns nil.
type Texture struct {
	Path               string
	PremultipliedAlpha bool

	mu  sync.RWMutex
	img *image.RGBA
	err error
}

// Image returns the decoded pixels, or nil while the load is pending or failed.
func (t *Texture) Image() *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img
}

// Err returns the load error, if any.
func (t *Texture) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Loaded reports whether pixels are available.
func (t *Texture) Loaded() bool {
	return t.Image() != nil
}

func (t *Texture) set(img *image.RGBA, err error) {
	t.mu.Lock()
	t.img, t.err = img, err
	t.mu.Unlock()
}

// Registry hands out stable references to textures. Refs are dense and start
// at 1; the zero ref never resolves.
type Registry struct {
	mu       sync.RWMutex
	textures map[rig.TextureRef]*Texture
	byPath   map[string]rig.TextureRef
	pending  []rig.TextureRef
	next     rig.TextureRef
	log      *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		textures: make(map[rig.TextureRef]*Texture),
		byPath:   make(map[string]rig.TextureRef),
		next:     1,
		log:      logger.Named("texture"),
	}
}

// Register returns the ref for path, queueing a deferred load the first time
// the path is seen.
func (r *Registry) Register(path string, premultiplied bool) rig.TextureRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.byPath[path]; ok {
		return ref
	}
	ref := r.next
	r.next++
	r.textures[ref] = &Texture{Path: path, PremultipliedAlpha: premultiplied}
	r.byPath[path] = ref
	r.pending = append(r.pending, ref)
	return ref
}

// Lookup resolves a ref. It fails for the zero ref, refs never issued by this
// registry and every ref after Close.
func (r *Registry) Lookup(ref rig.TextureRef) (*Texture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.textures[ref]
	return t, ok
}

// Pending returns the number of queued loads.
func (r *Registry) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// Update decodes every queued texture through l and returns how many
// succeeded. Failures are kept on the texture and logged; they are not retried.
func (r *Registry) Update(l Loader) int {
	r.mu.Lock()
	queue := r.pending
	r.pending = nil
	jobs := make([]*Texture, 0, len(queue))
	for _, ref := range queue {
		if t, ok := r.textures[ref]; ok {
			jobs = append(jobs, t)
		}
	}
	r.mu.Unlock()

	loaded := 0
	for _, t := range jobs {
		img, err := load(l, t)
		t.set(img, err)
		if err != nil {
			r.log.Warn("texture load failed", zap.String("path", t.Path), zap.Error(err))
			continue
		}
		r.log.Debug("texture loaded",
			zap.String("path", t.Path),
			zap.Int("width", img.Bounds().Dx()),
			zap.Int("height", img.Bounds().Dy()))
		loaded++
	}
	return loaded
}

func load(l Loader, t *Texture) (*image.RGBA, error) {
	data, err := l.Load(t.Path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(t.Path, data)
	if err != nil {
		return nil, err
	}
	return ToRGBA(img, t.PremultipliedAlpha), nil
}

// Close drops every texture. Refs issued before Close no longer resolve.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures = make(map[rig.TextureRef]*Texture)
	r.byPath = make(map[string]rig.TextureRef)
	r.pending = nil
}
