package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Asset is everything the renderer needs from one parsed container.
type Asset struct {
	// Name is the file base name, or "asset" for in-memory loads.
	Name string
	// Hash is the hex SHA-256 of the container bytes and identifies the asset in caches.
	Hash string
	// Document is the parsed document. Materials and textures are read from it.
	Document *gltf.Document
	// Mesh is the concatenation of every primitive.
	Mesh model.Mesh
	// Images holds the decoded document images in document order.
	Images []common.ImageData
	// IsPBR selects the PBR pipeline variant for the whole asset.
	IsPBR bool
	// Summary counts the document's top-level objects.
	Summary Summary
}

// loader is the implementation of the Loader interface.
type loader struct {
	log *zap.Logger

	// pool is started by the first decode that has images and stopped by Close.
	poolMu sync.Mutex
	pool   worker.DynamicWorkerPool
	closed bool

	decodeWorkers    int
	decodeQueue      int
	documentSamplers bool
}

// Loader turns container bytes into an Asset: it parses the document, classifies its material
// model, extracts the concatenated mesh and decodes the embedded images.
type Loader interface {
	// Load parses data and extracts everything the renderer needs.
	//
	// Parameters:
	//   - data: the raw GLB or embedded glTF bytes
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: a fatal asset error if any stage fails; no partial asset is returned
	Load(data []byte) (*Asset, error)

	// LoadFile reads path and loads its contents. The asset is named after the file.
	//
	// Parameters:
	//   - path: the file path to a .glb or .gltf file
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if the file cannot be read or loading fails
	LoadFile(path string) (*Asset, error)

	// DecodeImages decodes every image of doc in parallel, keeping document order.
	//
	// Parameters:
	//   - doc: the parsed document
	//
	// Returns:
	//   - []common.ImageData: the decoded images
	//   - error: a fatal asset error if any image fails to decode
	DecodeImages(doc *gltf.Document) ([]common.ImageData, error)

	// Close stops the decode workers. Loads that need to decode images fail afterwards.
	// Closing twice is a no-op.
	Close()
}

// ErrLoaderClosed is returned by decodes on a closed Loader.
var ErrLoaderClosed = errors.New("loader is closed")

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified options applied. No decode workers run until
// the first document with images is loaded.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		log:           zap.NewNop(),
		decodeWorkers: max(runtime.NumCPU()-1, 1),
		decodeQueue:   16,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// workers returns the decode pool, starting it on first use.
func (l *loader) workers() (worker.DynamicWorkerPool, error) {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	if l.closed {
		return nil, ErrLoaderClosed
	}
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.decodeWorkers, l.decodeQueue, time.Second)
	}
	return l.pool, nil
}

func (l *loader) Close() {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
}

func (l *loader) Load(data []byte) (*Asset, error) {
	return l.load("asset", data)
}

func (l *loader) LoadFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	asset, err := l.load(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return asset, nil
}

func (l *loader) load(name string, data []byte) (*Asset, error) {
	start := time.Now()

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	summary := Summarize(doc)
	l.log.Info("document parsed", append([]zap.Field{zap.String("asset", name)}, summary.Fields()...)...)

	isPBR := ClassifyPBR(doc)

	mesh, err := ExtractMesh(doc)
	if err != nil {
		return nil, err
	}

	images, err := l.DecodeImages(doc)
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		Name:     name,
		Hash:     ContentHash(data),
		Document: doc,
		Mesh:     mesh,
		Images:   images,
		IsPBR:    isPBR,
		Summary:  summary,
	}
	l.log.Info("asset loaded",
		zap.String("asset", name),
		zap.Bool("pbr", isPBR),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("indices", mesh.IndexCount()),
		zap.Int("images", len(images)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return asset, nil
}

// ContentHash returns the hex SHA-256 of data, the identity of an asset in caches.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
