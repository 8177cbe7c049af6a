package shaderlink

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// Shader is a handle into a ShaderStore.
type Shader struct {
	assetId AssetId
}

// ShaderAsset is a WGSL body written against one registry program. The body
// contains the entry point and whatever bindings it needs, but not the
// stage interface structs; those are generated from the registry when the
// shader is composed.
type ShaderAsset struct {
	version uint
	name    string
	program string
	source  string
}

type ShaderStore struct {
	shaders map[AssetId]ShaderAsset
	byName  map[string]AssetId
}

func NewShaderStore() *ShaderStore {
	return &ShaderStore{
		shaders: make(map[AssetId]ShaderAsset),
		byName:  make(map[string]AssetId),
	}
}

// AddShader registers an in-memory WGSL body for the named program. Shader
// names are unique per store; reusing one is a programming error and panics.
func (store *ShaderStore) AddShader(name string, program string, source string) Shader {
	if _, exists := store.byName[name]; exists {
		panic(fmt.Sprintf("shaderlink: shader %q already added", name))
	}
	id := makeAssetId()

	store.shaders[id] = ShaderAsset{
		version: 0,
		name:    name,
		program: program,
		source:  source,
	}
	store.byName[name] = id

	return Shader{
		assetId: id,
	}
}

// LoadShader reads a WGSL body from disk and registers it like AddShader.
func (store *ShaderStore) LoadShader(name string, program string, filename string) (Shader, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return Shader{}, fmt.Errorf("shaderlink: load shader %q: %w", name, err)
	}
	return store.AddShader(name, program, string(source)), nil
}

func (store *ShaderStore) get(sh Shader) (ShaderAsset, bool) {
	asset, ok := store.shaders[sh.assetId]
	return asset, ok
}

// ComposedSource prepends the generated stage interface of the shader's
// program to its body, yielding the complete WGSL module source. The result
// is deterministic for a given registry and body.
func (store *ShaderStore) ComposedSource(reg *Registry, sh Shader) (string, error) {
	asset, ok := store.get(sh)
	if !ok {
		return "", fmt.Errorf("shaderlink: unknown shader handle %q", sh.assetId)
	}
	preamble, err := reg.InterfaceWGSL(asset.program)
	if err != nil {
		return "", fmt.Errorf("shaderlink: compose shader %q: %w", asset.name, err)
	}
	return preamble + "\n" + asset.source, nil
}
