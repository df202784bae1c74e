package assets

import "github.com/spaghettifunk/vkspin/engine/assets/loaders"

type ResourceType uint8

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeShader
)

type Loader interface {
	Load(path string) (*loaders.Resource, error)
	Unload(*loaders.Resource) error
}
