package dotnetmetadata

import (
	"os"

	"github.com/wippyai/dotnet-metadata/model"
	"github.com/wippyai/dotnet-metadata/peimage"
)

// LoadFile reads a managed PE image from disk and builds its object
// graph.
func LoadFile(path string, opts ...model.Option) (*model.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data, opts...)
}

// LoadBytes builds the object graph of a managed PE image held in
// memory. The module keeps referencing data; the caller must not mutate
// it while the module is in use.
func LoadBytes(data []byte, opts ...model.Option) (*model.Module, error) {
	img, err := peimage.Open(data)
	if err != nil {
		return nil, err
	}
	return model.Load(img, opts...)
}
