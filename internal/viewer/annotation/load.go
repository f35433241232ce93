package annotation

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// fileContexts is the on-disk layout of an annotation file:
//
//	contexts:
//	  - path: /world
//	    classes:
//	      - id: 7
//	        label: car
//	        color: "#ff0000"
type fileContexts struct {
	Contexts []fileContext `yaml:"contexts"`
}

type fileContext struct {
	Path    string      `yaml:"path"`
	Classes []fileClass `yaml:"classes"`
}

type fileClass struct {
	ID    ClassID `yaml:"id"`
	Label string  `yaml:"label"`
	Color string  `yaml:"color"`
}

// LoadMap reads an annotation Map from a YAML file.
func LoadMap(path string) (*Map, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("annotation file must have .yaml or .yml extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation file: %w", err)
	}
	return ParseMap(data)
}

// ParseMap decodes an annotation Map from YAML.
func ParseMap(data []byte) (*Map, error) {
	var f fileContexts
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse annotation YAML: %w", err)
	}

	m := NewMap()
	for i, fc := range f.Contexts {
		p, err := entity.ParsePath(fc.Path)
		if err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
		ctx := NewContext()
		for _, cls := range fc.Classes {
			info := Info{ID: cls.ID, Label: cls.Label}
			if cls.Color != "" {
				c, err := ParseHexColor(cls.Color)
				if err != nil {
					return nil, fmt.Errorf("context %s class %d: %w", p, cls.ID, err)
				}
				info.Color = &c
			}
			ctx.Add(ClassDescription{Info: info})
		}
		m.Set(p, ctx)
	}
	return m, nil
}
