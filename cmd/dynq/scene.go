package main

import (
	"os"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Scene describes a world, the queries to run against it and the mutations
// applied between cycles.
type Scene struct {
	// record components, their values are maps
	Components []string `yaml:"components"`

	// components stored as transforms
	Spatial []string `yaml:"spatial"`

	Entities  []EntitySpec   `yaml:"entities"`
	Queries   []QuerySpec    `yaml:"queries"`
	Mutations []MutationSpec `yaml:"mutations"`
}

type EntitySpec struct {
	Id         spoke.EntityId            `yaml:"id"`
	Components map[string]map[string]any `yaml:"components"`
	Transform  *TransformSpec            `yaml:"transform"`
}

type TransformSpec struct {
	Component string          `yaml:"component"`
	X         float64         `yaml:"x"`
	Y         float64         `yaml:"y"`
	Angle     float64         `yaml:"angle"`
	Parent    *spoke.EntityId `yaml:"parent"`
}

type SelectSpec struct {
	Component string `yaml:"component"`
	Mutable   bool   `yaml:"mutable"`
}

type QuerySpec struct {
	Name  string `yaml:"name"`
	Space string `yaml:"space"`

	Select  []SelectSpec `yaml:"select"`
	Without []string     `yaml:"without"`
	Maybe   []string     `yaml:"maybe"`
	Changed []string     `yaml:"changed"`
	Any     [][]string   `yaml:"any"`
}

type MutationSpec struct {
	Cycle     int            `yaml:"cycle"`
	Entity    spoke.EntityId `yaml:"entity"`
	Component string         `yaml:"component"`
	Set       map[string]any `yaml:"set"`
	Remove    bool           `yaml:"remove"`
}

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read scene %q", path)
	}

	scene, err := ParseScene(data)
	if err != nil {
		return nil, eris.Wrapf(err, "scene %q", path)
	}

	return scene, nil
}

func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, eris.Wrap(err, "parse scene")
	}

	for idx := range scene.Queries {
		if scene.Queries[idx].Name == "" {
			return nil, eris.Errorf("query at index %d has no name", idx)
		}
	}

	for _, mutation := range scene.Mutations {
		if mutation.Cycle < 1 {
			return nil, eris.Errorf("mutation of entity %s: cycle must be at least 1", mutation.Entity)
		}
	}

	return &scene, nil
}
