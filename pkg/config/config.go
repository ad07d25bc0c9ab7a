package config

import (
	"fmt"
	"os"

	"github.com/open-teleop/steering/pkg/geometry"
	"gopkg.in/yaml.v3"
)

// Route is the waypoint file: an ordered list of walk instructions.
type Route struct {
	Instructions []Instruction `yaml:"instructions" json:"instructions"`
}

// Instruction is one route step.
type Instruction struct {
	Walk Walk `yaml:"walk" json:"walk"`
}

// Walk is a leg of the route. Only To participates in steering.
type Walk struct {
	From [3]float64 `yaml:"from" json:"from"`
	To   [3]float64 `yaml:"to" json:"to"`
}

// LoadRoute loads the waypoint list from path.
func LoadRoute(path string) (*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading route file: %w", err)
	}

	var route Route
	if err := yaml.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("error parsing route file: %w", err)
	}

	if len(route.Instructions) == 0 {
		return nil, fmt.Errorf("route file '%s' has no instructions", path)
	}

	return &route, nil
}

// Targets returns the `to` point of every instruction in order.
func (r *Route) Targets() []geometry.Vec3 {
	out := make([]geometry.Vec3, 0, len(r.Instructions))
	for _, in := range r.Instructions {
		out = append(out, geometry.FromArray(in.Walk.To))
	}
	return out
}
