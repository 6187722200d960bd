// Package layout describes the fixed set of tables on the floor and where the
// presentation layer draws them.
package layout

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalidLayout = errors.New("invalid_layout")

type Position struct {
	Col        int  `yaml:"col" json:"col"`
	Row        int  `yaml:"row" json:"row"`
	FinalTable bool `yaml:"final,omitempty" json:"isFinalTable,omitempty"`
}

type Table struct {
	Number   string `yaml:"number"`
	Position `yaml:",inline"`
	Rotation int `yaml:"rotation,omitempty"`
}

type Layout struct {
	Tables []Table `yaml:"tables"`
}

// Default returns the built-in floor plan.
func Default() Layout {
	l, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded layout: %v", err))
	}
	return l
}

// Load reads a layout file; an empty path yields Default.
func Load(path string) (Layout, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (l Layout) Validate() error {
	if len(l.Tables) == 0 {
		return fmt.Errorf("%w: no tables", ErrInvalidLayout)
	}
	seen := make(map[string]struct{}, len(l.Tables))
	for i, t := range l.Tables {
		if t.Number == "" {
			return fmt.Errorf("%w: table %d has no number", ErrInvalidLayout, i)
		}
		if _, dup := seen[t.Number]; dup {
			return fmt.Errorf("%w: duplicate table %s", ErrInvalidLayout, t.Number)
		}
		if t.Rotation < 0 || t.Rotation >= 360 {
			return fmt.Errorf("%w: table %s rotation %d", ErrInvalidLayout, t.Number, t.Rotation)
		}
		seen[t.Number] = struct{}{}
	}
	return nil
}

func (l Layout) Numbers() []string {
	out := make([]string, len(l.Tables))
	for i, t := range l.Tables {
		out[i] = t.Number
	}
	return out
}

// CompareNumbers orders table numbers numerically, falling back to string
// order for non-numeric numbers.
func CompareNumbers(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}
