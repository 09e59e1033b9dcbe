// Package scenario replays scripted cursor sessions against an
// in-memory terminal, producing deterministic frame traces. A script
// stands in for the interactive session the animation normally reacts
// to: cursor positions with modes, dwell times and live option changes.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/smear/internal/config"
)

// TextSpan paints background text, which the particle pass steers
// around.
type TextSpan struct {
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
	Text string `yaml:"text"`
}

// Step is one scripted beat: optionally reconfigure, optionally move
// the cursor, then let the animation tick for Hold seconds, or to rest
// when Hold is zero.
type Step struct {
	Move    []int         `yaml:"move"` // [row, col]; empty means no cursor event
	Mode    string        `yaml:"mode"`
	Context string        `yaml:"context"`
	Hold    float64       `yaml:"hold"`
	Options *config.Patch `yaml:"options"`
}

// Scenario is a scripted cursor session.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Rows        int           `yaml:"rows"`
	Cols        int           `yaml:"cols"`
	Seed        int64         `yaml:"seed"`
	Text        []TextSpan    `yaml:"text"`
	Options     *config.Patch `yaml:"options"`
	Steps       []Step        `yaml:"steps"`
}

// Load reads and validates a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scn Scenario
	if err := yaml.Unmarshal(data, &scn); err != nil {
		return nil, err
	}
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	return &scn, nil
}

func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s: no steps", s.Name)
	}
	if s.Rows < 0 || s.Cols < 0 {
		return fmt.Errorf("scenario %s: negative viewport", s.Name)
	}
	for i, st := range s.Steps {
		if n := len(st.Move); n != 0 && n != 2 {
			return fmt.Errorf("scenario %s step %d: move wants [row, col], got %d values", s.Name, i+1, n)
		}
		if st.Hold < 0 {
			return fmt.Errorf("scenario %s step %d: negative hold", s.Name, i+1)
		}
	}
	return nil
}

// Presets returns the built-in demonstration scenarios.
func Presets() []*Scenario {
	return []*Scenario{sweep(), zigzag(), editing()}
}

// Preset returns a built-in scenario by name.
func Preset(name string) (*Scenario, error) {
	for _, s := range Presets() {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown preset %q", name)
}

func sweep() *Scenario {
	return &Scenario{
		Name:        "sweep",
		Description: "long horizontal dashes across one line",
		Seed:        1,
		Text: []TextSpan{
			{Row: 12, Col: 4, Text: "the quick brown fox jumps over the lazy dog"},
		},
		Steps: []Step{
			{Move: []int{12, 4}},
			{Move: []int{12, 70}},
			{Move: []int{12, 10}},
			{Move: []int{12, 46}},
		},
	}
}

func zigzag() *Scenario {
	return &Scenario{
		Name:        "zigzag",
		Description: "diagonal hops between the screen corners",
		Seed:        7,
		Steps: []Step{
			{Move: []int{2, 4}},
			{Move: []int{20, 70}},
			{Move: []int{3, 60}},
			{Move: []int{18, 8}},
			{Move: []int{10, 40}},
		},
	}
}

func editing() *Scenario {
	return &Scenario{
		Name:        "editing",
		Description: "mode changes with bar cursors and dwell pauses",
		Seed:        3,
		Text: []TextSpan{
			{Row: 8, Col: 10, Text: "func main() {"},
			{Row: 9, Col: 12, Text: `fmt.Println("hi")`},
			{Row: 10, Col: 10, Text: "}"},
		},
		Steps: []Step{
			{Move: []int{8, 10}},
			{Move: []int{9, 28}, Hold: 0.2},
			{Move: []int{9, 28}, Mode: "i"},
			{Move: []int{9, 14}, Mode: "i"},
			{Move: []int{10, 10}, Mode: "n"},
		},
	}
}
