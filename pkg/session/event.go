package session

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/interact"
)

// EventType names an input event.
type EventType string

const (
	EventDown  EventType = "down"
	EventMove  EventType = "move"
	EventUp    EventType = "up"
	EventClick EventType = "click" // down and up at the same point
	EventKey   EventType = "key"
	EventMode  EventType = "mode"
)

// KeyPause toggles the session clock.
const KeyPause = " "

// Event is one input from the input collaborator, already translated to
// mechanism coordinates. At is the elapsed time it was observed at.
type Event struct {
	Type EventType     `yaml:"type"`
	At   time.Duration `yaml:"at"`
	X    float64       `yaml:"x"`
	Y    float64       `yaml:"y"`
	Key  string        `yaml:"key,omitempty"`
	Mode string        `yaml:"mode,omitempty"`
}

// Point returns the event position.
func (e Event) Point() geom.Point {
	return geom.Pt(e.X, e.Y)
}

// Script is a recorded sequence of events, replayed in order.
type Script struct {
	Events []Event `yaml:"events"`
}

// ParseScript decodes a YAML event script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("session: parse script: %w", err)
	}
	for i, e := range s.Events {
		if err := e.validate(); err != nil {
			return Script{}, fmt.Errorf("session: event %d: %w", i, err)
		}
	}
	return s, nil
}

func (e Event) validate() error {
	switch e.Type {
	case EventDown, EventMove, EventUp, EventClick:
	case EventKey:
		if e.Key == "" {
			return fmt.Errorf("key event without a key")
		}
	case EventMode:
		if _, err := interact.ParseMode(e.Mode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
