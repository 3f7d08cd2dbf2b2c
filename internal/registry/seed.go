package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"example.com/mergington/internal/domain"
)

//go:embed seed/activities.yaml
var defaultSeed []byte

type seedDocument struct {
	Activities []seedActivity `yaml:"activities"`
}

type seedActivity struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

// DefaultSeed returns the activities compiled into the binary.
func DefaultSeed() ([]domain.Activity, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeedFile reads a seed document from disk. An empty path yields DefaultSeed.
func LoadSeedFile(path string) ([]domain.Activity, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document, preserving activity order.
func ParseSeed(data []byte) ([]domain.Activity, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(doc.Activities) == 0 {
		return nil, errors.New("seed contains no activities")
	}

	out := make([]domain.Activity, 0, len(doc.Activities))
	for _, sa := range doc.Activities {
		participants := sa.Participants
		if participants == nil {
			participants = []string{}
		}
		activity := domain.Activity{
			Name:            sa.Name,
			Description:     sa.Description,
			Schedule:        sa.Schedule,
			MaxParticipants: sa.MaxParticipants,
			Participants:    participants,
		}
		if err := activity.Validate(); err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, nil
}
