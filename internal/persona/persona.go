// Package persona holds the assistant's system prompt and the static texts
// the bot replies with.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Persona struct {
	SystemPrompt       string `yaml:"system_prompt"`
	Welcome            string `yaml:"welcome"`
	Help               string `yaml:"help"`
	Channel            string `yaml:"channel"`
	ChannelUnavailable string `yaml:"channel_unavailable"`
	StatusNoProfile    string `yaml:"status_no_profile"`
	Cleared            string `yaml:"cleared"`
	Apology            string `yaml:"apology"`
	UnknownCommand     string `yaml:"unknown_command"`
}

// Default returns the built-in persona.
func Default() *Persona {
	p, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("persona: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a persona file. Empty fields fall back to the built-in
// texts; an empty path returns Default.
func Load(path string) (*Persona, error) {
	def := Default()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse persona %s: %w", path, err)
	}
	p.fillFrom(def)
	return p, nil
}

func parse(data []byte) (*Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.SystemPrompt) == "" && strings.TrimSpace(p.Welcome) == "" && strings.TrimSpace(p.Help) == "" {
		return nil, errors.New("persona has no content")
	}
	return &p, nil
}

func (p *Persona) fillFrom(def *Persona) {
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&p.SystemPrompt, def.SystemPrompt)
	fill(&p.Welcome, def.Welcome)
	fill(&p.Help, def.Help)
	fill(&p.Channel, def.Channel)
	fill(&p.ChannelUnavailable, def.ChannelUnavailable)
	fill(&p.StatusNoProfile, def.StatusNoProfile)
	fill(&p.Cleared, def.Cleared)
	fill(&p.Apology, def.Apology)
	fill(&p.UnknownCommand, def.UnknownCommand)
}

// WelcomeFor renders the welcome text for a user.
func (p *Persona) WelcomeFor(name string) string {
	if strings.Contains(p.Welcome, "%s") {
		return fmt.Sprintf(p.Welcome, name)
	}
	return p.Welcome
}

// ChannelFor renders the channel invitation with the given link.
func (p *Persona) ChannelFor(link string) string {
	if strings.Contains(p.Channel, "%s") {
		return fmt.Sprintf(p.Channel, link)
	}
	return p.Channel
}
