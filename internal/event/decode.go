package event

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// particleFields mirrors Particle without its methods so decoding can start
// from non-zero defaults.
type particleFields Particle

func defaultParticle() particleFields {
	return particleFields{Mother: -1, Label: -1}
}

// UnmarshalJSON decodes a particle, defaulting Mother and Label to -1 when
// absent.
func (p *Particle) UnmarshalJSON(data []byte) error {
	raw := defaultParticle()
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Particle(raw)
	return nil
}

// UnmarshalYAML decodes a particle, defaulting Mother and Label to -1 when
// absent.
func (p *Particle) UnmarshalYAML(node *yaml.Node) error {
	raw := defaultParticle()
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = Particle(raw)
	return nil
}
