package capabilities

import "gopkg.in/yaml.v3"

// Language describes a target project language the generator knows how to
// containerize.
type Language struct {
	// Language identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	// Display information
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// BaseImage is a hint passed to the prompt, e.g. "node:20-alpine"
	BaseImage string `yaml:"base_image" json:"base_image"`

	// Manifests are files whose presence usually identifies the language
	Manifests []string `yaml:"manifests" json:"manifests"`
}

// Model describes one model offered by a generation provider.
type Model struct {
	ID          string `yaml:"-" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
	MaxOutput   int    `yaml:"max_output" json:"max_output"`
}

// Provider describes a generation backend and its models.
type Provider struct {
	ID          string  `yaml:"-" json:"id"`
	DisplayName string  `yaml:"display_name" json:"display_name"`
	Kind        string  `yaml:"kind" json:"kind"` // openai-compatible | anthropic | offline
	BaseURL     string  `yaml:"base_url" json:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env" json:"api_key_env,omitempty"`
	Models      []Model `yaml:"-" json:"models"`
}

// UnmarshalYAML preserves model order from the YAML file
func (p *Provider) UnmarshalYAML(node *yaml.Node) error {
	type plain Provider
	var base plain
	if err := node.Decode(&base); err != nil {
		return err
	}
	*p = Provider(base)

	models, err := orderedEntries[Model](node, "models")
	if err != nil {
		return err
	}
	for _, e := range models {
		e.value.ID = e.key
		p.Models = append(p.Models, e.value)
	}
	return nil
}

// languageFile is the document shape of config/languages.yaml
type languageFile struct {
	Languages []Language `yaml:"-"`
}

func (f *languageFile) UnmarshalYAML(node *yaml.Node) error {
	entries, err := orderedEntries[Language](node, "languages")
	if err != nil {
		return err
	}
	for _, e := range entries {
		e.value.ID = e.key
		f.Languages = append(f.Languages, e.value)
	}
	return nil
}

// providerFile is the document shape of config/providers.yaml
type providerFile struct {
	Providers []Provider `yaml:"-"`
}

func (f *providerFile) UnmarshalYAML(node *yaml.Node) error {
	entries, err := orderedEntries[Provider](node, "providers")
	if err != nil {
		return err
	}
	for _, e := range entries {
		e.value.ID = e.key
		f.Providers = append(f.Providers, e.value)
	}
	return nil
}

type entry[T any] struct {
	key   string
	value T
}

// orderedEntries decodes the mapping stored under field into key/value pairs
// in document order. A map decode would lose that order.
func orderedEntries[T any](node *yaml.Node, field string) ([]entry[T], error) {
	// node.Content alternates: key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != field {
			continue
		}
		mapping := node.Content[i+1]
		out := make([]entry[T], 0, len(mapping.Content)/2)
		for j := 0; j+1 < len(mapping.Content); j += 2 {
			var v T
			if err := mapping.Content[j+1].Decode(&v); err != nil {
				return nil, err
			}
			out = append(out, entry[T]{key: mapping.Content[j].Value, value: v})
		}
		return out, nil
	}
	return nil, nil
}
