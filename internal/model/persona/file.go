package persona

import (
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// fileDoc is the user-supplied personality table document:
//
//	default: neutral
//	personalities:
//	  neutral: Act according to your default behaviour.
//	  pirate: Answer like a seasoned pirate.
type fileDoc struct {
	Default       string            `yaml:"default"`
	Personalities map[string]string `yaml:"personalities"`
}

// LoadFile reads a personality table from path. A missing or malformed file
// falls back silently to the seed table, matching the behaviour users of the
// original client rely on for their drop-in personality files. The returned
// key is the table's default personality.
func LoadFile(path string) ([]Personality, string) {
	if path == "" {
		return Seed(), DefaultKey
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("personality table unreadable, using seed table")
		return Seed(), DefaultKey
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("personality table malformed, using seed table")
		return Seed(), DefaultKey
	}
	if len(doc.Personalities) == 0 {
		log.Warn().Str("path", path).Msg("personality table empty, using seed table")
		return Seed(), DefaultKey
	}
	if _, ok := doc.Personalities[doc.Default]; !ok {
		log.Warn().Str("path", path).Str("default", doc.Default).
			Msg("personality table default missing, using seed table")
		return Seed(), DefaultKey
	}

	keys := make([]string, 0, len(doc.Personalities))
	for key := range doc.Personalities {
		if key != doc.Default {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	items := []Personality{{Key: doc.Default, Prompt: doc.Personalities[doc.Default]}}
	for _, key := range keys {
		items = append(items, Personality{Key: key, Prompt: doc.Personalities[key]})
	}
	return items, doc.Default
}
