package category

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Override is a deployment-specific archetype loaded from YAML. The
// built-in table stays fixed; overrides are checked first so operators
// can pin unusual categories (e.g. "barre studio") to an anchor.
type Override struct {
	Substrings []string `yaml:"substrings"`
	Anchor     Anchor   `yaml:"anchor"`
}

var overrides []Override

// LoadOverrides reads archetype overrides from a YAML file and installs
// them ahead of the built-in table. A missing path is a no-op.
func LoadOverrides(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Debug("category: no override file", zap.String("path", path))
			return nil
		}
		return eris.Wrapf(err, "category: read overrides %s", path)
	}

	var loaded []Override
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return eris.Wrapf(err, "category: parse overrides %s", path)
	}

	overrides = loaded
	zap.L().Info("category: loaded anchor overrides", zap.Int("count", len(loaded)))
	return nil
}

// resolveOverride checks the installed overrides for a match.
func resolveOverride(lowered string) (Anchor, bool) {
	for _, o := range overrides {
		for _, sub := range o.Substrings {
			if sub != "" && strings.Contains(lowered, strings.ToLower(sub)) {
				return o.Anchor, true
			}
		}
	}
	return Anchor{}, false
}
