package trust

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// seedFile is the YAML shape of an on-disk trust seed:
//
//	personal:
//	  HomeNet:
//	    - aa:bb:cc:dd:ee:ff
//	public:
//	  CafeWifi:
//	    - 11:22:33:00:00:00
type seedFile struct {
	Personal map[string][]string `yaml:"personal"`
	Public   map[string][]string `yaml:"public"`
}

// LoadSeedFile reads a YAML trust file into a normalized snapshot: personal
// addresses lower-cased, public addresses reduced to prefixes, exactly as a
// trust-update command would be ingested.
func LoadSeedFile(path string) (domain.TrustSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.TrustSnapshot{}, fmt.Errorf("read trust seed: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return domain.TrustSnapshot{}, fmt.Errorf("parse trust seed %s: %w", path, err)
	}

	return domain.TrustSnapshot{
		Personal: domain.IngestPersonal(seed.Personal),
		Public:   domain.IngestPublic(seed.Public),
	}, nil
}
