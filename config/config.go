// Package config loads the cut thresholds and pt binning used by the
// post-processing pass.
//
// The document is JSON or YAML with a flat set of keys. Every threshold is
// required; a missing key is a startup error.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingKey = errors.New("missing required key")
	ErrInvalid    = errors.New("invalid value")
)

// Cuts is the typed configuration snapshot shared by the selection engine
// and the histogram aggregator.
type Cuts struct {
	PtRangeMin float64 `yaml:"ptRangeMin"`
	PtRangeMax float64 `yaml:"ptRangeMax"`
	PtBins     int     `yaml:"-"`
	UsePid     bool    `yaml:"UsePid"`

	PosZMax  float64 `yaml:"posZMax"`
	EtaMax   float64 `yaml:"etaMax"`
	DCAzMax  float64 `yaml:"dcazMax"`
	DCAxyMax float64 `yaml:"dcaxyMax"`

	TPCClustersMin                float64 `yaml:"TPCclustersMin"`
	TPCCrossedRowsMin             float64 `yaml:"TPCcrossedrowsMin"`
	TPCCrossedRowsOverClustersMin float64 `yaml:"TPCcrossedrowsOverClustersMin"`
	ITSClustersMin                float64 `yaml:"ITSclustersMin"`
	ITSClustersIBMin              float64 `yaml:"ITSclustersIBMin"`

	NSigmaTPCDeuteronMax  float64 `yaml:"nsigmaTPCDeuteronMax"`
	NSigmaTPCRejection    float64 `yaml:"nsigmaTPCRejection"`
	NSigmaTPCProtonMax    float64 `yaml:"nsigmaTPCProtonMax"`
	NSigmaTPCTOFProtonMax float64 `yaml:"nsigmaTPCTOFProtonMax"`
	PPIDThresholdProton   float64 `yaml:"pPIDThresholdProton"`

	PtDeuteronMin float64 `yaml:"ptDeuteronMin"`
	PtDeuteronMax float64 `yaml:"ptDeuteronMax"`
	PtProtonMin   float64 `yaml:"ptProtonMin"`
	PtProtonMax   float64 `yaml:"ptProtonMax"`
	PtLambdaMin   float64 `yaml:"ptLambdaMin"`
	PtLambdaMax   float64 `yaml:"ptLambdaMax"`

	DaughDCAMax         float64 `yaml:"daughDCAMax"`
	TransRadiusMin      float64 `yaml:"TransRadiusMin"`
	TransRadiusMax      float64 `yaml:"TransRadiusMax"`
	DaughTPCClustersMin float64 `yaml:"daughTPCClustersMin"`
}

// MaxPtBins bounds the configured pt binning.
const MaxPtBins = 100000

// Required lists the keys a configuration document must define.
var Required = []string{
	"ptRangeMin", "ptRangeMax", "ptBins", "UsePid",
	"posZMax", "etaMax", "dcazMax", "dcaxyMax",
	"TPCclustersMin", "TPCcrossedrowsMin", "TPCcrossedrowsOverClustersMin",
	"ITSclustersMin", "ITSclustersIBMin",
	"nsigmaTPCDeuteronMax", "nsigmaTPCRejection", "nsigmaTPCProtonMax",
	"nsigmaTPCTOFProtonMax", "pPIDThresholdProton",
	"ptDeuteronMin", "ptDeuteronMax", "ptProtonMin", "ptProtonMax",
	"ptLambdaMin", "ptLambdaMax",
	"daughDCAMax", "TransRadiusMin", "TransRadiusMax",
}

// aliases maps alternative spellings found in older cut files onto the
// canonical key.
var aliases = map[string]string{
	"TPCcrossedrowsOverclustersMin": "TPCcrossedrowsOverClustersMin",
	"DaughTPCnclsMin":               "daughTPCClustersMin",
}

// Load reads and validates the configuration document at path.
func Load(path string) (*Cuts, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cuts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cuts, nil
}

// Parse decodes a JSON or YAML document into Cuts.
func Parse(data []byte) (*Cuts, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	for alt, key := range aliases {
		if v, ok := raw[alt]; ok {
			if _, dup := raw[key]; !dup {
				raw[key] = v
			}
			delete(raw, alt)
		}
	}

	var missing []string
	for _, key := range Required {
		if v, ok := raw[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %v", ErrMissingKey, missing)
	}

	// Re-encode the normalised map so aliases land on the struct tags.
	norm, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalising config: %w", err)
	}
	var cuts Cuts
	if err := yaml.Unmarshal(norm, &cuts); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// ptBins is frequently written as a float ("100.0").
	bins, err := toFloat(raw["ptBins"])
	if err != nil {
		return nil, fmt.Errorf("%w: ptBins: %v", ErrInvalid, err)
	}
	if bins != math.Trunc(bins) || bins < 1 || bins > MaxPtBins {
		return nil, fmt.Errorf("%w: ptBins must be an integer in [1, %d], got %v", ErrInvalid, MaxPtBins, bins)
	}
	cuts.PtBins = int(bins)

	if err := cuts.Validate(); err != nil {
		return nil, err
	}
	return &cuts, nil
}

// Validate checks the internal consistency of the thresholds.
func (c *Cuts) Validate() error {
	if c.PtBins <= 0 {
		return fmt.Errorf("%w: ptBins must be positive, got %d", ErrInvalid, c.PtBins)
	}
	for _, r := range []struct {
		name     string
		min, max float64
	}{
		{"ptRange", c.PtRangeMin, c.PtRangeMax},
		{"ptDeuteron", c.PtDeuteronMin, c.PtDeuteronMax},
		{"ptProton", c.PtProtonMin, c.PtProtonMax},
		{"ptLambda", c.PtLambdaMin, c.PtLambdaMax},
		{"TransRadius", c.TransRadiusMin, c.TransRadiusMax},
	} {
		if math.IsNaN(r.min) || math.IsNaN(r.max) || r.min > r.max {
			return fmt.Errorf("%w: %s range [%v, %v]", ErrInvalid, r.name, r.min, r.max)
		}
	}
	if c.PtRangeMin == c.PtRangeMax {
		return fmt.Errorf("%w: empty ptRange [%v, %v]", ErrInvalid, c.PtRangeMin, c.PtRangeMax)
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
