package bills

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk layout of a bill file.
type ruleFile struct {
	Bills []ruleEntry `yaml:"bills"`
}

type ruleEntry struct {
	Name            string `yaml:"name"`
	Account         string `yaml:"account"`
	Description     string `yaml:"description"`
	Commodity       string `yaml:"commodity"`
	AmountCondition string `yaml:"amount_condition"`
	AmountValue     string `yaml:"amount_value"`
	AmountMin       string `yaml:"amount_min"`
	AmountMax       string `yaml:"amount_max"`
	Regex           bool   `yaml:"regex"`
}

// LoadFile reads bill rules from a YAML file.
func LoadFile(path string) ([]Predicate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bill file: %w", err)
	}
	defer f.Close()

	rules, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Load decodes and validates bill rules. Names must be unique; the order of
// the file is kept.
func Load(r io.Reader) ([]Predicate, error) {
	var file ruleFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse bill file: %w", err)
	}

	if len(file.Bills) == 0 {
		return nil, fmt.Errorf("no bills defined: expected a top-level 'bills' list")
	}

	seen := make(map[string]bool, len(file.Bills))
	predicates := make([]Predicate, 0, len(file.Bills))

	for i, entry := range file.Bills {
		rule, err := entry.toRule()
		if err != nil {
			return nil, fmt.Errorf("bill %d: %w", i+1, err)
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		if seen[rule.RuleName] {
			return nil, fmt.Errorf("duplicate bill name %q", rule.RuleName)
		}
		seen[rule.RuleName] = true
		predicates = append(predicates, rule)
	}

	return predicates, nil
}

func (e ruleEntry) toRule() (*Rule, error) {
	value, err := optionalDecimal(e.AmountValue, "amount_value")
	if err != nil {
		return nil, err
	}
	minimum, err := optionalDecimal(e.AmountMin, "amount_min")
	if err != nil {
		return nil, err
	}
	maximum, err := optionalDecimal(e.AmountMax, "amount_max")
	if err != nil {
		return nil, err
	}

	return &Rule{
		RuleName:        e.Name,
		Account:         e.Account,
		Description:     e.Description,
		Commodity:       e.Commodity,
		AmountCondition: AmountCondition(e.AmountCondition),
		AmountValue:     value,
		AmountMin:       minimum,
		AmountMax:       maximum,
		IsRegex:         e.Regex,
	}, nil
}

func optionalDecimal(s, field string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return &d, nil
}
