// Package bills checks whether recurring bills were paid in a period using
// declarative rules loaded from a YAML file.
package bills

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/envelope-check/internal/model"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/shopspring/decimal"
)

// Predicate is the only capability a bill rule exposes: a named test over
// one transaction.
type Predicate interface {
	Name() string
	Match(txn reconcile.Transaction) bool
}

// AmountCondition is the comparison applied to a posting amount.
type AmountCondition string

// Amount conditions.
const (
	AmountAny          AmountCondition = "any"
	AmountLessThan     AmountCondition = "lt"
	AmountLessEqual    AmountCondition = "le"
	AmountEqual        AmountCondition = "eq"
	AmountGreaterEqual AmountCondition = "ge"
	AmountGreaterThan  AmountCondition = "gt"
	AmountRange        AmountCondition = "range"
)

// Rule matches a transaction when its description matches and at least one
// posting satisfies the account, commodity and amount conditions.
type Rule struct {
	AmountValue     *decimal.Decimal
	AmountMin       *decimal.Decimal
	AmountMax       *decimal.Decimal
	accountRegex    *regexp.Regexp
	descRegex       *regexp.Regexp
	RuleName        string
	Account         string
	Description     string
	Commodity       string
	AmountCondition AmountCondition
	IsRegex         bool
}

// Name implements Predicate.
func (r *Rule) Name() string {
	return r.RuleName
}

// Validate checks the rule and compiles its patterns.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.RuleName) == "" {
		return fmt.Errorf("bill name is required")
	}
	if r.Account == "" && r.Description == "" {
		return fmt.Errorf("bill %q needs an account or description pattern", r.RuleName)
	}

	if r.AmountCondition == "" {
		r.AmountCondition = AmountAny
	}

	switch r.AmountCondition {
	case AmountAny:
	case AmountLessThan, AmountLessEqual, AmountEqual, AmountGreaterEqual, AmountGreaterThan:
		if r.AmountValue == nil {
			return fmt.Errorf("bill %q: amount condition %q requires amount_value", r.RuleName, r.AmountCondition)
		}
	case AmountRange:
		if r.AmountMin == nil && r.AmountMax == nil {
			return fmt.Errorf("bill %q: range condition requires amount_min or amount_max", r.RuleName)
		}
		if r.AmountMin != nil && r.AmountMax != nil && r.AmountMin.GreaterThan(*r.AmountMax) {
			return fmt.Errorf("bill %q: amount_min must be less than or equal to amount_max", r.RuleName)
		}
	default:
		return fmt.Errorf("bill %q: unknown amount condition %q", r.RuleName, r.AmountCondition)
	}

	if r.IsRegex {
		var err error
		if r.Account != "" {
			if r.accountRegex, err = regexp.Compile(r.Account); err != nil {
				return fmt.Errorf("bill %q: invalid account pattern: %w", r.RuleName, err)
			}
		}
		if r.Description != "" {
			if r.descRegex, err = regexp.Compile(r.Description); err != nil {
				return fmt.Errorf("bill %q: invalid description pattern: %w", r.RuleName, err)
			}
		}
	}

	return nil
}

// Match implements Predicate.
func (r *Rule) Match(txn reconcile.Transaction) bool {
	if len(txn.Postings) == 0 {
		return false
	}
	if !r.matchesText(txn.Postings[0].Description, r.Description, r.descRegex) {
		return false
	}

	for _, posting := range txn.Postings {
		if r.matchesPosting(posting) {
			return true
		}
	}
	return false
}

func (r *Rule) matchesPosting(posting model.Posting) bool {
	if !r.matchesText(posting.Account, r.Account, r.accountRegex) {
		return false
	}
	if r.Commodity != "" && posting.Commodity != r.Commodity {
		return false
	}
	return r.matchesAmount(posting.Amount)
}

// matchesText compares case-insensitively, or with re when the rule uses
// regular expressions. An empty pattern matches everything.
func (r *Rule) matchesText(value, pattern string, re *regexp.Regexp) bool {
	if pattern == "" {
		return true
	}
	if r.IsRegex {
		return re != nil && re.MatchString(value)
	}
	return strings.EqualFold(value, pattern)
}

func (r *Rule) matchesAmount(raw string) bool {
	if r.AmountCondition == AmountAny || r.AmountCondition == "" {
		return true
	}

	amount, err := reconcile.ParseAmount(raw)
	if err != nil {
		return false
	}

	switch r.AmountCondition {
	case AmountLessThan:
		return amount.LessThan(*r.AmountValue)
	case AmountLessEqual:
		return amount.LessThanOrEqual(*r.AmountValue)
	case AmountEqual:
		return amount.Equal(*r.AmountValue)
	case AmountGreaterEqual:
		return amount.GreaterThanOrEqual(*r.AmountValue)
	case AmountGreaterThan:
		return amount.GreaterThan(*r.AmountValue)
	case AmountRange:
		if r.AmountMin != nil && amount.LessThan(*r.AmountMin) {
			return false
		}
		if r.AmountMax != nil && amount.GreaterThan(*r.AmountMax) {
			return false
		}
		return true
	}

	return false
}
