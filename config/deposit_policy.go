package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DepositRule requires a deposit for bookings that match every set field.
// Empty Days, From/To or zero MinGuests/RestaurantID match anything.
type DepositRule struct {
	RestaurantID uint     `yaml:"restaurant_id"`
	Days         []string `yaml:"days"`
	From         string   `yaml:"from"`
	To           string   `yaml:"to"`
	MinGuests    int      `yaml:"min_guests"`
	Amount       float64  `yaml:"amount"`
}

// DepositPolicy decides the deposit amount for a booking. The first matching
// rule wins; DefaultAmount applies otherwise.
type DepositPolicy struct {
	DefaultAmount float64       `yaml:"default_amount"`
	Rules         []DepositRule `yaml:"rules"`
}

// LoadDepositPolicy reads the YAML policy file. An empty path yields a policy
// that never requires a deposit.
func LoadDepositPolicy(path string) (*DepositPolicy, error) {
	if path == "" {
		return &DepositPolicy{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deposit policy: %w", err)
	}
	return ParseDepositPolicy(raw)
}

func ParseDepositPolicy(raw []byte) (*DepositPolicy, error) {
	var p DepositPolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse deposit policy: %w", err)
	}
	for i, r := range p.Rules {
		if r.Amount < 0 {
			return nil, fmt.Errorf("deposit rule %d: negative amount", i)
		}
		for _, d := range r.Days {
			if _, ok := weekdays[strings.ToLower(d)]; !ok {
				return nil, fmt.Errorf("deposit rule %d: unknown day %q", i, d)
			}
		}
		for _, hm := range []string{r.From, r.To} {
			if hm == "" {
				continue
			}
			if _, err := time.Parse("15:04", hm); err != nil {
				return nil, fmt.Errorf("deposit rule %d: bad time %q", i, hm)
			}
		}
	}
	return &p, nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// AmountFor returns the deposit required for a booking. date is YYYY-MM-DD and
// clock is HH:MM:SS, both already validated by the caller.
func (p *DepositPolicy) AmountFor(restaurantID uint, date, clock string, guests int) float64 {
	if p == nil {
		return 0
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return p.DefaultAmount
	}
	hm := clock
	if len(hm) > 5 {
		hm = hm[:5]
	}
	for _, r := range p.Rules {
		if r.RestaurantID != 0 && r.RestaurantID != restaurantID {
			continue
		}
		if r.MinGuests > 0 && guests < r.MinGuests {
			continue
		}
		if len(r.Days) > 0 && !containsDay(r.Days, day.Weekday()) {
			continue
		}
		if r.From != "" && hm < r.From {
			continue
		}
		if r.To != "" && hm >= r.To {
			continue
		}
		return r.Amount
	}
	return p.DefaultAmount
}

func containsDay(days []string, wd time.Weekday) bool {
	for _, d := range days {
		if weekdays[strings.ToLower(d)] == wd {
			return true
		}
	}
	return false
}
