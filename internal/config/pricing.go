package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingPolicy holds the operator-tunable pricing defaults applied when an
// order does not specify them.
type PricingPolicy struct {
	// DefaultCurrency is the system default currency; equivalent amounts
	// are expressed in it and its exchange rate is fixed at 1.0.
	DefaultCurrency string `mapstructure:"defaultCurrency"`
	// DefaultDiscountMode applies to newly created lines.
	DefaultDiscountMode string `mapstructure:"defaultDiscountMode"`
	// DisplayScale is the decimal scale used when amounts are rendered in
	// API responses. Internal arithmetic is not rounded.
	DisplayScale int32 `mapstructure:"displayScale"`
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		DefaultCurrency:     "USD",
		DefaultDiscountMode: "AMOUNT",
		DisplayScale:        2,
	}
}

// PricingPolicyHolder exposes the current policy and hot-reloads it when the
// pricing.yml config file changes.
type PricingPolicyHolder struct {
	current atomic.Value // holds PricingPolicy
}

func NewPricingPolicyHolder() (*PricingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/orderdesk/config")
	v.AddConfigPath("/etc/orderdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPricingPolicy()
		v.SetDefault("pricing.defaultCurrency", defaults.DefaultCurrency)
		v.SetDefault("pricing.defaultDiscountMode", defaults.DefaultDiscountMode)
		v.SetDefault("pricing.displayScale", defaults.DisplayScale)
	}

	var policy PricingPolicy
	if err := v.UnmarshalKey("pricing", &policy); err != nil {
		return nil, err
	}
	if err := validatePricingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &PricingPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingPolicy
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingPolicy(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPricingPolicyHolder wraps a fixed policy without any file
// watching. Tests use it to pin a policy for a service under test.
func NewStaticPricingPolicyHolder(policy PricingPolicy) *PricingPolicyHolder {
	holder := &PricingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *PricingPolicyHolder) Get() PricingPolicy {
	return h.current.Load().(PricingPolicy)
}

func validatePricingPolicy(policy PricingPolicy) error {
	if strings.TrimSpace(policy.DefaultCurrency) == "" {
		return errors.New("pricing.defaultCurrency cannot be empty")
	}
	switch strings.ToUpper(strings.TrimSpace(policy.DefaultDiscountMode)) {
	case "AMOUNT", "PERCENTAGE":
	default:
		return errors.New("pricing.defaultDiscountMode must be AMOUNT or PERCENTAGE")
	}
	if policy.DisplayScale < 0 || policy.DisplayScale > 6 {
		return errors.New("pricing.displayScale must be between 0 and 6")
	}
	return nil
}
