package config

import (
	"fmt"
	"time"
)

// MinJWTSecretLength is the shortest accepted HMAC secret
const MinJWTSecretLength = 16

// JWTConfig configures verification of bearer tokens issued by the platform.
// Verification is disabled when Secret is empty.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"` // Required "iss" claim when set
	Leeway time.Duration `mapstructure:"leeway"` // Clock skew tolerated on exp/nbf
}

// Enabled reports whether bearer tokens must be verified
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// Validate checks the JWT settings
func (c JWTConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if len(c.Secret) < MinJWTSecretLength {
		return fmt.Errorf("'jwt.secret' must be at least %d characters, got %d", MinJWTSecretLength, len(c.Secret))
	}
	if c.Leeway < 0 {
		return fmt.Errorf("'jwt.leeway' must be non-negative")
	}
	return nil
}
