package core

import (
	"time"
)

// Config is the instance-level configuration shared across services.
type Config struct {
	FQDN            string   `yaml:"fqdn"`
	Scheme          string   `yaml:"scheme"`
	AuthSecret      string   `yaml:"authSecret"`
	Admins          []string `yaml:"admins"`
	RefreshInterval int      `yaml:"refreshIntervalHours"`
	SendAccept      *bool    `yaml:"sendAccept"`
}

// Profile is the instance-operator metadata served over nodeinfo and
// the profile endpoint.
type Profile struct {
	Nickname          string `yaml:"nickname" json:"nickname"`
	Description       string `yaml:"description" json:"description"`
	ThemeColor        string `yaml:"themeColor" json:"themeColor"`
	MaintainerName    string `yaml:"maintainerName" json:"maintainerName"`
	MaintainerEmail   string `yaml:"maintainerEmail" json:"maintainerEmail"`
	OpenRegistrations bool   `yaml:"openRegistrations" json:"openRegistrations"`

	// internal generated
	Version string `yaml:"-" json:"version"`
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 24
	}
	if c.SendAccept == nil {
		t := true
		c.SendAccept = &t
	}
}

// BaseURL returns the canonical URL prefix of this instance.
func (c Config) BaseURL() string {
	return c.Scheme + "://" + c.FQDN
}

// StalenessWindow is how old a remote mirror may get before resolution
// refetches it.
func (c Config) StalenessWindow() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Hour
}

// ShouldSendAccept reports whether remote chapter creation replies with
// an Accept activity.
func (c Config) ShouldSendAccept() bool {
	return c.SendAccept == nil || *c.SendAccept
}

// IsAdmin reports whether the given actor ID is an instance admin.
func (c Config) IsAdmin(id string) bool {
	for _, admin := range c.Admins {
		if admin == id {
			return true
		}
	}
	return false
}
