package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 400.0, c.WalkingRadius)
	assert.Equal(t, 1.2, c.WalkingSpeed)
	assert.Equal(t, int64(3600), c.MaxWalkWaitTime)
	assert.Equal(t, int64(1800), c.MaxTransferTime)
	assert.Equal(t, int64(120), c.MinTransferTime)
	assert.Equal(t, int64(30), c.DefaultWaitTime)
	assert.Equal(t, 1.0, c.MinAvgSpeed)
	assert.Equal(t, 22.2, c.MaxAvgSpeed)
	assert.Equal(t, int64(1800), c.RideLinkMaxSecs)
	assert.NoError(t, c.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WALKING_RADIUS", "500")
	t.Setenv("MIN_TRANSFER_TIME", "60")
	t.Setenv("ROUTE_LIMIT", "10")
	t.Setenv("POSTGRES_DSN", "postgres://x")

	c := FromEnv()
	assert.Equal(t, 500.0, c.WalkingRadius)
	assert.Equal(t, int64(60), c.MinTransferTime)
	assert.Equal(t, 10, c.RouteLimit)
	assert.Equal(t, "postgres://x", c.PostgresDSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"transfer window inverted", func(c *Config) { c.MaxTransferTime = 10; c.MinTransferTime = 20 }, true},
		{"non-positive walking radius", func(c *Config) { c.WalkingRadius = 0 }, true},
		{"non-positive walking speed", func(c *Config) { c.WalkingSpeed = -1 }, true},
		{"non-positive dwell", func(c *Config) { c.DefaultWaitTime = 0 }, true},
		{"min speed above max", func(c *Config) { c.MinAvgSpeed = 100 }, true},
		{"min speed non-positive", func(c *Config) { c.MinAvgSpeed = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDwellFor(t *testing.T) {
	c := Default()
	c.WaitTimeByType = map[string]int64{"BRT": 15}
	assert.Equal(t, int64(15), c.DwellFor("BRT"))
	assert.Equal(t, int64(30), c.DwellFor("regular"))
}

func TestBindFlags(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.BindFlags(fs)
	err := fs.Parse([]string{"-walking-radius=777", "-route-limit=5"})
	assert.NoError(t, err)
	assert.Equal(t, 777.0, c.WalkingRadius)
	assert.Equal(t, 5, c.RouteLimit)
}
