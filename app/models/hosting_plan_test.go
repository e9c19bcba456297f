package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowsRegion(t *testing.T) {
	p := &HostingPlan{Regions: "fra, ams,nyc"}

	assert.True(t, p.AllowsRegion("fra"))
	assert.True(t, p.AllowsRegion("AMS"))
	assert.True(t, p.AllowsRegion(" nyc "))
	assert.False(t, p.AllowsRegion("sgp"))

	// Empty region list allows everything
	open := &HostingPlan{Regions: ""}
	assert.True(t, open.AllowsRegion("anywhere"))
}
