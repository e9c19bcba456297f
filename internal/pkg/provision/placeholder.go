package provision

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// PlaceholderGateway fakes a compute provider for local development and
// tests. Instances become ready after a fixed number of status polls so the
// lazy polling path can be exercised end to end.
type PlaceholderGateway struct {
	mu        sync.Mutex
	instances map[string]*placeholderInstance

	// PollsUntilReady controls how many FetchStatus calls an instance needs
	// before it reports ready. Zero means ready immediately.
	PollsUntilReady int
}

type placeholderInstance struct {
	spec    InstanceSpec
	polls   int
	created time.Time
}

func NewPlaceholderGateway() *PlaceholderGateway {
	return &PlaceholderGateway{
		instances:       make(map[string]*placeholderInstance),
		PollsUntilReady: 1,
	}
}

func (g *PlaceholderGateway) Create(_ context.Context, spec InstanceSpec) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	id := "ph-" + hex.EncodeToString(b)

	g.mu.Lock()
	g.instances[id] = &placeholderInstance{spec: spec, created: time.Now()}
	g.mu.Unlock()

	return id, nil
}

func (g *PlaceholderGateway) FetchStatus(_ context.Context, instanceID string) (*InstanceStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	inst, ok := g.instances[instanceID]
	if !ok {
		return nil, &ProviderError{Op: "status", Status: 404, Message: "unknown instance " + instanceID}
	}

	inst.polls++
	if inst.polls <= g.PollsUntilReady {
		return &InstanceStatus{Ready: false}, nil
	}
	return &InstanceStatus{
		Ready:     true,
		IPAddress: fmt.Sprintf("10.0.%d.%d", len(instanceID)%250, inst.polls%250),
		Username:  "root",
		Password:  "placeholder-" + instanceID,
	}, nil
}

func (g *PlaceholderGateway) Delete(_ context.Context, instanceID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.instances[instanceID]; !ok {
		return false, nil
	}
	delete(g.instances, instanceID)
	return true, nil
}
