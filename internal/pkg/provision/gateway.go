package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nimbushost/NimbusPanel/internal/pkg/env"
)

// InstanceSpec describes the machine to create at the compute provider.
type InstanceSpec struct {
	PlanSpec string
	Label    string
	Region   string
}

// InstanceStatus is the provider-side state of a machine. Credentials are
// only populated once Ready is true.
type InstanceStatus struct {
	Ready     bool
	IPAddress string
	Username  string
	Password  string
}

// Gateway is the compute provider surface the hosting engine depends on.
type Gateway interface {
	// Create starts a new instance and returns the provider instance ID.
	Create(ctx context.Context, spec InstanceSpec) (string, error)
	// FetchStatus reports whether the instance finished building and, once it
	// has, the access credentials.
	FetchStatus(ctx context.Context, instanceID string) (*InstanceStatus, error)
	// Delete destroys the instance. A missing instance is not an error, the
	// returned bool reports whether the provider still knew the instance.
	Delete(ctx context.Context, instanceID string) (bool, error)
}

// ProviderError wraps a provider failure and classifies it. Transient
// failures (network errors, 5xx, rate limits) may succeed on retry and must
// not mark a provisioning attempt as permanently failed.
type ProviderError struct {
	Op        string
	Status    int
	Transient bool
	Message   string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider %s failed: status=%d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.Op, e.Message)
}

// IsTransient reports whether err is a provider failure worth retrying.
// Unclassified errors (network timeouts, DNS) count as transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return err != nil
}

// NewGatewayFromEnv selects the gateway implementation. The placeholder
// gateway is only available outside production so a misconfigured deployment
// can never silently fake machines.
func NewGatewayFromEnv() (Gateway, error) {
	mode := strings.ToLower(strings.TrimSpace(env.GetEnv("PROVIDER_MODE", "http")))
	switch mode {
	case "", "http":
		return NewHTTPGatewayFromEnv()
	case "placeholder":
		if env.IsProd() {
			return nil, errors.New("PROVIDER_MODE=placeholder is not allowed in production")
		}
		return NewPlaceholderGateway(), nil
	default:
		return nil, fmt.Errorf("unknown PROVIDER_MODE: %s", mode)
	}
}
