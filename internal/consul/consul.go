// Package consul registers the API server with HashiCorp Consul when a
// CONSUL_HTTP_ADDR is configured. Registration is optional, the server runs
// fine without an agent.
package consul

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	consulapi "github.com/hashicorp/consul/api"
)

// Registration holds a registered service so it can be deregistered on
// shutdown.
type Registration struct {
	client    *consulapi.Client
	serviceID string
}

// RegisterService registers the named service with a HTTP health check.
// Returns (nil, nil) when CONSUL_HTTP_ADDR is not set.
func RegisterService(name, address string, port int) (*Registration, error) {
	addr := os.Getenv("CONSUL_HTTP_ADDR")
	if addr == "" {
		return nil, nil
	}

	config := consulapi.DefaultConfig()
	config.Address = addr
	if token := os.Getenv("CONSUL_HTTP_TOKEN"); token != "" {
		config.Token = token
	}

	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	serviceID := fmt.Sprintf("%s-%s", name, uuid.New().String()[:8])
	registration := &consulapi.AgentServiceRegistration{
		ID:      serviceID,
		Name:    name,
		Address: address,
		Port:    port,
		Tags:    []string{"api", "http"},
		Check: &consulapi.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", address, port),
			Interval: "10s",
			Timeout:  "3s",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("register service: %w", err)
	}

	return &Registration{client: client, serviceID: serviceID}, nil
}

// Deregister removes the service from the agent. Safe on a nil receiver.
func (r *Registration) Deregister() error {
	if r == nil {
		return nil
	}
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}
	return nil
}
