package discovery

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hashicorp/consul/api"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/config"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

func NewServiceRegistry(config *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = config.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: config,
	}, nil
}

func (sr *ServiceRegistry) registration() (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(sr.config.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %v", sr.config.Port, err)
	}

	return &api.AgentServiceRegistration{
		ID:      sr.config.ServiceID + "-http",
		Name:    sr.config.ServiceName,
		Port:    port,
		Address: sr.config.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", sr.config.ServiceAddress, sr.config.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"quiz", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}, nil
}

// Register announces the HTTP endpoint with a /health check.
func (sr *ServiceRegistry) Register() error {
	reg, err := sr.registration()
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %v", err)
	}

	slog.Info("Registered service with Consul", "id", reg.ID, "address", reg.Address, "port", reg.Port)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	id := sr.config.ServiceID + "-http"
	if err := sr.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister service %s: %v", id, err)
	}
	return nil
}
