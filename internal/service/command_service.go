package service

import (
	"context"
	"fmt"
	"time"

	"IotMonitor.api/internal/hardware"
	"IotMonitor.api/internal/iothub"
	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/metrics"
	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/throttle"
)

// DeviceInvoker calls a direct method on the device behind the message hub.
type DeviceInvoker interface {
	InvokeMethod(ctx context.Context, method string, payload map[string]any) (*iothub.MethodResponse, error)
}

// CommandService relays read/call actions on hardware to the device.
type CommandService struct {
	registry *hardware.Registry
	invoker  DeviceInvoker
	throttle throttle.Throttle
	minPause time.Duration
	logger   *logging.Logger
}

// NewCommandService wires the dispatcher. invoker may be nil when no message
// hub is configured, in which case every command fails with ErrDispatch.
func NewCommandService(registry *hardware.Registry, invoker DeviceInvoker, t throttle.Throttle, minPause time.Duration, logger *logging.Logger) *CommandService {
	if t == nil {
		t = throttle.NewMemory()
	}
	return &CommandService{
		registry: registry,
		invoker:  invoker,
		throttle: t,
		minPause: minPause,
		logger:   logger,
	}
}

// Hardware lists the hardware definition tree.
func (s *CommandService) Hardware() []models.HardwareDefinition {
	return s.registry.List()
}

// Invoke validates cmd against the registry and forwards it once. No retry.
func (s *CommandService) Invoke(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	logger := logging.FromContext(ctx, s.logger).With("method", string(cmd.Method), "target", cmd.Target())

	result, err := s.invoke(ctx, cmd, logger)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Method), outcome).Inc()
	return result, err
}

func (s *CommandService) invoke(ctx context.Context, cmd models.Command, logger *logging.Logger) (*models.CommandResult, error) {
	if !cmd.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cmd.Method)
	}

	target, ok := s.registry.Find(cmd.HardwareID, cmd.RelayID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHardwareMissing, cmd.Target())
	}
	if !target.Supports(cmd.Method) {
		return nil, fmt.Errorf("%w: %s is not %s", ErrNotSupported, cmd.Target(), verbFor(cmd.Method))
	}

	allowed, err := s.throttle.Allow(ctx, cmd.Target()+":"+string(cmd.Method), s.minPause)
	if err != nil {
		// a throttle store outage does not block commands
		logger.Warn("throttle unavailable, allowing command", logging.AttachError(err)...)
	} else if !allowed {
		return nil, ErrThrottled
	}

	if s.invoker == nil {
		return nil, fmt.Errorf("%w: no message hub configured", ErrDispatch)
	}

	logger.Info("invoking method on hardware", "payload", cmd.DevicePayload())
	resp, err := s.invoker.InvokeMethod(ctx, string(cmd.Method), cmd.DevicePayload())
	if err != nil {
		logger.Error("device invocation failed", logging.AttachError(err)...)
		return nil, fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	return &models.CommandResult{Status: resp.Status, Payload: resp.Payload}, nil
}

func verbFor(m models.CommandMethod) string {
	if m == models.MethodRead {
		return "readable"
	}
	return "callable"
}
