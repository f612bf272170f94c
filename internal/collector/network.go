// Network I/O counter reader: gathers cumulative RX/TX byte counters.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/net"
)

// ErrNoCounters is returned when the platform reports no interfaces at all.
var ErrNoCounters = errors.New("no network counters reported")

// NetworkCounters reads cumulative byte counters from the OS network stack.
// By default all interfaces are summed; Interface restricts the reading to a
// single NIC.
type NetworkCounters struct {
	iface           string
	excludeLoopback bool

	ioCounters func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
}

// NetworkOption configures a NetworkCounters reader.
type NetworkOption func(*NetworkCounters)

// WithInterface restricts counters to the named interface.
func WithInterface(name string) NetworkOption {
	return func(c *NetworkCounters) { c.iface = name }
}

// WithoutLoopback drops loopback interfaces from the aggregate.
func WithoutLoopback() NetworkOption {
	return func(c *NetworkCounters) { c.excludeLoopback = true }
}

// NewNetworkCounters creates a gopsutil-backed counter reader.
func NewNetworkCounters(opts ...NetworkOption) *NetworkCounters {
	c := &NetworkCounters{
		ioCounters: net.IOCountersWithContext,
		interfaces: net.InterfacesWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the reader identifier.
func (c *NetworkCounters) Name() string {
	if c.iface != "" {
		return "network:" + c.iface
	}
	return "network"
}

// ReadCounters gathers cumulative RX/TX bytes.
func (c *NetworkCounters) ReadCounters(ctx context.Context) (uint64, uint64, error) {
	// The aggregate row from gopsutil is the cheapest path when nothing is filtered.
	if c.iface == "" && !c.excludeLoopback {
		counters, err := c.ioCounters(ctx, false)
		if err != nil {
			return 0, 0, fmt.Errorf("reading network counters: %w", err)
		}
		if len(counters) == 0 {
			return 0, 0, ErrNoCounters
		}
		return counters[0].BytesSent, counters[0].BytesRecv, nil
	}

	counters, err := c.ioCounters(ctx, true)
	if err != nil {
		return 0, 0, fmt.Errorf("reading per-interface counters: %w", err)
	}
	if len(counters) == 0 {
		return 0, 0, ErrNoCounters
	}

	if c.iface != "" {
		for _, stat := range counters {
			if stat.Name == c.iface {
				return stat.BytesSent, stat.BytesRecv, nil
			}
		}
		return 0, 0, fmt.Errorf("interface %q not found", c.iface)
	}

	loopback, err := c.loopbackNames(ctx)
	if err != nil {
		return 0, 0, err
	}
	var sent, recv uint64
	for _, stat := range counters {
		if loopback[stat.Name] {
			continue
		}
		sent += stat.BytesSent
		recv += stat.BytesRecv
	}
	return sent, recv, nil
}

func (c *NetworkCounters) loopbackNames(ctx context.Context) (map[string]bool, error) {
	ifaces, err := c.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}
	names := make(map[string]bool)
	for _, iface := range ifaces {
		for _, flag := range iface.Flags {
			if flag == "loopback" {
				names[iface.Name] = true
				break
			}
		}
	}
	return names, nil
}
