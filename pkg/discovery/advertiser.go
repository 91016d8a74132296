// Package discovery announces a running sysstats daemon over mDNS so
// consumers on the local network can find it without configuration.
package discovery

import (
	"fmt"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the mDNS service type of the sysstats daemon.
	ServiceType = "_sysstats._tcp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// Advertiser announces the daemon's transport endpoint via mDNS.
type Advertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an idle advertiser.
func NewAdvertiser() *Advertiser {
	return &Advertiser{}
}

// Advertise registers the service. Instance names the daemon (typically
// the hostname), port is the transport listen port, and txt entries
// carry informational records such as the protocol version and sensor
// count. Calling Advertise again replaces the previous announcement.
func (a *Advertiser) Advertise(instance string, port int, txt map[string]string) error {
	txtStrings := make([]string, 0, len(txt))
	for k, v := range txt {
		txtStrings = append(txtStrings, fmt.Sprintf("%s=%s", k, v))
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		txtStrings,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	a.mu.Lock()
	if a.server != nil {
		a.server.Shutdown()
	}
	a.server = server
	a.mu.Unlock()
	return nil
}

// Stop withdraws the announcement. Safe to call without a prior
// Advertise.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
