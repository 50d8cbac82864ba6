package channel

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_peerstudio._tcp"

// Advertise announces a hosted session on the local network so peers can
// join without typing an address. The returned server must be shut down
// when the session ends.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"", // default ".local" domain
		"", // default OS hostname
		port,
		nil, // auto-detect IPs
		[]string{"PeerStudio"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks up advertised sessions and reports each "host:port" found.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	go func() {
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
		}
	}()
	return mdns.Lookup(serviceType, entries)
}
