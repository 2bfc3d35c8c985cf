// Package lan makes a running editor findable on the local network.
package lan

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_canvaseditor._tcp"

// Advertisement is a running mDNS responder.
type Advertisement struct {
	server *mdns.Server
}

// Advertise announces an editor listening on port. info becomes the TXT
// record, e.g. the share URL.
func Advertise(port int, info ...string) (*Advertisement, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"Canvas Editor"}
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[LAN] Advertising %s on port %d", ServiceType, port)
	return &Advertisement{server: server}, nil
}

func (a *Advertisement) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Peer is another editor found on the network.
type Peer struct {
	Name string
	Addr string
	Info []string
}

// Browse collects editors answering within timeout or until ctx ends.
func Browse(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Peer, 1)
	go func() {
		var peers []Peer
		for e := range entries {
			if peer, ok := peerFromEntry(e); ok {
				peers = append(peers, peer)
			}
		}
		done <- peers
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	peers := <-done
	if err != nil {
		return peers, fmt.Errorf("mDNS lookup: %w", err)
	}
	return peers, nil
}

func peerFromEntry(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	return Peer{
		Name: e.Name,
		Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
		Info: e.InfoFields,
	}, true
}
