package lan

import (
	"fmt"
	"log"
	"net"
)

// OutgoingIP finds the address other machines on the LAN should use.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return interfaceIP()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// interfaceIP is used on networks without internet access.
func interfaceIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("[LAN] Could not list interfaces: %v", err)
		return "127.0.0.1"
	}
	if ip := firstIPv4(addrs); ip != nil {
		return ip.String()
	}
	log.Println("[LAN] No suitable local IP found, share link uses loopback")
	return "127.0.0.1"
}

func firstIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.To4()
		}
	}
	return nil
}

// ShareURL is the link to an editor served on listenAddr, e.g. ":8888".
func ShareURL(listenAddr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", 0, fmt.Errorf("parse listen address %q: %w", listenAddr, err)
	}
	port, err := net.LookupPort("tcp", portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = OutgoingIP()
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, fmt.Sprint(port))), port, nil
}

// Online reports whether any non-loopback IPv4 interface is up.
func Online() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	return firstIPv4(addrs) != nil
}
