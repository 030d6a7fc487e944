package config

import (
	"fmt"
	"net"
)

// pickIP selects a suitable IPv4 address from the local interfaces,
// preferring a private (RFC1918) address unless mode is "public".
func pickIP(mode string) (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if (iface.Flags&net.FlagUp) == 0 || (iface.Flags&net.FlagLoopback) != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			ip = ip.To4()
			if ip == nil {
				continue
			}

			if mode == "private" && isPrivateIP(ip) {
				return ip, nil
			}
			if mode == "public" && !isPrivateIP(ip) {
				return ip, nil
			}
		}
	}
	return nil, fmt.Errorf("no suitable %s interface found", mode)
}

// isPrivateIP reports whether ip falls in one of the RFC1918 private
// address ranges.
func isPrivateIP(ip net.IP) bool {
	privateBlocks := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	}
	for _, block := range privateBlocks {
		_, cidr, _ := net.ParseCIDR(block)
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// Listen binds a TCP listener for the daemon and returns it alongside the
// host:port a fabricctl client should be told to dial. If cfg.Host is
// empty, the advertised host is auto-picked from the local interfaces,
// preferring a private address.
func (cfg *DaemonConfig) Listen() (net.Listener, string, error) {
	bind := cfg.Bind
	if bind == "" {
		bind = "0.0.0.0"
	}
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", bind, cfg.Port))
	if err != nil {
		return nil, "", err
	}
	actualPort := lis.Addr().(*net.TCPAddr).Port

	host := cfg.Host
	if host == "" {
		ip, err := pickIP("private")
		if err != nil {
			return nil, "", err
		}
		host = ip.String()
	}

	return lis, fmt.Sprintf("%s:%d", host, actualPort), nil
}
