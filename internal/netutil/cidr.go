// Package netutil expands CIDR ranges into scan targets.
package netutil

import (
	"fmt"
	"net/netip"
	"strings"
)

// ExpandCIDR returns one base URL per host/port combination in the
// given range. A bare IP is treated as a single-host range. Network
// and broadcast addresses are skipped for ranges wider than /31.
func ExpandCIDR(cidr, portList, scheme string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		addr, addrErr := netip.ParseAddr(cidr)
		if addrErr != nil {
			return nil, fmt.Errorf("invalid CIDR or IP %q: %w", cidr, err)
		}
		prefix = netip.PrefixFrom(addr, addr.BitLen())
	}
	prefix = prefix.Masked()

	ports := splitPorts(portList)
	if len(ports) == 0 {
		if scheme == "https" {
			ports = []string{"443"}
		} else {
			ports = []string{"80"}
		}
	}

	skipEdges := prefix.Addr().Is4() && prefix.Bits() < 31
	var last netip.Addr
	if skipEdges {
		last = lastAddr(prefix)
	}

	var urls []string
	for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
		if skipEdges && (addr == prefix.Addr() || addr == last) {
			continue
		}
		for _, port := range ports {
			if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
				urls = append(urls, fmt.Sprintf("%s://%s", scheme, addr))
			} else {
				urls = append(urls, fmt.Sprintf("%s://%s:%s", scheme, addr, port))
			}
		}
	}
	return urls, nil
}

func splitPorts(s string) []string {
	var ports []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ports = append(ports, p)
		}
	}
	return ports
}

func lastAddr(p netip.Prefix) netip.Addr {
	raw := p.Addr().As4()
	bits := p.Bits()
	for i := 0; i < len(raw)*8; i++ {
		if i >= bits {
			raw[i/8] |= 1 << (7 - i%8)
		}
	}
	return netip.AddrFrom4(raw)
}
