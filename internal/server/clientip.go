package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientResolver derives the client identity used for rate limiting and
// request logs. X-Forwarded-For is only read when the connection comes from a
// trusted proxy; otherwise the remote address is the identity.
type ClientResolver struct {
	trusted []netip.Prefix
}

// NewClientResolver accepts proxy addresses as single IPs or CIDR prefixes.
func NewClientResolver(trustedProxies []string) (*ClientResolver, error) {
	res := &ClientResolver{}
	for _, raw := range trustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

// Key returns the client identity for r. Behind trusted proxies it is the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func (c *ClientResolver) Key(r *http.Request) string {
	host := clientKey(r)
	if c == nil || len(c.trusted) == 0 {
		return host
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !c.isTrusted(peer) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	candidate := host
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			return candidate
		}
		candidate = addr.Unmap().String()
		if !c.isTrusted(addr) {
			return candidate
		}
	}
	return candidate
}

func (c *ClientResolver) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientKey is the host part of the connection's remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
