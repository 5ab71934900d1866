package utils

import "net"

// IsPublicIPv4 reports whether x is a routable IPv4 address a client could
// ssh into.
func IsPublicIPv4(x string) bool {
	v := net.ParseIP(x)
	return v != nil && v.To4() != nil && !v.IsUnspecified() && !v.IsPrivate() && !v.IsLoopback()
}
