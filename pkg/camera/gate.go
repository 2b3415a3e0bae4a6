package camera

import (
	"errors"
	"net"
	"strings"
)

// Environment describes where camera access is being requested from.
type Environment struct {
	PlatformAvailable bool   // a camera backend is installed
	Secure            bool   // the request arrived over TLS
	Host              string // request host, with or without port
}

var (
	errNoPlatform = errors.New("no camera platform available")
	errInsecure   = errors.New("camera access requested over an insecure connection")
)

// CheckEnvironment must pass before any acquisition is attempted. Its
// failures are terminal and never offer a retry.
func CheckEnvironment(env Environment) error {
	if !env.PlatformAvailable {
		return newError(CategoryCapabilityUnavailable, errNoPlatform)
	}
	if !env.Secure && !IsTrustedHost(env.Host) {
		return newError(CategoryInsecureContext, errInsecure)
	}
	return nil
}

// IsTrustedHost reports whether host is a local origin that counts as a
// secure context without TLS.
func IsTrustedHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	return host == "localhost" || host == "127.0.0.1"
}
