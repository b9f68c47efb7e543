package server

import (
	"net/url"
	"strings"
)

// ResourceClaims describes the local resources a server definition would
// bind when launched: TCP ports and filesystem mount paths. Two different
// servers claiming the same resource on one target is a collision.
type ResourceClaims struct {
	Ports  []string
	Mounts []string
}

// portFlags are argument flags whose value is a TCP port.
var portFlags = map[string]bool{
	"--port": true, "-p": true, "--listen-port": true,
}

// mountFlags are argument flags whose value is a filesystem mount.
var mountFlags = map[string]bool{
	"--mount": true, "-v": true, "--volume": true, "--root": true, "--dir": true,
}

// Claims extracts the resource claims from a definition's args and URL.
// Extraction is best-effort: it understands "--flag value" and "--flag=value"
// forms plus the port component of the URL.
func (d *Definition) Claims() ResourceClaims {
	var claims ResourceClaims

	for i := 0; i < len(d.Args); i++ {
		arg := d.Args[i]
		flag, value, hasInline := strings.Cut(arg, "=")

		next := ""
		if !hasInline && i+1 < len(d.Args) {
			next = d.Args[i+1]
		}

		switch {
		case portFlags[flag]:
			if hasInline {
				claims.Ports = append(claims.Ports, value)
			} else if next != "" {
				claims.Ports = append(claims.Ports, next)
				i++
			}
		case mountFlags[flag]:
			if hasInline {
				claims.Mounts = append(claims.Mounts, mountSource(value))
			} else if next != "" {
				claims.Mounts = append(claims.Mounts, mountSource(next))
				i++
			}
		}
	}

	if d.URL != "" {
		if u, err := url.Parse(d.URL); err == nil && u.Port() != "" {
			claims.Ports = append(claims.Ports, u.Port())
		}
	}

	return claims
}

// mountSource strips a container-style "src:dst" mount down to its source.
func mountSource(mount string) string {
	if src, _, ok := strings.Cut(mount, ":"); ok && src != "" {
		return src
	}
	return mount
}

// Collides reports which resources are claimed by both definitions.
func Collides(a, b ResourceClaims) (ports, mounts []string) {
	ports = intersect(a.Ports, b.Ports)
	mounts = intersect(a.Mounts, b.Mounts)
	return ports, mounts
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []string
	for _, v := range b {
		if set[v] {
			out = append(out, v)
			set[v] = false
		}
	}
	return out
}
