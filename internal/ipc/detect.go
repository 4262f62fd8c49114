package ipc

import (
	"fmt"
	"strings"
)

// Kind names a supported backend variant.
type Kind string

const (
	KindAuto     Kind = "auto"
	KindSway     Kind = "sway"
	KindHyprland Kind = "hyprland"
)

// ErrNoBackend is returned when no supported window manager socket is advertised.
var ErrNoBackend = fmt.Errorf("no supported window manager found (SWAYSOCK and HYPRLAND_INSTANCE_SIGNATURE are unset)")

// ParseKind validates a backend name from flags or the environment.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindSway, KindHyprland:
		return k, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, sway or hyprland)", s)
	}
}

// DetectKind resolves KindAuto from the environment the window manager
// exports to its children. Hyprland is checked first since it may also run
// with a stale SWAYSOCK inherited from a parent session.
func DetectKind(requested Kind, getenv func(string) string) (Kind, error) {
	if requested != KindAuto && requested != "" {
		return requested, nil
	}
	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return KindHyprland, nil
	}
	if getenv("SWAYSOCK") != "" {
		return KindSway, nil
	}
	return "", ErrNoBackend
}
