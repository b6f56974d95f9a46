// Package platform models the Apple platforms, destinations and platform
// filters that gate dependency edges, together with the condition algebra
// used to combine them along dependency paths.
//
// This package has no internal imports. graph and traverser both build on it.
package platform

import (
	"cmp"
	"fmt"
	"slices"
)

// Platform is an operating system a target can be built for.
type Platform string

const (
	IOS      Platform = "ios"
	MacOS    Platform = "macos"
	TvOS     Platform = "tvos"
	WatchOS  Platform = "watchos"
	VisionOS Platform = "visionos"
)

// AllPlatforms lists every known platform in canonical order.
var AllPlatforms = []Platform{IOS, MacOS, TvOS, WatchOS, VisionOS}

// ParsePlatform validates a raw platform name.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(raw)
	if !slices.Contains(AllPlatforms, p) {
		return "", fmt.Errorf("unknown platform %q", raw)
	}
	return p, nil
}

// SDKRoot is the directory name of the platform SDK inside Xcode
// (e.g. "iPhoneOS" for iOS).
func (p Platform) SDKRoot() string {
	switch p {
	case IOS:
		return "iPhoneOS"
	case MacOS:
		return "MacOSX"
	case TvOS:
		return "AppleTVOS"
	case WatchOS:
		return "WatchOS"
	case VisionOS:
		return "XROS"
	default:
		return ""
	}
}

// Destination is a device family a target runs on. Several destinations
// share a platform (iPhone and iPad are both iOS).
type Destination string

const (
	IPhone                    Destination = "iPhone"
	IPad                      Destination = "iPad"
	Mac                       Destination = "mac"
	MacWithiPadDesign         Destination = "macWithiPadDesign"
	MacCatalyst               Destination = "macCatalyst"
	AppleWatch                Destination = "appleWatch"
	AppleTV                   Destination = "appleTv"
	AppleVision               Destination = "appleVision"
	AppleVisionWithiPadDesign Destination = "appleVisionWithiPadDesign"
)

// AllDestinations lists every known destination in canonical order.
var AllDestinations = []Destination{
	IPhone, IPad, Mac, MacWithiPadDesign, MacCatalyst,
	AppleWatch, AppleTV, AppleVision, AppleVisionWithiPadDesign,
}

// ParseDestination validates a raw destination name.
func ParseDestination(raw string) (Destination, error) {
	d := Destination(raw)
	if !slices.Contains(AllDestinations, d) {
		return "", fmt.Errorf("unknown destination %q", raw)
	}
	return d, nil
}

// Platform returns the platform the destination belongs to.
func (d Destination) Platform() Platform {
	switch d {
	case Mac:
		return MacOS
	case AppleWatch:
		return WatchOS
	case AppleTV:
		return TvOS
	case AppleVision:
		return VisionOS
	default:
		// iPhone, iPad, and the iPad-design/Catalyst variants are iOS builds.
		return IOS
	}
}

// Filter returns the platform filter that selects this destination.
func (d Destination) Filter() Filter {
	switch d {
	case Mac:
		return FilterMacOS
	case MacCatalyst:
		return FilterCatalyst
	case AppleWatch:
		return FilterWatchOS
	case AppleTV:
		return FilterTvOS
	case AppleVision:
		return FilterVisionOS
	default:
		return FilterIOS
	}
}

// Set is an unordered set of string-like values (platforms, destinations,
// binary names).
type Set[T ~string] map[T]struct{}

// NewSet builds a set from values.
func NewSet[T ~string](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is in the set.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Union returns a new set containing the elements of both sets.
func (s Set[T]) Union(o Set[T]) Set[T] {
	out := make(Set[T], len(s)+len(o))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range o {
		out[v] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the elements present in both sets.
func (s Set[T]) Intersect(o Set[T]) Set[T] {
	out := make(Set[T])
	for v := range s {
		if o.Contains(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

// IsSubset reports whether every element of s is in o.
func (s Set[T]) IsSubset(o Set[T]) bool {
	for v := range s {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same elements.
func (s Set[T]) Equal(o Set[T]) bool {
	return len(s) == len(o) && s.IsSubset(o)
}

// Sorted returns the elements in ascending order.
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(a, b) })
	return out
}

// Platforms returns the distinct platforms of a destination set.
func Platforms(destinations Set[Destination]) Set[Platform] {
	out := make(Set[Platform], len(destinations))
	for d := range destinations {
		out[d.Platform()] = struct{}{}
	}
	return out
}
