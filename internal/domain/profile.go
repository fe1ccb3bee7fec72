package domain

import "fmt"

// Profile selects one of the two map presentations.
type Profile string

const (
	// ProfileMarkers is a regional view with a single base layer and the
	// earthquake overlay only.
	ProfileMarkers Profile = "markers"
	// ProfileLayered is a world view with switchable base layers and
	// independent earthquake and plate overlays.
	ProfileLayered Profile = "layered"
)

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileMarkers, ProfileLayered:
		return Profile(s), nil
	}
	return "", fmt.Errorf("unknown map profile %q (want markers or layered)", s)
}

// DefaultRadiusPolicy is the radius policy tuned for the profile's default zoom.
func (p Profile) DefaultRadiusPolicy() RadiusPolicy {
	if p == ProfileMarkers {
		return RadiusDense
	}
	return RadiusWide
}
