package chat

import "encoding/json"

// Profile is the full user record as delivered by the user directory.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserRef is a tagged user reference: either a bare identity or a full
// profile. Backend payloads populate user fields either way depending on
// the endpoint, so consumers must check capability via Profile() instead
// of assuming fields are present.
type UserRef struct {
	id      string
	profile *Profile
}

// RefID creates a reference carrying only an identity.
func RefID(id string) UserRef {
	return UserRef{id: id}
}

// RefProfile creates a reference carrying a full profile.
func RefProfile(p Profile) UserRef {
	return UserRef{id: p.ID, profile: &p}
}

// ID returns the user identity. Always available.
func (r UserRef) ID() string {
	return r.id
}

// Profile returns the full profile when the reference carries one.
func (r UserRef) Profile() (Profile, bool) {
	if r.profile == nil {
		return Profile{}, false
	}
	return *r.profile, true
}

// DisplayName returns the best available display name, falling back to the
// raw identity when no profile is attached.
func (r UserRef) DisplayName() string {
	if r.profile == nil {
		return r.id
	}
	if r.profile.FirstName == "" && r.profile.LastName == "" {
		return r.id
	}
	if r.profile.LastName == "" {
		return r.profile.FirstName
	}
	return r.profile.FirstName + " " + r.profile.LastName
}

// UnmarshalJSON accepts either a plain string identity or a profile object.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = RefID(id)
		return nil
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RefProfile(p)
	return nil
}

// MarshalJSON emits the profile object when present, otherwise the bare id.
func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.profile != nil {
		return json.Marshal(r.profile)
	}
	return json.Marshal(r.id)
}
