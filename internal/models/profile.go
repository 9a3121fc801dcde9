package models

import "time"

// Profile is the per-user document aggregating identity fields, free-form fields and module results.
//
// A nil result pointer means the module has not been completed.
type Profile struct {
	UserID   string    `json:"uid"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinDate time.Time `json:"joinDate"`
	Status   string    `json:"status,omitempty"`
	Role     string    `json:"role,omitempty"`

	Age        int    `json:"age,omitempty"`
	Region     string `json:"region,omitempty"`
	Religion   string `json:"religion,omitempty"`
	Principles string `json:"principles,omitempty"`
	Likes      string `json:"likes,omitempty"`
	Dislikes   string `json:"dislikes,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Pronouns   string `json:"pronouns,omitempty"`
	Location   string `json:"location,omitempty"`

	Archetype   *ArchetypeResult   `json:"archetype,omitempty"`
	Temperament *TemperamentResult `json:"temperament,omitempty"`
	Ikigai      *IkigaiResult      `json:"ikigai,omitempty"`
	Synthesis   *SynthesisResult   `json:"synthesis,omitempty"`
	Nickname    *NicknameResult    `json:"nickname,omitempty"`
}

const (
	StatusActive = "active"
	RoleUser     = "user"
	RoleAdmin    = "admin"
)

// NewProfile returns the empty profile created at registration.
func NewProfile(userID, name, email, role string, joined time.Time) Profile {
	return Profile{ //nolint:exhaustruct // results are filled in by the modules.
		UserID:   userID,
		Name:     name,
		Email:    email,
		JoinDate: joined.UTC(),
		Status:   StatusActive,
		Role:     role,
	}
}

// ProfilePatch holds the top-level fields to merge into a profile. Nil fields are left untouched.
type ProfilePatch struct {
	Name     *string    `json:"name,omitempty"`
	Email    *string    `json:"email,omitempty"`
	JoinDate *time.Time `json:"joinDate,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Role     *string    `json:"role,omitempty"`

	Age        *int    `json:"age,omitempty"`
	Region     *string `json:"region,omitempty"`
	Religion   *string `json:"religion,omitempty"`
	Principles *string `json:"principles,omitempty"`
	Likes      *string `json:"likes,omitempty"`
	Dislikes   *string `json:"dislikes,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Pronouns   *string `json:"pronouns,omitempty"`
	Location   *string `json:"location,omitempty"`

	Archetype   *ArchetypeResult   `json:"archetype,omitempty"`
	Temperament *TemperamentResult `json:"temperament,omitempty"`
	Ikigai      *IkigaiResult      `json:"ikigai,omitempty"`
	Synthesis   *SynthesisResult   `json:"synthesis,omitempty"`
	Nickname    *NicknameResult    `json:"nickname,omitempty"`
}

// IsEmpty reports whether the patch would not change any profile.
func (p ProfilePatch) IsEmpty() bool {
	return p == ProfilePatch{} //nolint:exhaustruct // zero value comparison.
}

// Apply merges patch into a copy of p and returns it. Present fields replace the previous value wholesale,
// so a re-run module result never keeps fields of the older result.
func (p Profile) Apply(patch ProfilePatch) Profile {
	setString(&p.Name, patch.Name)
	setString(&p.Email, patch.Email)
	if patch.JoinDate != nil {
		p.JoinDate = patch.JoinDate.UTC()
	}
	setString(&p.Status, patch.Status)
	setString(&p.Role, patch.Role)

	if patch.Age != nil {
		p.Age = *patch.Age
	}
	setString(&p.Region, patch.Region)
	setString(&p.Religion, patch.Religion)
	setString(&p.Principles, patch.Principles)
	setString(&p.Likes, patch.Likes)
	setString(&p.Dislikes, patch.Dislikes)
	setString(&p.Bio, patch.Bio)
	setString(&p.Pronouns, patch.Pronouns)
	setString(&p.Location, patch.Location)

	if patch.Archetype != nil {
		p.Archetype = clone(patch.Archetype)
	}
	if patch.Temperament != nil {
		p.Temperament = clone(patch.Temperament)
	}
	if patch.Ikigai != nil {
		p.Ikigai = clone(patch.Ikigai)
	}
	if patch.Synthesis != nil {
		p.Synthesis = clone(patch.Synthesis)
	}
	if patch.Nickname != nil {
		p.Nickname = clone(patch.Nickname)
	}
	return p
}

// IdentityPatch returns the identity fields of p as a patch, used to create the profile of a new account.
func (p Profile) IdentityPatch() ProfilePatch {
	return ProfilePatch{ //nolint:exhaustruct // only identity fields.
		Name:     &p.Name,
		Email:    &p.Email,
		JoinDate: &p.JoinDate,
		Status:   &p.Status,
		Role:     &p.Role,
	}
}

// FreeFormOnly drops the fields a user may not edit directly from the patch.
func (p ProfilePatch) FreeFormOnly() ProfilePatch {
	return ProfilePatch{ //nolint:exhaustruct // identity fields and results are owned by the server.
		Name:       p.Name,
		Age:        p.Age,
		Region:     p.Region,
		Religion:   p.Religion,
		Principles: p.Principles,
		Likes:      p.Likes,
		Dislikes:   p.Dislikes,
		Bio:        p.Bio,
		Pronouns:   p.Pronouns,
		Location:   p.Location,
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// clone copies the result struct so later mutations of the patch do not leak into the profile. Slices are shared;
// results are treated as immutable once decoded.
func clone[T any](v *T) *T {
	c := *v
	return &c
}
