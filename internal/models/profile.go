package models

import "time"

const (
	maxUserNameLen   = 100
	maxRestSeconds   = 600
	defaultRestTimer = 90
)

// RestTimer holds the between-sets timer settings.
type RestTimer struct {
	Enabled        bool `json:"enabled"`
	DefaultSeconds int  `json:"defaultSeconds"`
	Sound          bool `json:"sound"`
}

// Preferences is the user's preference bag.
type Preferences struct {
	Units          Units          `json:"units"`
	Theme          Theme          `json:"theme"`
	FirstDayOfWeek FirstDayOfWeek `json:"firstDayOfWeek"`
	RestTimer      RestTimer      `json:"restTimer"`
}

// DefaultPreferences returns the preferences a new profile starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Units:          UnitsMetric,
		Theme:          ThemeSystem,
		FirstDayOfWeek: WeekStartsMonday,
		RestTimer:      RestTimer{Enabled: true, DefaultSeconds: defaultRestTimer, Sound: true},
	}
}

// UserProfile is the single on-device user.
type UserProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Preferences     Preferences     `json:"preferences"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Validate checks every profile rule and reports all violations.
func (p *UserProfile) Validate() error {
	v := newValidator("user profile")
	v.name("name", p.Name, maxUserNameLen)
	v.enum("experienceLevel", p.ExperienceLevel.Valid(), string(p.ExperienceLevel), experienceLevels)
	v.enum("preferences.units", p.Preferences.Units.Valid(), string(p.Preferences.Units), unitValues)
	v.enum("preferences.theme", p.Preferences.Theme.Valid(), string(p.Preferences.Theme), themes)
	v.enum("preferences.firstDayOfWeek", p.Preferences.FirstDayOfWeek.Valid(), string(p.Preferences.FirstDayOfWeek), firstDays)
	v.intRange("preferences.restTimer.defaultSeconds", p.Preferences.RestTimer.DefaultSeconds, 0, maxRestSeconds)
	return v.err()
}

// Sanitize cleans every free-text field.
func (p *UserProfile) Sanitize() {
	p.Name = SanitizeText(p.Name)
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name            *string          `json:"name,omitempty"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel,omitempty"`
	Preferences     *Preferences     `json:"preferences,omitempty"`
}

// Apply merges the patch onto p.
func (pp ProfilePatch) Apply(p *UserProfile) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.ExperienceLevel != nil {
		p.ExperienceLevel = *pp.ExperienceLevel
	}
	if pp.Preferences != nil {
		p.Preferences = *pp.Preferences
	}
}

// SanitizeChanged re-sanitizes only the text fields the patch set.
func (pp ProfilePatch) SanitizeChanged(p *UserProfile) {
	if pp.Name != nil {
		p.Name = SanitizeText(p.Name)
	}
}
