// Package profile holds the authenticated-user model. The backend owns the
// authoritative copy; the bridge caches it wholesale and re-derives
// completeness on every read rather than tracking it as separate state.
package profile

import "fmt"

// Role discriminates which profile-extension block a user carries
type Role string

const (
	RoleAthlete        Role = "athlete"
	RoleHealthTeam     Role = "health_team"
	RoleTempHealthTeam Role = "temp_health_team"
	RoleTrainer        Role = "trainer"
	RoleAdmin          Role = "admin"
)

// Valid reports whether the role belongs to the closed set
func (r Role) Valid() bool {
	switch r {
	case RoleAthlete, RoleHealthTeam, RoleTempHealthTeam, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// Insurance is the athlete's health-insurance declaration
type Insurance struct {
	Type string `json:"type"`
}

// PUCData is the university-program extension for student athletes
type PUCData struct {
	Career                  string `json:"career"`
	CompetitiveLevel        string `json:"competitiveLevel"`
	UniversityEntryYear     int    `json:"universityEntryYear"`
	ProjectedGraduationYear int    `json:"projectedGraduationYear"`
}

// AthleteData is the athlete profile extension
type AthleteData struct {
	BirthDate              string    `json:"birthDate"`
	BiologicalSex          string    `json:"biologicalSex"`
	Insurance              Insurance `json:"insurance"`
	Establishment          string    `json:"establishment"`
	SportDiscipline        string    `json:"sportDiscipline"`
	ProfessionalAspiration bool      `json:"professionalAspiration"`
	OtherSports            []string  `json:"otherSports"`
	PUCData                *PUCData  `json:"pucData,omitempty"`
}

// HealthTeamData is the health-team profile extension, shared by permanent
// and temporary (rotating student) members
type HealthTeamData struct {
	Discipline      string `json:"discipline"`
	IsStudent       bool   `json:"isStudent,omitempty"`
	RotationEndDate string `json:"rotationEndDate,omitempty"`
}

// TrainerData is the trainer profile extension
type TrainerData struct {
	Establishment   string `json:"establishment"`
	SportDiscipline string `json:"sportDiscipline"`
	Category        string `json:"category"`
}

// User is the backend's user object, cached locally between session checks
type User struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	SecondLastName string `json:"secondLastName,omitempty"`
	RUT            string `json:"rut"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Role           Role   `json:"role"`

	AthleteData    *AthleteData    `json:"athleteData,omitempty"`
	HealthTeamData *HealthTeamData `json:"healthTeamData,omitempty"`
	TrainerData    *TrainerData    `json:"trainerData,omitempty"`
}

// Validate checks the role discriminant. Unknown roles are rejected here
// so a backend change surfaces as an explicit error instead of silently
// routing the user into a default branch.
func (u *User) Validate() error {
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q for user %s", u.Role, u.Email)
	}
	return nil
}

// ProfileComplete reports whether the role-specific extension block has
// been submitted. Incomplete users must be routed to profile completion
// before anything else.
func (u *User) ProfileComplete() bool {
	switch u.Role {
	case RoleAthlete:
		return u.AthleteData != nil
	case RoleHealthTeam, RoleTempHealthTeam:
		return u.HealthTeamData != nil
	case RoleTrainer:
		return u.TrainerData != nil
	case RoleAdmin:
		// admins carry no extension block
		return true
	}
	return false
}

// DisplayName returns the user's full name for logs and CLI output
func (u *User) DisplayName() string {
	name := u.FirstName + " " + u.LastName
	if u.SecondLastName != "" {
		name += " " + u.SecondLastName
	}
	return name
}
