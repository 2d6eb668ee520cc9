package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAthlete, RoleHealthTeam, RoleTempHealthTeam, RoleTrainer, RoleAdmin} {
		assert.True(t, r.Valid(), "role %s", r)
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	u := &User{Email: "x@example.com", Role: "intern"}
	err := u.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intern")
}

func TestProfileComplete(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			name: "athlete without extension block",
			user: User{Role: RoleAthlete},
			want: false,
		},
		{
			name: "athlete with extension block",
			user: User{Role: RoleAthlete, AthleteData: &AthleteData{SportDiscipline: "swimming"}},
			want: true,
		},
		{
			name: "health team without block",
			user: User{Role: RoleHealthTeam},
			want: false,
		},
		{
			name: "health team with block",
			user: User{Role: RoleHealthTeam, HealthTeamData: &HealthTeamData{Discipline: "kinesiology"}},
			want: true,
		},
		{
			name: "temp health team uses the same block",
			user: User{Role: RoleTempHealthTeam, HealthTeamData: &HealthTeamData{IsStudent: true}},
			want: true,
		},
		{
			name: "trainer without block",
			user: User{Role: RoleTrainer},
			want: false,
		},
		{
			name: "trainer with block",
			user: User{Role: RoleTrainer, TrainerData: &TrainerData{Category: "varsity"}},
			want: true,
		},
		{
			name: "admin needs no block",
			user: User{Role: RoleAdmin},
			want: true,
		},
		{
			name: "wrong block does not complete the profile",
			user: User{Role: RoleAthlete, TrainerData: &TrainerData{}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.ProfileComplete())
		})
	}
}

func TestUserJSONShape(t *testing.T) {
	raw := `{
		"firstName": "Ana",
		"lastName": "Rojas",
		"secondLastName": "Vidal",
		"rut": "12.345.678-9",
		"email": "ana@example.com",
		"phone": "+56911112222",
		"role": "athlete",
		"athleteData": {
			"birthDate": "2002-03-14",
			"biologicalSex": "female",
			"insurance": {"type": "fonasa"},
			"establishment": "central-campus",
			"sportDiscipline": "athletics",
			"professionalAspiration": true,
			"otherSports": ["swimming"],
			"pucData": {
				"career": "engineering",
				"competitiveLevel": "national",
				"universityEntryYear": 2021,
				"projectedGraduationYear": 2026
			}
		}
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	require.NoError(t, u.Validate())

	assert.Equal(t, "Ana Rojas Vidal", u.DisplayName())
	assert.True(t, u.ProfileComplete())
	require.NotNil(t, u.AthleteData.PUCData)
	assert.Equal(t, 2026, u.AthleteData.PUCData.ProjectedGraduationYear)
	assert.Equal(t, "fonasa", u.AthleteData.Insurance.Type)
}

func TestDisplayNameWithoutSecondLastName(t *testing.T) {
	u := User{FirstName: "Pedro", LastName: "Soto"}
	assert.Equal(t, "Pedro Soto", u.DisplayName())
}
