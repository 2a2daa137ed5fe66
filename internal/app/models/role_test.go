package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input  string
		want   Role
		wantOK bool
	}{
		{input: "1", want: RoleAdmin, wantOK: true},
		{input: "ADMIN", want: RoleAdmin, wantOK: true},
		{input: "mngr", want: RoleManager, wantOK: true},
		{input: " 3 ", want: RoleCoordinator, wantOK: true},
		{input: "Coord", want: RoleCoordinator, wantOK: true},
		{input: "STUD", want: RoleStudent, wantOK: true},
		{input: "4", want: RoleStudent, wantOK: true},
		{input: "0", want: RoleUnknown},
		{input: "9", want: RoleUnknown},
		{input: "student", want: RoleUnknown},
		{input: "", want: RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{Role: RoleManager})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"MNGR"}`, string(data))

	var in struct {
		A Role `json:"a"`
		B Role `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":"stud"}`), &in))
	assert.Equal(t, RoleCoordinator, in.A)
	assert.Equal(t, RoleStudent, in.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"janitor"}`), &in))
}

func TestRoleAccessors(t *testing.T) {
	assert.Equal(t, "COORD", RoleCoordinator.Code())
	assert.Equal(t, "Marketing Manager", RoleManager.Name())
	assert.Equal(t, "UNKNOWN", Role(42).Code())
	assert.True(t, RoleAdmin.Is(RoleManager, RoleAdmin))
	assert.False(t, RoleStudent.Is(RoleManager, RoleAdmin))
	assert.Len(t, BuiltinRoles(), 4)
}

func TestSettingsDefaults(t *testing.T) {
	kind, ok := ParseSettingsKind("export")
	require.True(t, ok)
	assert.Equal(t, "export_settings", kind.Column())
	assert.Equal(t, "notification_settings", SettingsNotifications.Column())
	assert.Equal(t, true, DefaultSettings(kind)["include_metadata"])

	_, ok = ParseSettingsKind("privacy")
	assert.False(t, ok)

	doc := DefaultSettings(SettingsNotifications)
	doc["email_notifications"] = false
	assert.True(t, DefaultSettings(SettingsNotifications).Bool("email_notifications", false), "defaults are copied")
}
