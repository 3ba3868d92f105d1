package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
	tests := []struct {
		name      string
		env       EnvBool
		osValue   string
		wantValue bool
	}{
		{
			name:      "Set",
			env:       EnvBool{"TEST_ENV_BOOL"},
			osValue:   "1",
			wantValue: true,
		},
		{
			name:      "Unset",
			env:       EnvBool{"TEST_ENV_BOOL"},
			wantValue: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.env.Key, tc.osValue)

			assert.Equal(t, tc.wantValue, tc.env.Bool())
			assert.Equal(t, tc.wantValue, tc.env.IsSet())
			assert.Equal(t, !tc.wantValue, tc.env.IsUnset())
			assert.Equal(t, fmt.Sprintf("%t", tc.wantValue), tc.env.String())
		})
	}
}

func TestEnvString(t *testing.T) {
	tests := []struct {
		name      string
		env       EnvString
		osValue   string
		wantValue string
		wantSet   bool
	}{
		{
			name:      "Set",
			env:       EnvString{"TEST_ENV_STRING", ""},
			osValue:   "VALUE_SET",
			wantValue: "VALUE_SET",
			wantSet:   true,
		},
		{
			name:      "Unset",
			env:       EnvString{"TEST_ENV_STRING", ""},
			wantValue: "",
		},
		{
			name:      "Default",
			env:       EnvString{"TEST_ENV_STRING", "BLAH_BLAH"},
			wantValue: "BLAH_BLAH",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.env.Key, tc.osValue)

			assert.Equal(t, tc.wantValue, tc.env.String())
			_, ok := tc.env.Lookup()
			assert.Equal(t, tc.wantSet, ok)
		})
	}
}

func TestEnvInteger(t *testing.T) {
	tests := []struct {
		name      string
		env       EnvInteger
		osValue   string
		wantValue int
		wantErr   bool
	}{
		{
			name:      "Set",
			env:       EnvInteger{"TEST_ENV_INT", 0},
			osValue:   "123",
			wantValue: 123,
		},
		{
			name:      "Unset",
			env:       EnvInteger{"TEST_ENV_INT", 0},
			wantValue: 0,
		},
		{
			name:      "Default",
			env:       EnvInteger{"TEST_ENV_INT", 456},
			wantValue: 456,
		},
		{
			name:      "Invalid",
			env:       EnvInteger{"TEST_ENV_INT", 789},
			osValue:   "twelve",
			wantValue: 789,
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.env.Key, tc.osValue)

			assert.Equal(t, tc.wantValue, tc.env.Int())
			_, _, err := tc.env.Lookup()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
