package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrohq/backoffice_backend/models"
)

func TestGenerateReferralCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^(SLS|MGR|STF)-[A-Z0-9]{6}$`)

	for _, role := range models.AllRoles {
		code, err := GenerateReferralCode(role)
		require.NoError(t, err)
		assert.Regexp(t, pattern, code, "code for role %q", role)
	}
}

func TestGenerateReferralCodePrefixes(t *testing.T) {
	cases := map[models.Role]string{
		models.RoleSalesman:        "SLS-",
		models.RoleBranchManager:   "MGR-",
		models.RoleGeneralManager:  "MGR-",
		models.RoleAccountant:      "STF-",
		models.RoleRecoveryOfficer: "STF-",
	}
	for role, prefix := range cases {
		code, err := GenerateReferralCode(role)
		require.NoError(t, err)
		assert.Equal(t, prefix, code[:4], "role %q", role)
	}
}

func TestValidateTokenSerial(t *testing.T) {
	valid := []string{"TKN-2026-0001", "A1B2", "X999-ABC"}
	for _, serial := range valid {
		assert.NoError(t, ValidateTokenSerial(serial), "serial %q", serial)
	}

	invalid := []string{"", "ab", "-LEADING", "TRAILING-", "has spaces", "lower-case"}
	for _, serial := range invalid {
		assert.Error(t, ValidateTokenSerial(serial), "serial %q", serial)
	}
}
