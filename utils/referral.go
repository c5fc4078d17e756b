package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/distrohq/backoffice_backend/models"
)

// Referral code prefixes by staff category.
const (
	salesPrefix      = "SLS"
	managementPrefix = "MGR"
	staffPrefix      = "STF"
)

// GenerateReferralCode generates a unique referral code for a staff member.
// Format: {PREFIX}-{RANDOM} where RANDOM is 6 alphanumeric characters.
// Example: SLS-ABC123, MGR-XYZ789.
func GenerateReferralCode(role models.Role) (string, error) {
	// 4 random bytes give us 6 characters in base32
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = strings.ToUpper(randomStr[:6])
	randomStr = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, randomStr)
	if len(randomStr) < 6 {
		randomStr = randomStr + strings.Repeat("0", 6-len(randomStr))
	}

	return rolePrefix(role) + "-" + randomStr, nil
}

func rolePrefix(role models.Role) string {
	switch role {
	case models.RoleSalesman, models.RoleTeamOperationManager:
		return salesPrefix
	case models.RoleBranchManager, models.RoleZonalManager, models.RoleRegionalDirector,
		models.RoleDivisionalDirector, models.RoleGeneralManager:
		return managementPrefix
	default:
		return staffPrefix
	}
}
