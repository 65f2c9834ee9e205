// Package common contains shared constants and sentinel errors used across
// premiumkeeper components.
package common

// AuthorizationHeaderName carries the identity token as "Bearer <jwt>".
const AuthorizationHeaderName = "Authorization"

// Role claims issued by the identity provider.
const (
	RoleAdmin  = "admin"
	RoleBroker = "broker"
)

// PremiumFormName is the form-name value the hosted form gateway accepts.
const PremiumFormName = "premiumForm"

// CommissionRate is the share of a submitted premium paid out as commission.
const CommissionRate = "0.02"

// HasRole reports whether required is present in roles.
func HasRole(roles []string, required ...string) bool {
	for _, r := range roles {
		for _, req := range required {
			if r == req {
				return true
			}
		}
	}
	return false
}

// WipeByteArray zeroes b, for secrets read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
