package config

import "git.home.luguber.info/inful/pivot/internal/foundation/normalization"

// AuthType enumerates supported git authentication methods.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
	AuthTypeSSH   AuthType = "ssh"
)

var authTypeNormalizer = normalization.NewNormalizer(map[string]AuthType{
	"":      AuthTypeNone,
	"none":  AuthTypeNone,
	"token": AuthTypeToken,
	"basic": AuthTypeBasic,
	"ssh":   AuthTypeSSH,
}, "")

// NormalizeAuthType returns the canonical auth type or "" when unknown.
func NormalizeAuthType(raw string) AuthType {
	return authTypeNormalizer.Normalize(raw)
}
