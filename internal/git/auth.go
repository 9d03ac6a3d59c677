package git

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/pivot/internal/config"
)

// getAuthentication builds the go-git auth method for a repository; nil means anonymous.
func getAuthentication(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	switch auth.Type {
	case config.AuthTypeNone, "":
		return nil, nil
	case config.AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			home, _ := os.UserHomeDir()
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, auth.Password)
		if err != nil {
			return nil, &AuthError{Op: "auth", URL: keyPath, Err: fmt.Errorf("load SSH key: %w", err)}
		}
		return keys, nil
	case config.AuthTypeToken:
		if auth.Token == "" {
			return nil, &AuthError{Op: "auth", Err: fmt.Errorf("token authentication requires a token")}
		}
		username := auth.Username
		if username == "" {
			username = "token"
		}
		return &http.BasicAuth{Username: username, Password: auth.Token}, nil
	case config.AuthTypeBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, &AuthError{Op: "auth", Err: fmt.Errorf("basic authentication requires username and password")}
		}
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil
	default:
		return nil, &AuthError{Op: "auth", Err: fmt.Errorf("unsupported authentication type: %s", auth.Type)}
	}
}
