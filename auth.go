package redispoll

import "github.com/arens-io/redispoll/resp"

// Credentials configure authentication for a connection.
type Credentials struct {
	// Username for ACL based authentication. Empty for password-only
	// authentication against requirepass.
	Username string
	Password string
}

// ACLCredentials uses ACL based authentication (server version >= 6 with
// ACL enabled).
func ACLCredentials(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password}
}

// PasswordOnly authenticates against the password set with requirepass.
func PasswordOnly(password string) *Credentials {
	return &Credentials{Password: password}
}

// AuthCommand authenticates the connection. The handler sends it
// automatically during connection setup when credentials are configured.
type AuthCommand struct {
	Username []byte
	Password []byte
}

func NewAuthCommand(credentials *Credentials) *AuthCommand {
	cmd := &AuthCommand{Password: []byte(credentials.Password)}
	if credentials.Username != "" {
		cmd.Username = []byte(credentials.Username)
	}
	return cmd
}

func (c *AuthCommand) Encode() *resp.Frame {
	return Build("AUTH").ArgOption(c.Username).Arg(c.Password).Frame()
}

func (c *AuthCommand) Evaluate(frame *resp.Frame) (struct{}, error) {
	status, ok := frame.StringValue()
	if !ok || status != "OK" {
		return struct{}{}, errResponseType
	}
	return struct{}{}, nil
}
