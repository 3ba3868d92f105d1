package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/transport"
)

// login exchanges a username and password for a token and stores the token,
// not the password, in the credentials file.
func (r *runner) login(c *cli.Context) error {
	in := bufio.NewReader(r.in)

	username := c.String("username")
	if username == "" {
		fmt.Fprint(r.out, "Email: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read email: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	fmt.Fprint(r.out, "Password: ")
	password, err := readPassword(r.in, in)
	fmt.Fprintln(r.out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	hc, err := transport.NewHTTPClient(transport.HTTPConfig{Timeout: r.cfg.Timeout, Proxy: r.cfg.Proxy})
	if err != nil {
		return err
	}
	provider := r.cfg.authProvider(auth.Credentials{Username: username, Password: auth.Token(password)}, hc)
	sess, err := provider.Session(r.ctx)
	if err != nil {
		return err
	}

	path := c.String("credentials")
	if path == "" {
		path = r.cfg.CredentialsPath
	}
	if auth.IsSecretRef(path) {
		return fmt.Errorf("login cannot write to %s, pass --credentials", path)
	}
	creds := auth.Credentials{
		SubscriptionKey: sess.SubscriptionKey,
		AccessToken:     auth.Token(sess.Token.AccessToken),
	}
	if err := auth.SaveCredentials(path, creds); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved credentials to %s\n", path)
	if !sess.Token.Expiry.IsZero() {
		fmt.Fprintf(r.out, "Token expires %s\n", sess.Token.Expiry.UTC().Format("2006-01-02 15:04 MST"))
	}
	return nil
}

// readPassword reads without echo from a terminal, or a line otherwise.
func readPassword(src io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := buffered.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
