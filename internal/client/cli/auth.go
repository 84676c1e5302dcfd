package cli

import (
	"context"
	"log"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the authority.
// Login is an online operation; while offline the stored queue keeps
// accepting scans, but a session can only be minted by the server.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	token, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.userName = token.Username
	log.Printf("Login successful, session valid until %s", token.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Logout drops the local session. Queued scans stay on the device and
// upload under the next login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
		return err
	}
	a.userName = ""
	log.Println("Logged out, queued scans are kept")
	return nil
}
