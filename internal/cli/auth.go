// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"docchat/internal/api"
	"docchat/internal/auth"
)

// =============================================================================
// LOGIN / REGISTER COMMANDS
// =============================================================================

// Login prompts for credentials, exchanges them for a token pair, and
// persists it.
func Login(ctx context.Context, client *api.Client, store *auth.Store) error {
	prompt := NewPrompt()
	defer prompt.Close()

	username, err := prompt.Ask("Username: ")
	if err != nil {
		return err
	}
	password, err := askPassword("Password: ")
	if err != nil {
		return err
	}

	tokens, err := client.Login(ctx, username, password)
	if err != nil {
		fmt.Println(errorStyle.Render("Login failed: " + err.Error()))
		return err
	}

	if err := store.Save(auth.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh}); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	id := auth.DeriveIdentity(tokens.Access)
	fmt.Println(successStyle.Render("Signed in as " + id.DisplayName()))
	return nil
}

// Register prompts for the account fields, creates the account, and
// persists the issued tokens. The password mismatch check happens before
// any network call.
func Register(ctx context.Context, client *api.Client, store *auth.Store) error {
	prompt := NewPrompt()
	defer prompt.Close()

	var params api.RegisterParams
	var err error

	if params.Username, err = prompt.Ask("Username: "); err != nil {
		return err
	}
	if params.Email, err = prompt.Ask("Email: "); err != nil {
		return err
	}
	if params.FirstName, err = prompt.Ask("First name: "); err != nil {
		return err
	}
	if params.LastName, err = prompt.Ask("Last name: "); err != nil {
		return err
	}
	if params.Password, err = askPassword("Password: "); err != nil {
		return err
	}
	if params.Password2, err = askPassword("Confirm password: "); err != nil {
		return err
	}

	tokens, err := client.Register(ctx, params)
	if err != nil {
		fmt.Println(errorStyle.Render("Registration failed: " + err.Error()))
		return err
	}

	if err := store.Save(auth.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh}); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	id := auth.DeriveIdentity(tokens.Access)
	fmt.Println(successStyle.Render("Account created. Signed in as " + id.DisplayName()))
	return nil
}

// Logout erases the persisted tokens.
func Logout(store *auth.Store) error {
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println(infoStyle.Render("Signed out."))
	return nil
}
