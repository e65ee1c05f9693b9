package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jghoshh/streakly/backend/models"
	"github.com/zalando/go-keyring"
)

// KeyringService is the name of the service in the system keyring where the signed in
// user is remembered.
const KeyringService = "Streakly"

// KeyringUser is the keyring entry holding the signed in user's profile.
const KeyringUser = "current_user"

// RememberUser stores the profile of the signed in user. The password is never stored.
func RememberUser(u models.User) error {
	data, err := json.Marshal(u.Public())
	if err != nil {
		return err
	}
	if err := keyring.Set(KeyringService, KeyringUser, string(data)); err != nil {
		return errors.New("failed to access keyring: " + err.Error())
	}
	return nil
}

// CurrentUser returns the remembered user. ok is false when nobody is signed in.
func CurrentUser() (u models.User, ok bool, err error) {
	data, err := keyring.Get(KeyringService, KeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return models.User{}, false, nil
		}
		return models.User{}, false, errors.New("failed to access keyring: " + err.Error())
	}
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

// ForgetUser clears the remembered user. Forgetting when nobody is remembered is not an
// error.
func ForgetUser() error {
	err := keyring.Delete(KeyringService, KeyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.New("failed to delete user from keyring: " + err.Error())
	}
	return nil
}

// SignIn logs in and remembers the returned profile.
func (c *Client) SignIn(ctx context.Context, email, password string) (models.User, error) {
	u, err := c.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := RememberUser(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
