// Package auth implements registration and login over the users store. Passwords are
// stored and compared in plaintext; there are no tokens or sessions.
package auth

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/queue"
	"github.com/jghoshh/streakly/backend/storage/persistent"
	"github.com/jghoshh/streakly/lib/utils"
)

const sequenceName = "users"

// Default preferences of a newly registered user.
const (
	defaultNotifications = true
	defaultTheme         = "dark"
)

type Service struct {
	store    storage.Collection[map[string]models.User]
	ids      storage.IDSource
	notifier queue.Notifier
}

func NewService(store storage.Collection[map[string]models.User], ids storage.IDSource, notifier queue.Notifier) *Service {
	if notifier == nil {
		notifier = queue.NopNotifier{}
	}
	return &Service{store: store, ids: ids, notifier: notifier}
}

// Register is a function for registering a new user.
//
// It accepts five arguments:
// - ctx: The request context.
// - username: The display name of the new user.
// - email: The email of the new user. It is the key of the users store.
// - password: The password, stored as given.
// - avatar: The avatar identifier chosen by the user.
//
// It fails with a conflict when the email is already registered. The stored record,
// password included, is returned.
func (s *Service) Register(ctx context.Context, username, email, password, avatar string) (models.User, error) {
	if !utils.ValidateEmail(email) {
		return models.User{}, apperr.InvalidInput("value is not a valid email address")
	}

	var created models.User
	err := s.store.Update(ctx, func(users *map[string]models.User) error {
		if _, exists := (*users)[email]; exists {
			return apperr.Conflict("Email already registered")
		}
		id, err := s.ids.Next(ctx, sequenceName, maxID(*users))
		if err != nil {
			return err
		}
		created = models.User{
			ID:         strconv.Itoa(id),
			Username:   username,
			Email:      email,
			Password:   password,
			Avatar:     avatar,
			DateJoined: models.DateJoined,
			Preferences: models.Preferences{
				Notifications: defaultNotifications,
				Theme:         defaultTheme,
			},
		}
		(*users)[email] = created
		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("register %s: %w", email, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.UserRegistered, created.Public()))
	return created, nil
}

// Login scans every stored user and returns the first whose email and password both
// match exactly. The returned user carries no password.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	// Map iteration order is random; scan in id order so "first match" is stable.
	all := make([]models.User, 0, len(users))
	for _, u := range users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return idNumber(all[i].ID) < idNumber(all[j].ID)
	})

	for _, u := range all {
		if u.Email == email && u.Password == password {
			return u.Public(), nil
		}
	}
	return models.User{}, apperr.Unauthorized("Invalid email or password")
}

func idNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0
	}
	return n
}

func maxID(users map[string]models.User) int {
	highest := 0
	for _, u := range users {
		if n := idNumber(u.ID); n > highest {
			highest = n
		}
	}
	return highest
}
