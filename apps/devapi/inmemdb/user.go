package inmemdb

import (
	"math"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/user"
)

type User struct {
	user.Profile
	PasswordHash []byte
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (db *DB) CreateUser(usr User) (User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	usr.Email = core.CleanString(usr.Email, true /* lower */)
	for _, u := range db.users {
		if u.Email == usr.Email {
			return User{}, ErrEmailExists
		}
	}
	usr.ID = newID()
	usr.CreatedAt = time.Now().UTC()
	db.users[usr.ID] = &usr
	return usr, nil
}

func (db *DB) UserByID(id string) (User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if u, ok := db.users[id]; ok {
		return *u, nil
	}
	return User{}, ErrNotFound
}

func (db *DB) UserByEmail(email string) (User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	email = core.CleanString(email, true /* lower */)
	for _, u := range db.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

// Users returns the profiles having one of roles (all users when none are given), oldest first.
func (db *DB) Users(roles ...string) []user.Profile {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	profiles := make([]user.Profile, 0, len(db.users))
	for _, u := range db.users {
		if len(roles) > 0 && !hasRole(u.Role, roles) {
			continue
		}
		profiles = append(profiles, u.Profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })
	return profiles
}

func (db *DB) UpdateProfile(id string, data user.UpdateProfile) (user.Profile, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	u, ok := db.users[id]
	if !ok {
		return user.Profile{}, ErrNotFound
	}
	if data.Email != "" && data.Email != u.Email {
		for _, other := range db.users {
			if other.Email == data.Email {
				return user.Profile{}, ErrEmailExists
			}
		}
	}
	data.Apply(&u.Profile)
	return u.Profile, nil
}

// Stats counts the submitted exams of userID. Study time adds the length of the
// purchased lessons to the time spent on those exams, in hours.
func (db *DB) Stats(userID string) user.Stats {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var stats user.Stats
	var studied time.Duration
	for _, att := range db.attempts {
		if att.UserID != userID || !att.Submitted() {
			continue
		}
		stats.CompletedExams++
		studied += att.SubmittedAt.Sub(att.StartedAt)
	}
	for id := range db.purchases[userID] {
		if l, ok := db.lessons[id]; ok {
			studied += time.Duration(l.Duration) * time.Minute
		}
	}
	stats.StudyHours = math.Round(studied.Hours()*10) / 10
	return stats
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
