package core

// StorageKey is the fixed namespace under which the account directory is
// persisted. It matches the key the simulated frontend backend has always
// used, so existing snapshots keep loading.
const StorageKey = "app-jwt-refresh-users"

// Account is a persistent identity record in the directory.
//
// Password holds whatever the configured PasswordHandler produced at
// bootstrap (an argon2id hash by default). RefreshTokens is the set of
// currently-valid refresh-token identifiers; an account may hold several
// at once, one per live session.
type Account struct {
	ID            int      `json:"id"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	UserName      string   `json:"userName"`
	Password      string   `json:"password"`
	IsAdmin       bool     `json:"isAdmin"`
	RefreshTokens []string `json:"refreshToken"`
}

// Clone returns a deep copy so callers can't mutate directory state
// behind the lock.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	dup := *a
	dup.RefreshTokens = append([]string(nil), a.RefreshTokens...)
	return &dup
}

// HasRefreshToken reports whether id is currently in the account's set.
func (a *Account) HasRefreshToken(id string) bool {
	for _, t := range a.RefreshTokens {
		if t == id {
			return true
		}
	}
	return false
}

// Profile builds the public payload returned by Authenticate and Refresh.
func (a *Account) Profile(accessToken string) *PublicProfile {
	return &PublicProfile{
		ID:        a.ID,
		UserName:  a.UserName,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		IsAdmin:   a.IsAdmin,
		JWTToken:  accessToken,
	}
}

// PublicProfile is the response body for successful Authenticate and
// Refresh calls. Field names are part of the wire contract.
type PublicProfile struct {
	ID        int    `json:"id"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin"`
	JWTToken  string `json:"jwtToken"`
}

// SeedAccounts returns the sample accounts a fresh directory is
// bootstrapped with. Passwords are plaintext here; the directory hashes
// them through its PasswordHandler before the first save.
func SeedAccounts() []*Account {
	return []*Account{
		{
			ID:            1,
			FirstName:     "Laura",
			LastName:      "Gomez",
			UserName:      "lgomez",
			Password:      "mypassword1",
			IsAdmin:       true,
			RefreshTokens: []string{},
		},
		{
			ID:            2,
			FirstName:     "Carlos",
			LastName:      "Ramirez",
			UserName:      "cramirez",
			Password:      "securepass2",
			IsAdmin:       false,
			RefreshTokens: []string{},
		},
	}
}
