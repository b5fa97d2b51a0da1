package core

import (
	"fmt"
	"sync"

	"github.com/ddelgadillo/authsim/pkg/crypto"
)

// Directory owns the account collection and its persistence. Every
// read-modify-write cycle (find an account, mutate its token set, save)
// runs under one mutex, so concurrent refresh attempts with the same
// identifier serialize: exactly one observes the token and rotates it.
//
// The store is written after every mutation, whole-snapshot, matching
// the localStorage semantics of the frontend environment this simulates.
type Directory struct {
	mu       sync.Mutex
	store    DirectoryStore
	hasher   crypto.PasswordHandler
	accounts []*Account
}

// NewDirectory loads the directory from store, seeding and persisting
// the sample accounts if the store is empty. Seed passwords go through
// the hasher before the first save.
func NewDirectory(store DirectoryStore, hasher crypto.PasswordHandler) (*Directory, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if hasher == nil {
		hasher = crypto.NewArgon2()
	}

	accounts, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}

	d := &Directory{store: store, hasher: hasher, accounts: accounts}

	if len(accounts) == 0 {
		seeds := SeedAccounts()
		for _, a := range seeds {
			hashed, err := hasher.Hash(a.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash seed password: %w", err)
			}
			a.Password = hashed
		}
		d.accounts = seeds
		if err := d.persistLocked(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// FindByCredentials returns a copy of the account matching both username
// and password, or nil. Username comparison is exact and case-sensitive;
// the password check goes through the configured hasher.
func (d *Directory) FindByCredentials(username, password string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.accounts {
		if a.UserName != username {
			continue
		}
		ok, err := d.hasher.Verify(password, a.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
		if ok {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

// FindByRefreshToken returns a copy of the account whose token set
// contains id, or nil.
func (d *Directory) FindByRefreshToken(id string) *Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findByRefreshLocked(id).Clone()
}

// AppendRefresh adds id to the account's token set and persists. Tokens
// already on the account stay valid; the set never holds duplicates.
func (d *Directory) AppendRefresh(accountID int, id string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct := d.findByIDLocked(accountID)
	if acct == nil {
		return nil, fmt.Errorf("no account with id %d", accountID)
	}

	if !acct.HasRefreshToken(id) {
		acct.RefreshTokens = append(acct.RefreshTokens, id)
	}

	if err := d.persistLocked(); err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}

// Rotate atomically removes oldID from its owning account, adds newID,
// and persists. It returns nil if no account currently holds oldID -
// which is exactly what a second rotation attempt with a consumed
// identifier sees.
func (d *Directory) Rotate(oldID, newID string) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct := d.findByRefreshLocked(oldID)
	if acct == nil {
		return nil, nil
	}

	acct.RefreshTokens = removeToken(acct.RefreshTokens, oldID)
	if !acct.HasRefreshToken(newID) {
		acct.RefreshTokens = append(acct.RefreshTokens, newID)
	}

	if err := d.persistLocked(); err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}

// RemoveRefresh deletes id from whichever account holds it and persists.
// Unknown identifiers are a no-op; revocation does not prove the token
// ever existed.
func (d *Directory) RemoveRefresh(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct := d.findByRefreshLocked(id)
	if acct == nil {
		return false, nil
	}

	acct.RefreshTokens = removeToken(acct.RefreshTokens, id)
	if err := d.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAll clears every refresh token on an account, ending all of its
// sessions at once.
func (d *Directory) RevokeAll(accountID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct := d.findByIDLocked(accountID)
	if acct == nil {
		return fmt.Errorf("no account with id %d", accountID)
	}

	acct.RefreshTokens = []string{}
	return d.persistLocked()
}

// Snapshot returns a copy of every account, token sets and password
// hashes included. Redaction is the caller's concern.
func (d *Directory) Snapshot() []*Account {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, a.Clone())
	}
	return out
}

func (d *Directory) findByRefreshLocked(id string) *Account {
	if id == "" {
		return nil
	}
	for _, a := range d.accounts {
		if a.HasRefreshToken(id) {
			return a
		}
	}
	return nil
}

func (d *Directory) findByIDLocked(accountID int) *Account {
	for _, a := range d.accounts {
		if a.ID == accountID {
			return a
		}
	}
	return nil
}

func (d *Directory) persistLocked() error {
	if err := d.store.Save(d.accounts); err != nil {
		return fmt.Errorf("failed to save directory: %w", err)
	}
	return nil
}

func removeToken(tokens []string, id string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if t != id {
			out = append(out, t)
		}
	}
	return out
}
