package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB and *sql.Tx the query layer needs, so queries
// can run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds all SQL statements used by the application.
type Queries struct {
	db DBTX
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Users ---

const createUser = `
INSERT INTO users (username, password_hash, is_admin, created_at)
VALUES (?, ?, ?, ?)
RETURNING username, password_hash, is_admin, created_at
`

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// CreateUser inserts a new account. A duplicate username fails the primary
// key constraint; callers translate that with IsConstraintErr.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.PasswordHash,
		arg.IsAdmin,
		arg.CreatedAt,
	)
	var u User
	err := row.Scan(&u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

const getUserByUsername = `
SELECT username, password_hash, is_admin, created_at
FROM users
WHERE username = ?
`

// GetUserByUsername returns the account with the given username, or
// sql.ErrNoRows if none exists.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

const listUsers = `
SELECT username, password_hash, is_admin, created_at
FROM users
ORDER BY created_at, username
LIMIT ? OFFSET ?
`

// ListUsersParams holds pagination for ListUsers.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns accounts ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the total number of accounts.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateUserPassword = `
UPDATE users
SET password_hash = ?
WHERE username = ?
`

// UpdateUserPasswordParams holds the fields for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	Username     string
}

// UpdateUserPassword replaces the stored credential for an account.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.Username)
	return err
}

const deleteUser = `
DELETE FROM users
WHERE username = ?
`

// DeleteUser removes an account and, via the schema's cascade, all of its
// sessions. It returns the number of accounts removed (0 or 1).
func (q *Queries) DeleteUser(ctx context.Context, username string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUser, username)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- Sessions ---

const createSession = `
INSERT INTO sessions (token, username, last_active)
VALUES (?, ?, ?)
RETURNING token, username, last_active
`

// CreateSessionParams holds the fields for CreateSession.
type CreateSessionParams struct {
	Token      string
	Username   string
	LastActive time.Time
}

// CreateSession inserts a new session row.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRowContext(ctx, createSession,
		arg.Token,
		arg.Username,
		arg.LastActive,
	)
	var s Session
	err := row.Scan(&s.Token, &s.Username, &s.LastActive)
	return s, err
}

const getSessionByToken = `
SELECT token, username, last_active
FROM sessions
WHERE token = ?
`

// GetSessionByToken returns the session with the given token, or
// sql.ErrNoRows if none exists.
func (q *Queries) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSessionByToken, token)
	var s Session
	err := row.Scan(&s.Token, &s.Username, &s.LastActive)
	return s, err
}

const touchSession = `
UPDATE sessions
SET last_active = ?1
WHERE token = ?2 AND last_active < ?1
`

// TouchSessionParams holds the fields for TouchSession.
type TouchSessionParams struct {
	LastActive time.Time
	Token      string
}

// TouchSession advances a session's last-activity timestamp. The condition
// keeps the timestamp monotonic under concurrent refreshes; affecting zero
// rows is not an error.
func (q *Queries) TouchSession(ctx context.Context, arg TouchSessionParams) error {
	_, err := q.db.ExecContext(ctx, touchSession, arg.LastActive, arg.Token)
	return err
}

const deleteSession = `
DELETE FROM sessions
WHERE token = ?
`

// DeleteSession removes a session row.
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, token)
	return err
}

const deleteIdleSessions = `
DELETE FROM sessions
WHERE last_active < ?
`

// DeleteIdleSessions removes every session whose last activity predates the
// cutoff. It returns the number of sessions evicted.
func (q *Queries) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteIdleSessions, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countSessions = `SELECT COUNT(*) FROM sessions`

// CountSessions returns the total number of sessions.
func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSessions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countSessionsByUsername = `SELECT COUNT(*) FROM sessions WHERE username = ?`

// CountSessionsByUsername returns the number of sessions owned by an account.
func (q *Queries) CountSessionsByUsername(ctx context.Context, username string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSessionsByUsername, username)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// --- Invites ---

const createInvite = `
INSERT INTO invites (code, expires_at)
VALUES (?, ?)
RETURNING code, expires_at
`

// CreateInviteParams holds the fields for CreateInvite.
type CreateInviteParams struct {
	Code      string
	ExpiresAt time.Time
}

// CreateInvite inserts a new invite code.
func (q *Queries) CreateInvite(ctx context.Context, arg CreateInviteParams) (Invite, error) {
	row := q.db.QueryRowContext(ctx, createInvite, arg.Code, arg.ExpiresAt)
	var i Invite
	err := row.Scan(&i.Code, &i.ExpiresAt)
	return i, err
}

const getInviteByCode = `
SELECT code, expires_at
FROM invites
WHERE code = ?
`

// GetInviteByCode returns the invite with the given code, or sql.ErrNoRows
// if none exists.
func (q *Queries) GetInviteByCode(ctx context.Context, code string) (Invite, error) {
	row := q.db.QueryRowContext(ctx, getInviteByCode, code)
	var i Invite
	err := row.Scan(&i.Code, &i.ExpiresAt)
	return i, err
}

const redeemInvite = `
DELETE FROM invites
WHERE code = ? AND expires_at > ?
`

// RedeemInviteParams holds the fields for RedeemInvite.
type RedeemInviteParams struct {
	Code string
	Now  time.Time
}

// RedeemInvite consumes an invite in a single conditional delete. Exactly one
// concurrent caller can observe an affected row; everyone else sees zero.
func (q *Queries) RedeemInvite(ctx context.Context, arg RedeemInviteParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, redeemInvite, arg.Code, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listInvites = `
SELECT code, expires_at
FROM invites
ORDER BY expires_at
`

// ListInvites returns all outstanding invites ordered by expiry.
func (q *Queries) ListInvites(ctx context.Context) ([]Invite, error) {
	rows, err := q.db.QueryContext(ctx, listInvites)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []Invite
	for rows.Next() {
		var i Invite
		if err := rows.Scan(&i.Code, &i.ExpiresAt); err != nil {
			return nil, err
		}
		invites = append(invites, i)
	}
	return invites, rows.Err()
}

const deleteExpiredInvites = `
DELETE FROM invites
WHERE expires_at <= ?
`

// DeleteExpiredInvites removes every invite whose expiry has passed. It
// returns the number of invites removed.
func (q *Queries) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredInvites, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countInvites = `SELECT COUNT(*) FROM invites`

// CountInvites returns the total number of outstanding invites.
func (q *Queries) CountInvites(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countInvites)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// --- Events ---

const createEvent = `
INSERT INTO events (message, created_at)
VALUES (?, ?)
RETURNING id, message, created_at
`

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Message   string
	CreatedAt time.Time
}

// CreateEvent appends an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent, arg.Message, arg.CreatedAt)
	var e Event
	err := row.Scan(&e.ID, &e.Message, &e.CreatedAt)
	return e, err
}

const listEvents = `
SELECT id, message, created_at
FROM events
ORDER BY id DESC
LIMIT ? OFFSET ?
`

// ListEventsParams holds pagination for ListEvents.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns audit log entries, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const countEvents = `SELECT COUNT(*) FROM events`

// CountEvents returns the total number of audit log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteOldEvents = `
DELETE FROM events
WHERE created_at < ?
`

// DeleteOldEvents removes audit log entries older than the cutoff. It
// returns the number of entries removed.
func (q *Queries) DeleteOldEvents(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOldEvents, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
