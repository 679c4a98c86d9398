package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"polly-relay/internal/database"
	"polly-relay/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

/* ---------- 測試輔助 ---------- */

type testValidator struct{ v *validator.Validate }

func (tv testValidator) Validate(i any) error { return tv.v.Struct(i) }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	return e
}

func newJSONCtx(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func restoreSeams() {
	hashPassword = service.HashPassword
	authenticateUser = service.AuthenticateUser
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// valuesRow 依序把 vals 寫入 Scan 的目標
type valuesRow struct{ vals []any }

func (r valuesRow) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: want %d dest, got %d", len(r.vals), len(dest))
	}
	for i, v := range r.vals {
		switch d := dest[i].(type) {
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

type memUser struct {
	id      int
	name    string
	email   string
	hash    string
	created time.Time
}

// memDB 以記憶體模擬 users 資料表，email 具唯一性
type memDB struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*memUser
	writes int
}

func newMemDB() *memDB {
	return &memDB{nextID: 1, users: map[string]*memUser{}}
}

func (m *memDB) row(u *memUser) pgx.Row {
	return valuesRow{vals: []any{u.id, u.name, u.email, u.hash, u.created}}
}

func (m *memDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case strings.Contains(sql, "INSERT INTO users"):
		email := args[1].(string)
		if _, ok := m.users[email]; ok {
			return errRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
		}
		u := &memUser{id: m.nextID, name: args[0].(string), email: email, hash: args[2].(string), created: time.Now()}
		m.nextID++
		m.users[email] = u
		m.writes++
		return valuesRow{vals: []any{u.id, u.created}}
	case strings.Contains(sql, "WHERE email = $1"):
		if u, ok := m.users[args[0].(string)]; ok {
			return m.row(u)
		}
	case strings.Contains(sql, "WHERE id = $1"):
		for _, u := range m.users {
			if u.id == args[0].(int) {
				return m.row(u)
			}
		}
	}
	return errRow{err: pgx.ErrNoRows}
}

func (m *memDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.Contains(sql, "UPDATE users") {
		return pgconn.CommandTag{}, errors.New("unexpected exec")
	}
	for _, u := range m.users {
		if u.id == args[1].(int) {
			u.hash = args[0].(string)
			m.writes++
			return pgconn.NewCommandTag("UPDATE 1"), nil
		}
	}
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (m *memDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (m *memDB) Ping(context.Context) error { return nil }
func (m *memDB) Close() {}

func (m *memDB) hashOf(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u.hash
	}
	return ""
}

var _ database.DB = (*memDB)(nil)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recordingNotifier) PasswordChanged(_ context.Context, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, name+" <"+email+">")
	return r.err
}

func newTokens(t *testing.T) *service.TokenIssuer {
	t.Helper()
	ti, err := service.NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)
	return ti
}
