package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned before any SQL is built when a user,
// host or trigger name falls outside the allow-list.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrInvalidGrantLevel is returned for a grant level other than
// GrantReadOnly or GrantReadWrite.
var ErrInvalidGrantLevel = errors.New("invalid grant level")

// Grant levels accepted by Grant.
const (
	GrantReadOnly  = "read_only"
	GrantReadWrite = "read_write"
)

var (
	userNameRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,31}$`)
	hostRe        = regexp.MustCompile(`^(%|localhost|[A-Za-z0-9.\-%]{1,60})$`)
	triggerNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)
)

var grantPrivileges = map[string]string{
	GrantReadOnly:  "SELECT",
	GrantReadWrite: "SELECT, INSERT, UPDATE, DELETE",
}

// DBAccount is a MySQL account as listed by ListUsers.
type DBAccount struct {
	User string `json:"user"`
	Host string `json:"host"`
}

// TriggerInfo summarizes one trigger of the application schema.
type TriggerInfo struct {
	Name   string `json:"name"`
	Event  string `json:"event"`
	Table  string `json:"table"`
	Timing string `json:"timing"`
}

// AdminRepo performs the fixed set of account and trigger administration
// statements.  Account statements cannot take placeholders for names, so
// every name is checked against an allow-list and then quoted.
type AdminRepo struct {
	db       *sql.DB
	schema   string // application schema the grants apply to
	selfUser string // the service's own account, hidden from ListUsers
}

func NewAdminRepo(db *sql.DB, schema, selfUser string) *AdminRepo {
	return &AdminRepo{db: db, schema: schema, selfUser: selfUser}
}

// ValidateAccount checks a user/host pair against the allow-list.
func ValidateAccount(user, host string) error {
	if !userNameRe.MatchString(user) {
		return fmt.Errorf("user %q: %w", user, ErrInvalidIdentifier)
	}
	if !hostRe.MatchString(host) {
		return fmt.Errorf("host %q: %w", host, ErrInvalidIdentifier)
	}
	return nil
}

// ValidateTrigger checks a trigger name against the allow-list.
func ValidateTrigger(name string) error {
	if !triggerNameRe.MatchString(name) {
		return fmt.Errorf("trigger %q: %w", name, ErrInvalidIdentifier)
	}
	return nil
}

// account renders 'user'@'host'; callers validate first.
func account(user, host string) string {
	return "'" + user + "'@'" + host + "'"
}

// quoteIdent backtick-quotes a schema name.
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// ListUsers returns accounts other than system accounts and the service's
// own user.
func (r *AdminRepo) ListUsers(ctx context.Context) ([]DBAccount, error) {
	const q = `SELECT user, host FROM mysql.user
	           WHERE user NOT LIKE 'mysql.%' AND user <> 'root' AND user NOT LIKE 'debian-%' AND user <> ?
	           ORDER BY user, host`
	rows, err := r.db.QueryContext(ctx, q, r.selfUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DBAccount{}
	for rows.Next() {
		var a DBAccount
		if err := rows.Scan(&a.User, &a.Host); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateUser creates an account.  The password is a bound parameter.
func (r *AdminRepo) CreateUser(ctx context.Context, user, host, password string) error {
	if err := ValidateAccount(user, host); err != nil {
		return err
	}
	if password == "" {
		return errors.New("password required")
	}
	_, err := r.db.ExecContext(ctx, "CREATE USER "+account(user, host)+" IDENTIFIED BY ?", password)
	return mapAdminError("create user", err)
}

func (r *AdminRepo) DropUser(ctx context.Context, user, host string) error {
	if err := ValidateAccount(user, host); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DROP USER "+account(user, host))
	return mapAdminError("drop user", err)
}

// Grant gives the account read_only or read_write access to the
// application schema.
func (r *AdminRepo) Grant(ctx context.Context, user, host, level string) error {
	if err := ValidateAccount(user, host); err != nil {
		return err
	}
	privs, ok := grantPrivileges[level]
	if !ok {
		return fmt.Errorf("%q: %w", level, ErrInvalidGrantLevel)
	}
	q := fmt.Sprintf("GRANT %s ON %s.* TO %s", privs, quoteIdent(r.schema), account(user, host))
	_, err := r.db.ExecContext(ctx, q)
	return mapAdminError("grant", err)
}

// Revoke removes every privilege the account holds on the application
// schema.
func (r *AdminRepo) Revoke(ctx context.Context, user, host string) error {
	if err := ValidateAccount(user, host); err != nil {
		return err
	}
	q := fmt.Sprintf("REVOKE ALL PRIVILEGES ON %s.* FROM %s", quoteIdent(r.schema), account(user, host))
	_, err := r.db.ExecContext(ctx, q)
	return mapAdminError("revoke", err)
}

func (r *AdminRepo) ListGrants(ctx context.Context, user, host string) ([]string, error) {
	if err := ValidateAccount(user, host); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SHOW GRANTS FOR "+account(user, host))
	if err != nil {
		return nil, mapAdminError("show grants", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListTriggers returns the triggers of the application schema.
func (r *AdminRepo) ListTriggers(ctx context.Context) ([]TriggerInfo, error) {
	rows, err := r.db.QueryContext(ctx, "SHOW TRIGGERS FROM "+quoteIdent(r.schema))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, c := range cols {
		idx[strings.ToLower(c)] = i
	}
	raw := make([]sql.RawBytes, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	pick := func(name string) string {
		if i, ok := idx[name]; ok {
			return string(raw[i])
		}
		return ""
	}

	out := []TriggerInfo{}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, TriggerInfo{
			Name:   pick("trigger"),
			Event:  pick("event"),
			Table:  pick("table"),
			Timing: pick("timing"),
		})
	}
	return out, rows.Err()
}

// ShowTrigger returns the CREATE TRIGGER statement of name.
func (r *AdminRepo) ShowTrigger(ctx context.Context, name string) (string, error) {
	if err := ValidateTrigger(name); err != nil {
		return "", err
	}
	rows, err := r.db.QueryContext(ctx, "SHOW CREATE TRIGGER "+quoteIdent(r.schema)+"."+quoteIdent(name))
	if err != nil {
		return "", mapAdminError("show trigger", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", ErrNotFound
	}
	raw := make([]sql.RawBytes, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return "", err
	}
	// Trigger, sql_mode, SQL Original Statement, ...
	if len(raw) < 3 {
		return "", fmt.Errorf("show trigger: unexpected %d columns", len(raw))
	}
	return string(raw[2]), nil
}

func (r *AdminRepo) DropTrigger(ctx context.Context, name string) error {
	if err := ValidateTrigger(name); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DROP TRIGGER "+quoteIdent(r.schema)+"."+quoteIdent(name))
	return mapAdminError("drop trigger", err)
}

// MySQL errors for unknown accounts and triggers.
const (
	errCannotUser       = 1396 // ER_CANNOT_USER: create/drop of an existing/missing account
	errNonexistingGrant = 1141
	errTrgDoesNotExist  = 1360
)

func mapAdminError(op string, err error) error {
	if err == nil {
		return nil
	}
	if n, ok := mysqlErrNumber(err); ok {
		switch n {
		case errCannotUser:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case errNonexistingGrant, errTrgDoesNotExist:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return mapDBError(op, err)
}
