package boiledrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/strmangle"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/user"
)

const userColumns = "id, username, email, role, password_hash, is_active, created_at, updated_at, last_login"

// userOrderingFields lists the columns users may be ordered by.
var userOrderingFields = map[string]struct{}{
	"username":   {},
	"email":      {},
	"role":       {},
	"is_active":  {},
	"created_at": {},
	"last_login": {},
}

// userRow is the database representation of a user.User
type userRow struct {
	ID           string    `boil:"id"`
	Username     string    `boil:"username"`
	Email        string    `boil:"email"`
	Role         string    `boil:"role"`
	PasswordHash string    `boil:"password_hash"`
	IsActive     bool      `boil:"is_active"`
	CreatedAt    time.Time `boil:"created_at"`
	UpdatedAt    time.Time `boil:"updated_at"`
	LastLogin    null.Time `boil:"last_login"`
}

type userRepository struct {
	exec   core.DBExecutor
	bindTy int
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

// NewUserRepository returns a user.Repository; driver is the database/sql driver name of exec.
func NewUserRepository(exec core.DBExecutor, driver string) *userRepository {
	return &userRepository{exec: exec, bindTy: sqlx.BindType(driver)}
}

// rebind converts '?' bindvars to the driver's placeholders
func (repo userRepository) rebind(q string) string {
	return sqlx.Rebind(repo.bindTy, q)
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Username:     usr.Username,
		Email:        usr.Email,
		Role:         usr.Role,
		PasswordHash: string(usr.PasswordHash),
		IsActive:     usr.IsActive,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	usr := user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		Role:         row.Role,
		PasswordHash: []byte(row.PasswordHash),
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

// trapNoRowsErr maps "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := "SELECT " + userColumns + " FROM users WHERE (username = ? OR email = ?)"
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		q += " AND id NOT IN (" + strmangle.Placeholders(false, len(excludedUsers), 1, 1) + ")"
		for _, u := range excludedUsers {
			args = append(args, u.ID)
		}
	}

	var rows []userRow
	if err := queries.Raw(repo.rebind(q), args...).Bind(ctx, repo.exec, &rows); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.boil(usr)
	q := "INSERT INTO users (" + userColumns + ") VALUES (" + strmangle.Placeholders(false, 9, 1, 1) + ")"

	_, err := queries.Raw(
		repo.rebind(q),
		row.ID, row.Username, row.Email, row.Role, row.PasswordHash, row.IsActive, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	).ExecContext(ctx, repo.exec)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var where []string
	var args []interface{}

	if filter != nil {
		// users with Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			where = append(where, "(LOWER(username) LIKE ? OR LOWER(email) LIKE ?)")
			args = append(args, val, val)
		}
		if len(filter.Roles) > 0 {
			where = append(where, "role IN ("+strmangle.Placeholders(false, len(filter.Roles), 1, 1)+")")
			for _, role := range filter.Roles {
				args = append(args, role)
			}
		}
		if filter.IsActive != nil {
			where = append(where, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			where = append(where, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			where = append(where, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if _, ok := userOrderingFields[ord.Field]; ok {
			orderList = append(orderList, ord.String())
		}
	}
	orderList = append(orderList, "id ASC")
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []userRow
	if err := queries.Raw(repo.rebind(q), args...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unboil(row))
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var cond string
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		cond, args = "id = ?", []interface{}{filter.ID}
	case filter.Username != "":
		cond, args = "username = ?", []interface{}{filter.Username}
	case filter.Email != "":
		cond, args = "email = ?", []interface{}{filter.Email}
	case filter.UsernameOrEmail != "":
		cond, args = "(username = ? OR email = ?)", []interface{}{filter.UsernameOrEmail, filter.UsernameOrEmail}
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := fmt.Sprintf("SELECT %s FROM users WHERE %s LIMIT 1", userColumns, cond)
	if err := queries.Raw(repo.rebind(q), args...).Bind(ctx, repo.exec, &row); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.boil(usr)
	q := `UPDATE users
SET username = ?, email = ?, role = ?, password_hash = ?, is_active = ?, updated_at = ?, last_login = ?
WHERE id = ?`

	res, err := queries.Raw(
		repo.rebind(q),
		row.Username, row.Email, row.Role, row.PasswordHash, row.IsActive, row.UpdatedAt, row.LastLogin, row.ID,
	).ExecContext(ctx, repo.exec)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	q := "DELETE FROM users WHERE id IN (" + strmangle.Placeholders(false, len(ids), 1, 1) + ")"
	res, err := queries.Raw(repo.rebind(q), args...).ExecContext(ctx, repo.exec)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
