package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
	"github.com/QinlinChen/StuHub/storage/database"
)

// NewConfig returns a test configuration backed by a fresh SQLite file.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	conf := core.NewConfig()
	conf.TestMode = true
	conf.SecretKey = "test secret key"
	conf.FrontendBaseURL = "http://stuhub.test"
	conf.Database.Engine = database.SQLite
	conf.Database.Path = filepath.Join(t.TempDir(), "stuhub.sqlite")
	return conf
}

// PrepareDB opens and migrates the test database. It is closed when the test ends.
func PrepareDB(t *testing.T, conf *core.Config) *sql.DB {
	t.Helper()
	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if role == "" {
		role = user.DefaultRole
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	userID, name string,
	term int,
	cat course.Category,
	credit int,
	score float64,
) course.Course {
	t.Helper()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	created, err := repo.CreateCourses(context.Background(), []course.Course{{
		UserID:    userID,
		Name:      name,
		Term:      term,
		Category:  cat,
		Credit:    credit,
		Score:     score,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return created[0]
}
