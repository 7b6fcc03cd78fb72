package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
	"github.com/QinlinChen/StuHub/services/logger"
	"github.com/QinlinChen/StuHub/storage/database"
	"github.com/QinlinChen/StuHub/storage/database/sqlboiler"
	"github.com/QinlinChen/StuHub/storage/database/sqlx"
	"github.com/QinlinChen/StuHub/tests"
)

const testPassword = "S3cure*Pwd"

type testCLI struct {
	*commandLine
	out     *bytes.Buffer
	crsRepo course.Repository
}

func setup(t *testing.T) testCLI {
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	user.LoadCommonPasswords(logsvc.NewRollbarLogger(io.Discard, conf))

	crsRepo := sqlxrepos.NewCourseRepository(database.NewSQLX(db, conf))
	crsSvc, err := course.NewService(crsRepo, conf, nil)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	return testCLI{
		commandLine: &commandLine{
			db:         db,
			driver:     database.Driver(conf),
			usrRepo:    boiledrepos.NewUserRepository(db, database.Driver(conf)),
			crsSvc:     crsSvc,
			validate:   validate,
			translator: translator,
			out:        out,
		},
		out:     out,
		crsRepo: crsRepo,
	}
}

func mockPassword(t *testing.T, pwd string) {
	prev := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = prev })
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (cli testCLI) runTests(t *testing.T, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t)
	cli.runTests(t, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, cli.out.String(), "resetpassword")
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, driver string, args ...string) error {
		if driver != database.SQLite {
			return fmt.Errorf("unexpected driver %q", driver)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	defer func() { gooseRunFunc = database.RunMigration }()

	cli.runTests(t, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	})
}

func Test_commandLine_migrateDB(t *testing.T) {
	cli := setup(t)
	cli.runTests(t, []cliTest{
		{name: "down", args: []string{"migrate", "down"}},
		{name: "up", args: []string{"migrate", "up"}},
	})

	_, err := cli.usrRepo.QueryUsers(context.Background(), nil, nil)
	assert.NoError(t, err)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	existing := testutil.CreateUser(t, cli.usrRepo, "qinlin", "qinlin@test.cn", testPassword, "", false)

	cli.runTests(t, []cliTest{
		{name: "no flags", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "--username", "boss", "--email", "boss@test.cn"}, wantErr: errHelp},
		{
			name: "invalid email", args: []string{"adduser", "--username", "boss", "--email", "lol"}, pwd: testPassword,
			wantErrStr: "email: email must be a valid email address",
		},
		{
			name: "weak password", args: []string{"adduser", "--username", "boss", "--email", "boss@test.cn"}, pwd: "password1",
			wantErrStr: "password: password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		},
		{name: "create admin", args: []string{"adduser", "--username", " Boss ", "--email", "BOSS@test.cn", "--admin"}, pwd: testPassword},
		{name: "update existing", args: []string{"adduser", "--username", "qinlin", "--email", "qinlin@nju.edu.cn"}, pwd: "N3w*Passw0rd"},
	})

	ctx := context.Background()
	boss, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: "boss"})
	require.NoError(t, err)
	assert.Equal(t, "boss@test.cn", boss.Email)
	assert.Equal(t, user.RoleAdministrator, boss.Role)
	assert.True(t, boss.IsActive)
	assert.NoError(t, boss.CheckPassword(testPassword))

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.Equal(t, "qinlin@nju.edu.cn", usr.Email)
	assert.Equal(t, user.RoleUser, usr.Role)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("N3w*Passw0rd"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, cli.usrRepo, "qinlin", "qinlin@test.cn", testPassword, "", true)

	cli.runTests(t, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, pwd: "N3w*Passw0rd", wantErr: user.ErrNotFound},
		{
			name: "weak password", args: []string{"resetpassword", "--username", usr.Username}, pwd: "short",
			wantErrStr: "password: password must contain at least 8 characters",
		},
	})

	for _, tt := range []struct{ uname, pwd string }{
		{uname: usr.Username, pwd: "N3w*Passw0rd"},
		{uname: strings.ToUpper(usr.Email), pwd: "An0ther#Pwd"},
	} {
		t.Run("reset with "+tt.uname, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			require.NoError(t, cli.run([]string{"admin", "resetpassword", "--username", tt.uname}))

			refreshed, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
			require.NoError(t, err)
			assert.NoError(t, refreshed.CheckPassword(tt.pwd))
		})
	}
}

const transcript = `<html><body><table><tr><td>
<table><tr><td>学号: 141220000</td></tr></table>
<table>
<tr><th>序号</th><th>课程编号</th><th>课程名称</th><th>英文名称</th><th>类型</th><th>学分</th><th>总评</th></tr>
<tr><td>1</td><td>00000010</td><td>微积分I</td><td>-</td><td>通修</td><td>5</td><td>91</td></tr>
<tr><td>2</td><td>00000020</td><td>数据结构</td><td>-</td><td>核心</td><td>4</td><td>88.5</td></tr>
<tr><td>3</td><td>00000030</td><td>经典导读</td><td>-</td><td>阅读</td><td>0</td><td>90</td></tr>
</table></td></tr></table></body></html>`

func Test_commandLine_import(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, cli.usrRepo, "qinlin", "qinlin@test.cn", testPassword, "", true)

	path := filepath.Join(t.TempDir(), "transcript.html")
	require.NoError(t, os.WriteFile(path, []byte(transcript), 0o600))
	badPath := filepath.Join(t.TempDir(), "bad.html")
	bad := strings.Replace(transcript, "<td>4</td><td>88.5</td>", "<td>-5</td><td>250</td>", 1)
	require.NoError(t, os.WriteFile(badPath, []byte(bad), 0o600))

	cli.runTests(t, []cliTest{
		{name: "no args", args: []string{"import"}, wantErr: errHelp},
		{name: "no file", args: []string{"import", "--username", "qinlin"}, wantErr: errHelp},
		{name: "user not found", args: []string{"import", "--username", "lol", "--term", "1", path}, wantErr: user.ErrNotFound},
		{name: "invalid term", args: []string{"import", "--username", "qinlin", "--term", "9", path}, wantErrStr: "term must be between 1 and 8"},
		{
			name: "out of range row", args: []string{"import", "--username", "qinlin", "--term", "1", badPath},
			wantErrStr: "transcript: row 2 (数据结构): credit must be between 0 and 150, score must be between 0 and 100",
		},
	})

	cli.out.Reset()
	require.NoError(t, cli.run([]string{"admin", "import", "--username", "qinlin", "--term", "1", path}))
	assert.Contains(t, cli.out.String(), "imported 2 courses into term 1")
	assert.Contains(t, cli.out.String(), "1 courses could not be classified")
	assert.Contains(t, cli.out.String(), "经典导读")

	courses, total, err := cli.crsRepo.QueryCourses(context.Background(), course.QueryFilter{UserID: usr.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, courses, 2)
}

func Test_commandLine_stats(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, cli.usrRepo, "qinlin", "qinlin@test.cn", testPassword, "", true)
	testutil.CreateCourse(t, cli.crsRepo, usr.ID, "通识A", 1, course.General, 1, 90)
	testutil.CreateCourse(t, cli.crsRepo, usr.ID, "通识B", 1, course.General, 2, 75)
	testutil.CreateCourse(t, cli.crsRepo, usr.ID, "平台A", 2, course.ProfessionalBasic, 1, 80)
	testutil.CreateCourse(t, cli.crsRepo, usr.ID, "平台B", 2, course.ProfessionalBasic, 2, 35)
	testutil.CreateCourse(t, cli.crsRepo, usr.ID, "选修A", 3, course.ProfessionalOptional, 1, 90)

	cli.runTests(t, []cliTest{
		{name: "no username", args: []string{"stats"}, wantErr: errHelp},
		{name: "unknown format", args: []string{"stats", "--username", "qinlin", "--format", "xml"}, wantErrStr: `unknown format "xml"`},
		{
			name: "inverted terms", args: []string{"stats", "--username", "qinlin", "--term-from", "3", "--term-to", "1"},
			wantErrStr: "term_from: term_from must be less or equal to term_to",
		},
	})

	t.Run("json", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "stats", "--username", "qinlin", "--format", "json"}))

		var stats course.Statistics
		require.NoError(t, json.Unmarshal(cli.out.Bytes(), &stats))
		assert.Equal(t, 5, stats.CourseCount)
		assert.InDelta(t, 3.428, stats.ComprehensiveGPA, 0.001)
		assert.InDelta(t, 3.0, stats.AcademicGPA, 0.001)
		assert.InDelta(t, 2.5, stats.PostgraduateRecommendationGPA, 0.001)
		assert.Equal(t, 7, stats.TotalCredit)
		assert.Equal(t, 3, stats.GeneralCourseCredit)
	})

	t.Run("yaml with term range", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "stats", "--username", "qinlin@test.cn", "--term-to", "1"}))

		var stats course.Statistics
		require.NoError(t, yaml.Unmarshal(cli.out.Bytes(), &stats))
		assert.Equal(t, 2, stats.CourseCount)
		assert.Equal(t, 3, stats.TotalCredit)
		assert.InDelta(t, 80, stats.AverageWeightedScore, 0.001)
	})
}
