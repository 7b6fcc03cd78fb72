package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/QinlinChen/StuHub/apps/api/echo"
	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
	"github.com/QinlinChen/StuHub/services/email"
	"github.com/QinlinChen/StuHub/services/logger"
	"github.com/QinlinChen/StuHub/services/metrics"
	"github.com/QinlinChen/StuHub/storage/database"
	"github.com/QinlinChen/StuHub/storage/database/sqlboiler"
	"github.com/QinlinChen/StuHub/storage/database/sqlx"
	"github.com/QinlinChen/StuHub/tests"
)

const testPassword = "S3cure*Pwd"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	server  *Server
	conf    *core.Config
	usrRepo user.Repository
	crsRepo course.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	metrics *metrics.Manager
}

func setup(t *testing.T) testEnv {
	conf := testutil.NewConfig(t)
	conf.AppAdmin = mail.Address{Name: "StuHub Admin", Address: "admin@stuhub.test"}

	// set up DB & repos
	db := testutil.PrepareDB(t, conf)
	usrRepo := boiledrepos.NewUserRepository(db, database.Driver(conf))
	crsRepo := sqlxrepos.NewCourseRepository(database.NewSQLX(db, conf))

	// set up services
	logger := logsvc.NewRollbarLogger(io.Discard, conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	metricsMgr := metrics.NewManager()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	crsSvc, err := course.NewService(crsRepo, conf, metricsMgr)
	require.NoError(t, err)

	// set up server
	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Metrics:    metricsMgr,
		MailSvc:    mailSvc,
		UserSvc:    user.NewService(usrRepo, mailSvc, conf),
		CourseSvc:  crsSvc,
	})

	return testEnv{
		server:  server,
		conf:    conf,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		mailSvc: mailSvc,
		metrics: metricsMgr,
	}
}

func (env testEnv) createUser(t *testing.T, uname, role string, isActive bool) user.User {
	return testutil.CreateUser(t, env.usrRepo, uname, uname+"@test.cn", testPassword, role, isActive)
}

func (env testEnv) getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(env.conf, GetUserClaims(env.conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (env testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func (env testEnv) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := env.serve(newAuthRequest(method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func TestHome(t *testing.T) {
	env := setup(t)
	rec := env.serve(newRequest(http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to StuHub API!", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	env := setup(t)
	env.serve(newRequest(http.MethodGet, "/"))

	rec := env.serve(newRequest(http.MethodGet, "/metrics"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stuhub_http_requests_total{method="GET",route="/",status_code="200"} 1`)
}
