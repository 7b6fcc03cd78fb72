package echoapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/QinlinChen/StuHub/apps/api/echo"
)

func TestFeedbackAPI(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "qinlin", "", true)
	token := env.getToken(t, usr)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/feedback",
			body: marchallObj(t, FeedbackRequest{Body: "hi"}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "empty body", method: http.MethodPost, path: "/api/feedback", token: token,
			body: marchallObj(t, FeedbackRequest{Body: "   "}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"body": "this field is required"}),
		},
		{
			name: "too long", method: http.MethodPost, path: "/api/feedback", token: token,
			body: marchallObj(t, FeedbackRequest{Body: strings.Repeat("a", 2001)}), wantCode: http.StatusBadRequest,
		},
	}
	env.run(t, tests)
	require.Empty(t, env.mailSvc.SentMessages())

	rec := env.serve(newAuthRequest(
		http.MethodPost, "/api/feedback", token, marchallObj(t, FeedbackRequest{Body: " The GPA page is great. "}),
	))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"success": "Thank you for your feedback!"}`, rec.Body.String())

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.conf.AppAdmin, sent[0].To[0])
	assert.Equal(t, "Feedback from qinlin", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "The GPA page is great.")
	assert.Contains(t, sent[0].TextContent, usr.Email)
}
