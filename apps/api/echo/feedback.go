package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/QinlinChen/StuHub/core"
)

type feedbackAPI struct {
	mailSvc  core.EmailService
	auth     authenticator
	validate *validator.Validate
	admin    mail.Address
}

func registerFeedbackAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth authenticator, deps ServerDeps) {
	api := feedbackAPI{
		mailSvc:  deps.MailSvc,
		auth:     auth,
		validate: deps.Validate,
		admin:    deps.Conf.AppAdmin,
	}
	g.POST("/feedback", api.send, jwt, userMiddleware(auth))
}

// send mails the feedback of the authenticated user to the application admin.
func (api *feedbackAPI) send(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	var data FeedbackRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeedbackRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	api.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{api.admin},
		Subject:      "Feedback from " + usr.Username,
		TemplateName: "feedback",
		TemplateData: map[string]string{
			"Username": usr.Username,
			"Email":    usr.Email,
			"Body":     data.Body,
		},
	})
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "Thank you for your feedback!"})
}

type FeedbackRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (fr *FeedbackRequest) Validate(validate *validator.Validate) error {
	fr.Body = core.CleanString(fr.Body)
	return validate.Struct(fr)
}
