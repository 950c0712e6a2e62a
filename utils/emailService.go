package utils

import (
	"context"
	"fmt"
	"html"
	"lms/models"
	courseModels "lms/models/course"
	"log"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// UserFinder looks up the recipient of a notification
type UserFinder interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// GradeMailer emails a student when one of their assignments is graded.
// Without an API key the message is only logged.
type GradeMailer struct {
	users  UserFinder
	key    string
	from   *sgmail.Email
	sendFn func(*sgmail.SGMailV3) error
}

func NewGradeMailer(users UserFinder, apiKey, sender string) *GradeMailer {
	m := &GradeMailer{
		users: users,
		key:   apiKey,
		from:  sgmail.NewEmail("LMS", sender),
	}
	m.sendFn = m.send
	return m
}

// GradeReleased implements grading.GradeNotifier
func (m *GradeMailer) GradeReleased(ctx context.Context, sub *courseModels.AssignmentSubmission, assignment *courseModels.Assignment) error {
	user, err := m.users.FindUser(ctx, sub.StudentID)
	if err != nil {
		return errors.Wrapf(err, "load student %d", sub.StudentID)
	}
	if user == nil || user.Email == "" {
		log.Printf("[EMAIL] no address for student %d, grade email skipped", sub.StudentID)
		return nil
	}

	msg := gradeMessage(m.from, user, sub, assignment)
	if m.key == "" {
		log.Printf("[EMAIL] (not sent) to=%s subject=%q", user.Email, msg.Subject)
		return nil
	}
	return m.sendFn(msg)
}

func gradeMessage(from *sgmail.Email, user *models.User, sub *courseModels.AssignmentSubmission, assignment *courseModels.Assignment) *sgmail.SGMailV3 {
	var score float64
	if sub.Score != nil {
		score = *sub.Score
	}
	subject := "Assignment graded: " + assignment.Title

	text := fmt.Sprintf("Dear %s,\n\nYour submission for %q has been graded: %.2f / %d.\n",
		user.Name, assignment.Title, score, assignment.PointsOrDefault())
	if sub.Feedback != "" {
		text += "\nFeedback:\n" + sub.Feedback + "\n"
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your submission for <strong>%s</strong> has been graded.</p>
		<div class="info-box"><strong>Score:</strong> %.2f / %d</div>
	`, html.EscapeString(user.Name), html.EscapeString(assignment.Title), score, assignment.PointsOrDefault())
	if sub.Feedback != "" {
		body += fmt.Sprintf(`<p><em>%s</em></p>`, html.EscapeString(sub.Feedback))
	}

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(user.Name, user.Email))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(from)
	msg.Subject = subject
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", getEmailTemplate("Assignment Graded", body)),
	)
	return msg
}

func (m *GradeMailer) send(msg *sgmail.SGMailV3) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned %d: %s", res.StatusCode, res.Body)
	}
	log.Printf("[EMAIL] grade email sent subject=%q", msg.Subject)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F3A5F; padding: 24px; text-align: center; color: #FFFFFF; }
			.content { padding: 32px 24px; color: #1F3A5F; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
