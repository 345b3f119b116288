package service

import (
	"fmt"

	"github.com/templui/folio/internal/model"
)

func newMessageEmailTemplate(msg *model.ContactMessage, inboxURL, appName string) (string, string) {
	topic := "New message"
	if msg.Subject != nil && *msg.Subject != "" {
		topic = *msg.Subject
	}

	subject := fmt.Sprintf("[%s] %s from %s", appName, topic, msg.Name)
	body := fmt.Sprintf(`%s <%s> sent you a message through your portfolio:

%s

Reply to this email to answer, or open your inbox:
%s

The %s Team`, msg.Name, msg.Email, msg.Message, inboxURL, appName)

	return subject, body
}

func accountDeletedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`Hi %s,

Your account has been permanently deleted from %s.

All your data, including your profile, portfolio content and uploaded files, has been removed from our systems.

If you didn't request this deletion, please contact us immediately, though we won't be able to recover your account.

Best,
The %s Team`, name, appName, appName)

	return subject, body
}
