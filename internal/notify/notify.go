// Package notify delivers verification codes to users by email
package notify

import (
	"context"
	"fmt"
	"time"
)

const appName = "Iska-Care"

// Mailer sends the two kinds of code mails. A nil error means the transport
// accepted the message.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
	SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type message struct {
	Subject string
	Text    string
	HTML    string
}

const htmlLayout = `<div style="font-family: Arial, sans-serif; color: #333; line-height: 1.6;">
<p>Dear User,</p>
<p>%s</p>
<p>Your %s is: <strong style="font-size: 1.2em;">%s</strong></p>
<p>This code will expire in %d minutes.</p>
<p>If you did not request %s, please ignore this email.</p>
<br>
<p>Sincerely,</p>
<p><strong>Team Creative Code</strong></p>
</div>`

func verificationMessage(code string, ttl time.Duration) message {
	mins := minutes(ttl)

	return message{
		Subject: appName + " - Email Verification Code",
		Text: fmt.Sprintf("Thank you for registering with %s.\n\nYour verification code is: %s\n\nThis code will expire in %d minutes.",
			appName, code, mins),
		HTML: fmt.Sprintf(htmlLayout,
			"Thank you for registering with "+appName+".", "verification code", code, mins, "this code"),
	}
}

func passwordResetMessage(code string, ttl time.Duration) message {
	mins := minutes(ttl)

	return message{
		Subject: appName + " - Password Reset Request",
		Text: fmt.Sprintf("We received a request to reset your password for your %s account.\n\nYour password reset code is: %s\n\nThis code will expire in %d minutes.",
			appName, code, mins),
		HTML: fmt.Sprintf(htmlLayout,
			"We received a request to reset your password for your "+appName+" account.", "password reset code", code, mins, "a password reset"),
	}
}

func minutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
