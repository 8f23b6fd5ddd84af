package identity

import "fmt"

func renderVerificationEmail(verifyURL string) (html, text string) {
	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; font-size: 24px;">Welcome to WishLink!</h1>

  <p>Please verify your email address by clicking the button below:</p>

  <a href="%s"
     style="display: inline-block; background: #E0457B; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;">
    Verify Email Address
  </a>

  <p style="color: #666; font-size: 14px;">
    This link expires in 24 hours. If you didn't create an account, you can ignore this email.
  </p>

  <p style="color: #666; font-size: 14px;">Or copy this link: %s</p>
</body>
</html>`, verifyURL, verifyURL)

	text = fmt.Sprintf(`Welcome to WishLink!

Please verify your email address by visiting:
%s

This link expires in 24 hours.

If you didn't create an account, you can ignore this email.

--
WishLink`, verifyURL)

	return html, text
}

func renderPasswordResetEmail(resetURL string) (html, text string) {
	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; font-size: 24px;">Set Your WishLink Password</h1>

  <p>Click the button below to choose your password:</p>

  <a href="%s"
     style="display: inline-block; background: #E0457B; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;">
    Set Password
  </a>

  <p style="color: #666; font-size: 14px;">
    This link expires in 1 hour and can only be used once.
  </p>

  <p style="color: #666; font-size: 14px;">Or copy this link: %s</p>

  <p style="color: #666; font-size: 14px;">
    If you didn't request this, you can safely ignore this email.
  </p>
</body>
</html>`, resetURL, resetURL)

	text = fmt.Sprintf(`Set Your WishLink Password

Click the link below to choose your password:
%s

This link expires in 1 hour and can only be used once.

If you didn't request this, you can safely ignore this email.

--
WishLink`, resetURL)

	return html, text
}
