package service

import (
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"

	"github.com/spectacle-shop/spectacle/pkg/cryptox"
)

// CaptchaTTL is the lifetime of a captcha verifier cookie.
const CaptchaTTL = 10 * time.Minute

const captchaCharset = "23456789abcdefghjkmnpqrstuvwxyz"

// CaptchaService issues captcha challenges and verifies answers. The server
// keeps no challenge state: the answer is committed to an HMAC digest the
// client carries in an HttpOnly cookie, and verification recomputes the
// digest from the submitted answer. Issuing a new challenge replaces the
// cookie, so only the latest challenge can ever be redeemed.
type CaptchaService struct {
	secret []byte
	driver *base64Captcha.DriverString
}

func NewCaptchaService(secret []byte) *CaptchaService {
	driver := base64Captcha.NewDriverString(
		80, 240, // height, width
		2,                                  // noise count
		base64Captcha.OptionShowHollowLine, // distraction lines
		5,                                  // answer length
		captchaCharset,
		nil, nil, nil, // default background, fonts
	)
	return &CaptchaService{
		secret: secret,
		driver: driver.ConvertFonts(),
	}
}

// Issue generates a fresh challenge. It returns the rendered image as a
// data: URL PNG and the HMAC digest committing to the answer.
func (s *CaptchaService) Issue() (image string, digest string, err error) {
	_, content, answer := s.driver.GenerateIdQuestionAnswer()

	item, err := s.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", err
	}

	return item.EncodeB64string(), s.digest(answer), nil
}

// Verify checks a submitted answer against the digest from the cookie.
// Matching is case-insensitive; an empty answer or digest always fails.
func (s *CaptchaService) Verify(answer, digest string) bool {
	if answer == "" || digest == "" {
		return false
	}
	return cryptox.VerifyHMAC(s.secret, strings.ToLower(answer), digest)
}

func (s *CaptchaService) digest(answer string) string {
	return cryptox.DigestHMAC(s.secret, strings.ToLower(answer))
}
