// Package authsdk is a typed Go client for the Spectacle authentication
// service.
//
// Authentication is cookie-based: the service issues an HttpOnly session
// cookie on registration or login, and a readable CSRF cookie that every
// state-changing request must echo back in the X-XSRF-TOKEN header. The
// SDK manages both transparently through a cookie jar, so callers only
// deal with typed requests and responses.
//
// Basic usage:
//
//	client := authsdk.NewSDKClient("https://auth.example.com")
//
//	challenge, err := client.GetCaptcha(ctx)
//	// ... show challenge.Image to the user, collect the answer ...
//
//	session, mfa, err := client.Login(ctx, email, password, answer)
//	if mfa != nil {
//		// account has TOTP enabled; collect a code and finish the login
//		session, err = client.VerifyMFA(ctx, mfa.TempToken, code)
//	}
//
//	me, err := session.Me(ctx)
//
// A Session wraps the same underlying client; once the session cookie is
// in the jar, its methods hit the authenticated endpoints directly.
package authsdk
