package config

import "time"

// SessionConfig mirrors the cookie options of the web front end: a 30 minute
// sliding idle timeout and an HttpOnly, essential cookie.
type SessionConfig struct {
	CookieName  string
	IdleTimeout time.Duration
	HTTPOnly    bool
	Secure      bool
	Prefix      string
}

// LoadSessionConfig builds the session settings.  Secure cookies are only
// required outside development so the server can run over plain HTTP locally.
func LoadSessionConfig(env Config) SessionConfig {
	return SessionConfig{
		CookieName:  envStr("SESSION_COOKIE_NAME", "WayFindAR.Session"),
		IdleTimeout: envDur("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		HTTPOnly:    true,
		Secure:      envBool("SESSION_COOKIE_SECURE", !env.IsDevelopment()),
		Prefix:      envStr("SESSION_PREFIX", "wayfindar:session"),
	}
}
