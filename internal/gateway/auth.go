package gateway

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/soyeahso/agentdesk/internal/config"
)

// Auth modes accepted in gateway.auth.mode.
const (
	AuthModeToken    = "token"
	AuthModePassword = "password"
)

// Environment fallbacks for gateway credentials left empty in the config.
const (
	envGatewayToken    = "AGENTDESK_GATEWAY_TOKEN"
	envGatewayPassword = "AGENTDESK_GATEWAY_PASSWORD"
)

// AuthResult is the outcome of checking one set of credentials.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func denied(reason string) AuthResult { return AuthResult{Reason: reason} }

// ResolvedAuth is the gateway's effective credential configuration.
type ResolvedAuth struct {
	Mode     string
	Token    string
	Password string
}

// ResolveAuth fills credentials missing from cfg from the environment and
// picks a mode when none is configured: password if one is set, else token.
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	auth := ResolvedAuth{
		Mode:     cfg.Mode,
		Token:    firstNonEmpty(cfg.Token, os.Getenv(envGatewayToken)),
		Password: firstNonEmpty(cfg.Password, os.Getenv(envGatewayPassword)),
	}
	if auth.Mode == "" {
		auth.Mode = AuthModeToken
		if auth.Password != "" {
			auth.Mode = AuthModePassword
		}
	}
	return auth
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// expected returns the server secret for the mode and the matching
// credential offered by the client.
func (a ResolvedAuth) expected(client *ConnectAuth) (want, got string, ok bool) {
	switch a.Mode {
	case AuthModeToken:
		return a.Token, client.Token, true
	case AuthModePassword:
		return a.Password, client.Password, true
	}
	return "", "", false
}

// Authorize checks client credentials from a connect request.
func Authorize(server ResolvedAuth, client *ConnectAuth) AuthResult {
	if client == nil {
		return denied("no credentials provided")
	}
	want, got, ok := server.expected(client)
	switch {
	case !ok:
		return denied("unknown auth mode: " + server.Mode)
	case want == "":
		return denied("server " + server.Mode + " not configured")
	case got == "":
		return denied(server.Mode + " required")
	case !safeEqual(got, want):
		return denied(server.Mode + "_mismatch")
	}
	return AuthResult{OK: true, Method: server.Mode}
}

// AuthorizeRequest checks the "Authorization: Bearer <secret>" header of
// an HTTP request. The secret stands for whichever credential the mode uses.
func AuthorizeRequest(server ResolvedAuth, r *http.Request) AuthResult {
	secret, ok := bearerCredential(r.Header.Get("Authorization"))
	if !ok {
		return denied("bearer credentials required")
	}
	return Authorize(server, &ConnectAuth{Token: secret, Password: secret})
}

func bearerCredential(header string) (string, bool) {
	scheme, secret, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	secret = strings.TrimSpace(secret)
	return secret, secret != ""
}

// safeEqual compares in constant time without leaking the secret length.
func safeEqual(a, b string) bool {
	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	same := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(sameLen, same, 0) == 1
}
