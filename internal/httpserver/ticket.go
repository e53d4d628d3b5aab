// internal/httpserver/ticket.go
//
// Round tickets: HS256 JWTs that bind a browser session to one round.
// Sent back as "Authorization: Bearer <ticket>" or the ticket cookie.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

const ticketCookieName = "guess_ticket"

type ticketClaims struct {
	RoundID string `json:"rid"`
	Player  string `json:"name"`
	jwt.RegisteredClaims
}

// signTicket issues a ticket for r.
func (s *Server) signTicket(r game.Round) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TicketTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, ticketClaims{
		RoundID: r.ID,
		Player:  r.Player,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   r.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseTicket verifies a ticket and returns its claims.
func (s *Server) parseTicket(tok string) (*ticketClaims, error) {
	claims := &ticketClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.RoundID == "" {
		return nil, errors.New("invalid ticket")
	}
	return claims, nil
}

// bearerOrCookie extracts a ticket from the Authorization header or cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(ticketCookieName); err == nil {
		return c.Value
	}
	return ""
}

// setTicketCookie writes the ticket cookie with appropriate security attributes.
func (s *Server) setTicketCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookie {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ticketCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// ---------------------------- ticket middleware -----------------------------

type ctxTicketKey struct{}

// requireTicket rejects requests without a valid ticket and injects the
// claims into the request context.
func (s *Server) requireTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing_ticket", "")
			return
		}
		claims, err := s.parseTicket(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_ticket", "")
			return
		}
		ctx := context.WithValue(r.Context(), ctxTicketKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ticketFrom(ctx context.Context) *ticketClaims {
	c, _ := ctx.Value(ctxTicketKey{}).(*ticketClaims)
	return c
}
