package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/session"
)

// visitor is the request-scoped session and the cart read from it.
type visitor struct {
	session *session.Session
	cart    *cart.Cart
}

// loadVisitor reads the visitor's session and cart. It must run before the
// handler touches the cart.
func (h *Handlers) loadVisitor(c *gin.Context) (*visitor, error) {
	id, _ := c.Cookie(h.sessionCfg.CookieName)

	sess, err := h.sessions.Load(c.Request.Context(), id)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "load session", Err: err}
	}

	ct, err := cart.Load(sess, h.sessionCfg.CartKey)
	if err != nil {
		h.logger.Warn("discarding unreadable cart", zap.String("session_id", sess.ID), zap.Error(err))
		sess.Delete(h.sessionCfg.CartKey)
		ct = cart.New()
	}

	return &visitor{session: sess, cart: ct}, nil
}

// saveVisitor writes the cart back into the session and persists it. It has
// to run before the response is written so the cookie can still be set.
func (h *Handlers) saveVisitor(c *gin.Context, v *visitor) error {
	if err := cart.Save(v.session, h.sessionCfg.CartKey, v.cart); err != nil {
		return err
	}

	issued := v.session.IsNew()
	changed := v.session.Modified()

	if err := h.sessions.Save(c.Request.Context(), v.session); err != nil {
		return &apperrors.PersistenceError{Op: "save session", Err: err}
	}

	// A session minted this request needs its cookie; any other write
	// refreshes the server-side TTL, so the cookie follows it.
	if v.session.Len() > 0 && (issued || changed) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			h.sessionCfg.CookieName,
			v.session.ID,
			int(h.sessionCfg.TTL.Seconds()),
			"/",
			"",
			h.sessionCfg.CookieSecure,
			true,
		)
	}
	return nil
}
