// Package session keeps per-browser identity and flash messages in a signed cookie.
package session

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/pkg/config"
)

const (
	keyUsername = "username"
	keyAdmin    = "admin_logged_in"
	flashGroup  = "_flash"

	loggerContextKey = "session_logger"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// State is the identity carried by a request. Username and AdminLoggedIn are independent.
type State struct {
	Username      string
	AdminLoggedIn bool

	sess   sessions.Session
	logger *zap.Logger
}

// Middleware installs the cookie store on the engine. logger receives session save failures
// that have no caller to return them to.
func Middleware(cfg config.SessionConfig, secure bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	attach := sessions.Sessions(cfg.Name, store)
	return func(c *gin.Context) {
		c.Set(loggerContextKey, logger)
		attach(c)
	}
}

// Load reads the session attached by Middleware.
func Load(c *gin.Context) *State {
	sess := sessions.Default(c)
	st := &State{sess: sess, logger: zap.NewNop()}
	if l, ok := c.Get(loggerContextKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			st.logger = logger
		}
	}
	if v, ok := sess.Get(keyUsername).(string); ok {
		st.Username = v
	}
	if v, ok := sess.Get(keyAdmin).(bool); ok {
		st.AdminLoggedIn = v
	}
	return st
}

// LoggedIn reports whether a student is signed in.
func (s *State) LoggedIn() bool { return s.Username != "" }

// SetUser marks username as signed in. The admin flag is untouched.
func (s *State) SetUser(username string) error {
	s.Username = username
	s.sess.Set(keyUsername, username)
	return s.sess.Save()
}

// ClearUser removes only the student identity.
func (s *State) ClearUser() error {
	s.Username = ""
	s.sess.Delete(keyUsername)
	return s.sess.Save()
}

// SetAdmin raises the admin flag. The student identity is untouched.
func (s *State) SetAdmin() error {
	s.AdminLoggedIn = true
	s.sess.Set(keyAdmin, true)
	return s.sess.Save()
}

// ClearAdmin lowers only the admin flag.
func (s *State) ClearAdmin() error {
	s.AdminLoggedIn = false
	s.sess.Delete(keyAdmin)
	return s.sess.Save()
}

// AddFlash queues a message for the next render. Call Save (or a mutator) before redirecting.
func (s *State) AddFlash(category, message string) {
	s.sess.AddFlash(Flash{Category: category, Message: message}, flashGroup)
}

// Save persists pending changes.
func (s *State) Save() error {
	return s.sess.Save()
}

// Commit is Save for callers that only log the failure.
func (s *State) Commit() {
	if err := s.sess.Save(); err != nil {
		s.logger.Error("save session", zap.Error(err))
	}
}

// ConsumeFlashes returns and clears the queued messages.
func (s *State) ConsumeFlashes() []Flash {
	raw := s.sess.Flashes(flashGroup)
	if len(raw) == 0 {
		return nil
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	s.Commit()
	return flashes
}

// Handler is a gin handler that receives the loaded session explicitly.
type Handler func(c *gin.Context, st *State)

// Wrap adapts h to gin.
func Wrap(h Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c, Load(c))
	}
}
