package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jobsphere/job-board/internal/config"
	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/middleware"

	"github.com/allegro/bigcache/v3"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	CacheKeyLandingJobs     = "landingJobs"
	CacheKeyNewJobsLastWeek = "newJobsLastWeek"
)

type Server struct {
	cfg          config.Config
	Conn         *sql.DB
	router       *mux.Router
	emailClient  email.Client
	SessionStore *sessions.CookieStore
	bigCache     *bigcache.BigCache
	logger       zerolog.Logger
}

func NewServer(
	cfg config.Config,
	conn *sql.DB,
	r *mux.Router,
	emailClient email.Client,
	sessionStore *sessions.CookieStore,
) Server {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(12 * time.Hour))
	svr := Server{
		cfg:          cfg,
		Conn:         conn,
		router:       r,
		emailClient:  emailClient,
		SessionStore: sessionStore,
		bigCache:     bigCache,
		logger:       logger,
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func (s Server) MEDIA(w http.ResponseWriter, status int, media []byte, mediaType string) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "max-age=31536000")
	w.WriteHeader(status)
	w.Write(media)
}

func (s Server) Log(err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
}

func (s Server) GetEmail() email.Client {
	return s.emailClient
}

func (s Server) Redirect(w http.ResponseWriter, r *http.Request, status int, dst string) {
	http.Redirect(w, r, dst, status)
}

// SignOnUser issues a JWT for the given claims and stores it in the session cookie.
func (s Server) SignOnUser(w http.ResponseWriter, r *http.Request, claims middleware.UserJWT) error {
	claims.ExpiresAt = time.Now().Add(30 * 24 * time.Hour).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(s.cfg.JwtSigningKey)
	if err != nil {
		return err
	}
	sess, err := s.SessionStore.Get(r, middleware.SessionName)
	if err != nil {
		return err
	}
	sess.Values["jwt"] = ss
	return sess.Save(r, w)
}

func (s Server) SignOffUser(w http.ResponseWriter, r *http.Request) error {
	sess, err := s.SessionStore.Get(r, middleware.SessionName)
	if err != nil {
		return err
	}
	delete(sess.Values, "jwt")
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(
		addr,
		middleware.HTTPSMiddleware(
			middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env)),
			s.cfg.Env,
		),
	)
}

func (s Server) GetJWTSigningKey() []byte {
	return s.cfg.JwtSigningKey
}

func (s Server) CacheGet(key string) ([]byte, bool) {
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	return s.bigCache.Set(key, val)
}

func (s Server) CacheDelete(key string) error {
	return s.bigCache.Delete(key)
}

// SeenSince reports whether the caller's IP was seen within timeAgo, and marks
// it as seen now. Requests without a forwarded-for header are never throttled.
func (s Server) SeenSince(r *http.Request, timeAgo time.Duration) bool {
	forwardedFor := r.Header.Get("x-forwarded-for")
	if forwardedFor == "" {
		return false
	}
	ipAddrs := strings.Split(forwardedFor, ", ")
	lastSeen, err := s.bigCache.Get(ipAddrs[0])
	if err == bigcache.ErrEntryNotFound {
		s.bigCache.Set(ipAddrs[0], []byte(time.Now().Format(time.RFC3339)))
		return false
	}
	if err != nil {
		return false
	}
	lastSeenTime, err := time.Parse(time.RFC3339, string(lastSeen))
	if err != nil {
		s.bigCache.Set(ipAddrs[0], []byte(time.Now().Format(time.RFC3339)))
		return false
	}
	if !lastSeenTime.After(time.Now().Add(-timeAgo)) {
		s.bigCache.Set(ipAddrs[0], []byte(time.Now().Format(time.RFC3339)))
		return false
	}

	return true
}
