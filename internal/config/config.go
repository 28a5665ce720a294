package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Port               string
	Env                string // either prod or dev, disables https redirect and few other bits
	DatabaseUser       string
	DatabasePassword   string
	DatabaseHost       string
	DatabasePort       string
	DatabaseName       string
	DatabaseSSLMode    string
	SessionKey         []byte
	JwtSigningKey      []byte
	EmailAPIKey        string
	SupportEmail       string // displayed on the site for support queries
	NoReplyEmail       string // used for transactional emails
	AdminEmail         string
	SiteName           string
	SiteHost           string
	URLProtocol        string
	JobsPerPage        int // how many jobs are shown per page result
	MaxUploadBytes     int64
	PasswordResetHours int // hours a password reset token stays valid
}

func LoadConfig() (Config, error) {
	// .env is optional, real env vars win
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	databaseUser := os.Getenv("DATABASE_USER")
	if databaseUser == "" {
		return Config{}, fmt.Errorf("DATABASE_USER cannot be empty")
	}
	databasePassword := os.Getenv("DATABASE_PASSWORD")
	if databasePassword == "" {
		return Config{}, fmt.Errorf("DATABASE_PASSWORD cannot be empty")
	}
	databaseHost := os.Getenv("DATABASE_HOST")
	if databaseHost == "" {
		return Config{}, fmt.Errorf("DATABASE_HOST cannot be empty")
	}
	databasePort := os.Getenv("DATABASE_PORT")
	if databasePort == "" {
		return Config{}, fmt.Errorf("DATABASE_PORT cannot be empty")
	}
	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return Config{}, fmt.Errorf("DATABASE_NAME cannot be empty")
	}
	databaseSSLMode := os.Getenv("DATABASE_SSL_MODE")
	if databaseSSLMode == "" {
		return Config{}, fmt.Errorf("DATABASE_SSL_MODE cannot be empty")
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to decode session key to bytes")
	}
	jwtSigningKeyString := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKeyString == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKeyString)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to decode jwt signing key to bytes")
	}
	emailAPIKey := os.Getenv("EMAIL_API_KEY")
	if emailAPIKey == "" {
		return Config{}, fmt.Errorf("EMAIL_API_KEY cannot be empty")
	}
	supportEmail := os.Getenv("SUPPORT_EMAIL")
	if supportEmail == "" {
		return Config{}, fmt.Errorf("SUPPORT_EMAIL cannot be empty")
	}
	noReplyEmail := os.Getenv("NO_REPLY_EMAIL")
	if noReplyEmail == "" {
		return Config{}, fmt.Errorf("NO_REPLY_EMAIL cannot be empty")
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return Config{}, fmt.Errorf("ADMIN_EMAIL cannot be empty")
	}
	env := os.Getenv("ENV")
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		return Config{}, fmt.Errorf("SITE_NAME cannot be empty")
	}
	siteHost := os.Getenv("SITE_HOST")
	if siteHost == "" {
		return Config{}, fmt.Errorf("SITE_HOST cannot be empty")
	}
	urlProtocol := os.Getenv("URL_PROTOCOL")
	if urlProtocol == "" {
		urlProtocol = "https://"
	}
	jobsPerPage, err := strconv.Atoi(os.Getenv("JOBS_PER_PAGE"))
	if err != nil {
		jobsPerPage = 20
	}
	maxUploadBytes, err := strconv.ParseInt(os.Getenv("MAX_UPLOAD_BYTES"), 10, 64)
	if err != nil {
		maxUploadBytes = 5 << 20
	}
	passwordResetHours, err := strconv.Atoi(os.Getenv("PASSWORD_RESET_HOURS"))
	if err != nil {
		passwordResetHours = 24
	}

	return Config{
		Port:               port,
		Env:                env,
		DatabaseUser:       databaseUser,
		DatabasePassword:   databasePassword,
		DatabaseHost:       databaseHost,
		DatabasePort:       databasePort,
		DatabaseName:       databaseName,
		DatabaseSSLMode:    databaseSSLMode,
		SessionKey:         sessionKeyBytes,
		JwtSigningKey:      jwtSigningKeyBytes,
		EmailAPIKey:        emailAPIKey,
		SupportEmail:       supportEmail,
		NoReplyEmail:       noReplyEmail,
		AdminEmail:         adminEmail,
		SiteName:           siteName,
		SiteHost:           siteHost,
		URLProtocol:        urlProtocol,
		JobsPerPage:        jobsPerPage,
		MaxUploadBytes:     maxUploadBytes,
		PasswordResetHours: passwordResetHours,
	}, nil
}
