package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fcastro-dev/taskroom/internal/flagx"
)

// jsonConfig is the DTO used only for reading JSON configuration files.
// Durations are expressed in minutes to keep the file format simple; after
// unmarshalling the values are copied into the runtime Config.
type jsonConfig struct {
	Addr                 *string  `json:"address"`
	DatabaseDSN          *string  `json:"database_dsn"`
	SecretKey            *string  `json:"secret_key"`
	TokenValidityMinutes *int     `json:"token_validity_minutes"`
	BcryptCost           *int     `json:"bcrypt_cost"`
	MailBaseURL          *string  `json:"mail_base_url"`
	MailAPIKey           *string  `json:"mail_api_key"`
	MailSenderName       *string  `json:"mail_sender_name"`
	MailSenderEmail      *string  `json:"mail_sender_email"`
	CORSOrigins          []string `json:"cors_origins"`
	MaxBodyBytes         *int64   `json:"max_body_bytes"`
}

// parseJson overlays values from the JSON file named by the -c/-config flags.
// Absent file means no overlay; an unreadable or invalid file panics, since
// an explicitly requested config that cannot be loaded is not recoverable.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != nil {
		config.Addr = *c.Addr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidityMinutes != nil {
		config.TokenValidity = time.Duration(*c.TokenValidityMinutes) * time.Minute
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.MailBaseURL != nil {
		config.MailBaseURL = *c.MailBaseURL
	}
	if c.MailAPIKey != nil {
		config.MailAPIKey = *c.MailAPIKey
	}
	if c.MailSenderName != nil {
		config.MailSenderName = *c.MailSenderName
	}
	if c.MailSenderEmail != nil {
		config.MailSenderEmail = *c.MailSenderEmail
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}
}
