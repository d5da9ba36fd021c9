package env

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for opsdesk.
func Process() error {
	if err := envconfig.Process("opsdesk", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by opsdesk.
type Environment struct {
	LogLevel           string        `default:"info"`
	Port               int           `default:"8080"`
	DatabaseType       string        `default:"postgres"`
	DatabaseDSN        string        `default:"host=postgres user=postgres password=postgres dbname=opsdesk port=5432 sslmode=disable"`
	MailGatewayURL     string        `default:""`
	MailGatewayTimeout time.Duration `default:"10s"`
	MailFromAddress    string        `default:"opsdesk@localhost"`
	BroadcastAlias     string        `default:"all-staff"`
	ReminderSchedule   string        `default:"@hourly"`
	ReminderAge        time.Duration `default:"24h"`
	ReferenceSeedPath  string        `default:""`
}
