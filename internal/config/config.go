package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Content  ContentConfig  `mapstructure:"content"  validate:"required"`
	Quiz     QuizConfig     `mapstructure:"quiz"     validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1,lte=300"`
}

// DatabaseConfig locates the embedded store. The path is the only place the
// database file is named; nothing else reads it from the environment.
type DatabaseConfig struct {
	Path          string `mapstructure:"path"            validate:"required"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" validate:"gte=0,lte=60000"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"  validate:"gte=1,lte=16"`
}

// ContentConfig locates the read-only content collections.
type ContentConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// QuizConfig tunes quiz sessions.
type QuizConfig struct {
	QuestionCount int `mapstructure:"question_count" validate:"gte=1,lte=50"`
	CompletionXP  int `mapstructure:"completion_xp"  validate:"gte=0,lte=1000"`
}

// AuthConfig contains webhook authentication settings. An empty secret
// disables authentication.
type AuthConfig struct {
	WebhookSecret        string `mapstructure:"webhook_secret"         validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
}
