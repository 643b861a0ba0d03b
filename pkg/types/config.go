package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Object storage
	StorageBucketName string `envconfig:"STORAGE_BUCKET_NAME" default:"hearthbox-documents"`

	// Extraction
	// "heuristic" runs the local text extractor, "textract" calls AWS Textract
	Extractor         string `envconfig:"EXTRACTOR" default:"heuristic"`
	AnalyzeTimeoutSec uint   `envconfig:"ANALYZE_TIMEOUT_SEC" default:"30"`

	// Notifications (optional; empty disables the redis publisher)
	RedisURL           string `envconfig:"REDIS_URL"`
	EventChannelPrefix string `envconfig:"EVENT_CHANNEL_PREFIX" default:"hearthbox.intake"`
}
