package config

import (
	"fmt"
	"strings"
	"time"

	"codegen-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса генерации и доставки кода.
type Config struct {
	Env         string `envconfig:"ENV" default:"production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки HTTP сервера
	HTTPPort           string   `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"codegen_db"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки генерационных бэкендов. Первый сконфигурированный бэкенд
	// в фиксированном порядке (openai, ollama) используется для всех запросов.
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:""`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"codellama"`
	// Секретное поле БЕЗ envconfig тега
	OpenAIAPIKey string

	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`

	// Настройки валидатора
	NodeBinary         string        `envconfig:"NODE_BINARY" default:"node"`
	PythonBinary       string        `envconfig:"PYTHON_BINARY" default:"python3"`
	SyntaxCheckTimeout time.Duration `envconfig:"SYNTAX_CHECK_TIMEOUT" default:"15s"`
	StagingDir         string        `envconfig:"STAGING_DIR" default:""` // пусто = системный temp

	// Настройки доставки
	PreviewBaseURL   string        `envconfig:"PREVIEW_BASE_URL" default:"https://preview.codegen.app"`
	AppsDomain       string        `envconfig:"APPS_DOMAIN" default:"apps.codegen.app"`
	DownloadsBaseURL string        `envconfig:"DOWNLOADS_BASE_URL" default:"https://downloads.codegen.app"`
	DeploymentsDir   string        `envconfig:"DEPLOYMENTS_DIR" default:"./deployments"`
	DownloadsDir     string        `envconfig:"DOWNLOADS_DIR" default:"./downloads"`
	DeployTimeout    time.Duration `envconfig:"DEPLOY_TIMEOUT" default:"5m"`
	PreviewTTL       time.Duration `envconfig:"PREVIEW_TTL" default:"1h"`

	// Настройки Redis (реестр preview-идентификаторов, опционально)
	RedisAddr string `envconfig:"REDIS_ADDR" default:""`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	// Настройки RabbitMQ (публикация событий жизненного цикла, опционально)
	RabbitMQURL string `envconfig:"RABBITMQ_URL" default:""`

	// Секретное поле БЕЗ envconfig тега
	JWTSecret string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMaskedDSN возвращает DSN с замаскированным паролем для логирования.
func (c *Config) GetMaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
// envFiles передаются в godotenv; отсутствие файла не является ошибкой.
func LoadConfig(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password", "DB_PASSWORD")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret", "JWT_SECRET")
	if loadErr != nil {
		return nil, loadErr
	}

	// Ключ OpenAI опционален: бэкендом может быть Ollama.
	cfg.OpenAIAPIKey, _ = utils.ReadSecret("openai_api_key", "OPENAI_API_KEY")

	return &cfg, nil
}
