package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/pdv-api/internal/domain"
)

type Config struct {
	App       App      `mapstructure:",squash"`
	Server    Server   `mapstructure:",squash"`
	Database  Database `mapstructure:",squash"`
	Local     Local    `mapstructure:",squash"`
	Sync      Sync     `mapstructure:",squash"`
	Access    Access   `mapstructure:",squash"`
	Plans     Plans    `mapstructure:",squash"`
	Auth      Auth     `mapstructure:",squash"`
	SecretKey string   `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database aponta para o banco remoto compartilhado (gateway BaaS)
type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	SSLMode  string `mapstructure:"database_sslmode"`
	Migrate  bool   `mapstructure:"database_migrate"`
}

// IsConfigured informa se há dados suficientes para falar com o banco remoto.
// Sem isso a aplicação sobe em modo somente local.
func (d Database) IsConfigured() bool {
	if d.URL == "" || d.User == "" || d.DSN == "" {
		return false
	}

	parsed, err := url.Parse(d.DSN)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "postgres" || parsed.Scheme == "postgresql") && parsed.Host != ""
}

type Local struct {
	Path string `mapstructure:"local_db_path"`
}

type Sync struct {
	Enabled          bool          `mapstructure:"sync_enabled"`
	IntervalSeconds  int           `mapstructure:"sync_interval_seconds"`
	ShutdownTimeout  time.Duration `mapstructure:"sync_shutdown_timeout"`
	CompanyDebounce  time.Duration `mapstructure:"company_sync_debounce"`
	WatchEnabled     bool          `mapstructure:"sync_watch_enabled"`
	WatchMinBackoff  time.Duration `mapstructure:"sync_watch_min_backoff"`
	WatchMaxBackoff  time.Duration `mapstructure:"sync_watch_max_backoff"`
	WatchPingTimeout time.Duration `mapstructure:"sync_watch_ping_interval"`
	Operators        []string      `mapstructure:"sync_operators"`
}

func (s Sync) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

type Access struct {
	WarningDays int `mapstructure:"access_warning_days"`
}

// Plans guarda a tabela de planos de assinatura por forma de pagamento
type Plans struct {
	PixPrice    float64 `mapstructure:"plan_pix_price"`
	PixDays     int     `mapstructure:"plan_pix_days"`
	CardPrice   float64 `mapstructure:"plan_cartao_price"`
	CardDays    int     `mapstructure:"plan_cartao_days"`
	BoletoPrice float64 `mapstructure:"plan_boleto_price"`
	BoletoDays  int     `mapstructure:"plan_boleto_days"`
}

func (p Plans) Table() []domain.Plan {
	return []domain.Plan{
		{Method: domain.PlanPix, Price: p.PixPrice, Days: p.PixDays},
		{Method: domain.PlanCard, Price: p.CardPrice, Days: p.CardDays},
		{Method: domain.PlanBoleto, Price: p.BoletoPrice, Days: p.BoletoDays},
	}
}

// Find devolve o plano da forma de pagamento informada
func (p Plans) Find(method string) (domain.Plan, bool) {
	for _, plan := range p.Table() {
		if plan.Method == method {
			return plan, true
		}
	}
	return domain.Plan{}, false
}

type Auth struct {
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	RecoveryCodeTTL time.Duration `mapstructure:"recovery_code_ttl"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATABASE_USER", "")
	viper.SetDefault("DATABASE_PASSWORD", "")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MIGRATE", true)

	viper.SetDefault("LOCAL_DB_PATH", "data/pdv.db")

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("SESSION_TTL", "12h")
	viper.SetDefault("RECOVERY_CODE_TTL", "15m")

	viper.SetDefault("SYNC_ENABLED", true)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 30)          // Intervalo entre sincronizações
	viper.SetDefault("SYNC_SHUTDOWN_TIMEOUT", "10s")       // Última sincronização ao desligar
	viper.SetDefault("COMPANY_SYNC_DEBOUNCE", "2s")        // Espera após edição da empresa
	viper.SetDefault("SYNC_WATCH_ENABLED", true)           // Escuta de alterações remotas
	viper.SetDefault("SYNC_WATCH_MIN_BACKOFF", "10s")      // Reconexão do listener
	viper.SetDefault("SYNC_WATCH_MAX_BACKOFF", "1m")       // Reconexão do listener
	viper.SetDefault("SYNC_WATCH_PING_INTERVAL", "90s")    // Ping do listener ocioso
	viper.SetDefault("SYNC_OPERATORS", "")                 // Operadores atendidos além dos que fizeram login

	viper.SetDefault("ACCESS_WARNING_DAYS", 5)

	viper.SetDefault("PLAN_PIX_PRICE", 59.90)
	viper.SetDefault("PLAN_PIX_DAYS", 60)
	viper.SetDefault("PLAN_CARTAO_PRICE", 59.90)
	viper.SetDefault("PLAN_CARTAO_DAYS", 30)
	viper.SetDefault("PLAN_BOLETO_PRICE", 59.90)
	viper.SetDefault("PLAN_BOLETO_DAYS", 30)

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = buildDSN(config.Database)

	return config, nil
}

func buildDSN(db Database) string {
	if db.URL == "" {
		return ""
	}

	dsn := fmt.Sprintf(
		"%s://%s:%s@%s",
		db.Driver,
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		db.URL,
	)

	if db.SSLMode != "" {
		dsn = fmt.Sprintf("%s?sslmode=%s", dsn, db.SSLMode)
	}

	return dsn
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Warn("Arquivo .env não encontrado, seguindo apenas com variáveis de ambiente")
}
