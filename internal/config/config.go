package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servicio
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Hacienda HaciendaConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis. Redis es opcional: se
// usa para compartir el token de Hacienda entre instancias.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// HaciendaConfig representa los endpoints y credenciales ante el
// Ministerio de Hacienda y el servicio firmador
type HaciendaConfig struct {
	// "00" pruebas, "01" producción
	Ambiente string

	AuthURL      string
	RecepcionURL string
	ConsultaURL  string
	AnulacionURL string
	FirmadorURL  string

	Usuario       string
	Password      string
	PasswordFirma string

	TimeoutEnvio       time.Duration
	TimeoutConsulta    time.Duration
	ReintentosConsulta int
}

// EsPruebas indica si el servicio apunta al ambiente de pruebas
func (h HaciendaConfig) EsPruebas() bool {
	return h.Ambiente == "00"
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	if err := godotenv.Load(); err != nil {
		// No es crítico si no existe el archivo .env
	}

	ambiente := getEnv("MH_AMBIENTE", "00")

	baseMH := "https://apitest.dtes.mh.gob.sv"
	if ambiente == "01" {
		baseMH = "https://api.dtes.mh.gob.sv"
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8081"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "dte"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Hacienda: HaciendaConfig{
			Ambiente:           ambiente,
			AuthURL:            getEnv("MH_AUTH_URL", baseMH+"/seguridad/auth"),
			RecepcionURL:       getEnv("MH_RECEPCION_URL", baseMH+"/fesv/recepciondte"),
			ConsultaURL:        getEnv("MH_CONSULTA_URL", baseMH+"/fesv/recepcion/consultadte"),
			AnulacionURL:       getEnv("MH_ANULACION_URL", baseMH+"/fesv/anulardte"),
			FirmadorURL:        getEnv("FIRMADOR_URL", "http://localhost:8113/firmardocumento/"),
			Usuario:            getEnv("MH_USUARIO", ""),
			Password:           getEnv("MH_PASSWORD", ""),
			PasswordFirma:      getEnv("FIRMADOR_PASSWORD", ""),
			TimeoutEnvio:       getEnvAsDuration("MH_TIMEOUT_ENVIO", 30*time.Second),
			TimeoutConsulta:    getEnvAsDuration("MH_TIMEOUT_CONSULTA", 8*time.Second),
			ReintentosConsulta: getEnvAsInt("MH_REINTENTOS_CONSULTA", 2),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
