package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config configuración del servidor leída del entorno
type Config struct {
	Port      string
	StaticDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QuestionsFile         string
	PresetDefaultCategory string
	PresetBatchSize       int
	NonQuizCategories     []string

	GeneratorURL          string
	GeneratorTimeout      time.Duration
	GenerateCount         int
	GenerateSubject       string
	ContinueWithGenerated bool

	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration
}

// Load lee el archivo .env (si existe) y las variables de entorno
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No se encontró archivo .env, usando variables de entorno")
	}
	return FromEnv()
}

// FromEnv construye la configuración solo con variables de entorno
func FromEnv() *Config {
	port := getEnv("PORT", "8080")

	return &Config{
		Port:      port,
		StaticDir: getEnv("STATIC_DIR", "static"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		QuestionsFile:         getEnv("QUESTIONS_FILE", "data/questions.json"),
		PresetDefaultCategory: getEnv("PRESET_DEFAULT_CATEGORY", "General Knowledge"),
		PresetBatchSize:       getEnvInt("PRESET_BATCH_SIZE", 15),
		NonQuizCategories:     splitList(getEnv("NON_QUIZ_CATEGORIES", "KTET Syllabus")),

		GeneratorURL:          getEnv("GENERATOR_URL", "http://127.0.0.1:"+port+"/api/generate"),
		GeneratorTimeout:      getEnvDuration("GENERATOR_TIMEOUT", 9*time.Second),
		GenerateCount:         getEnvInt("GENERATE_COUNT", 10),
		GenerateSubject:       getEnv("GENERATE_SUBJECT", "KTET Exam"),
		ContinueWithGenerated: getEnvBool("CONTINUE_WITH_GENERATED", false),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIBaseURL: getEnv("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:   getEnv("AI_MODEL", "mistralai/mistral-7b-instruct:free"),
		AITimeout: getEnvDuration("AI_TIMEOUT", 8*time.Second),
	}
}

// getEnv obtiene una variable de entorno con valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Printf("⚠️ %s=%q no es un número válido, usando %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️ %s=%q no es un booleano válido, usando %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

// getEnvDuration acepta "9s", "1500ms" o segundos sin unidad
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ %s=%q no es una duración válida, usando %s", key, value, defaultValue)
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
