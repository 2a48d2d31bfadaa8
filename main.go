package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/config"
	"github.com/backsoul/ktet-quiz/pkg/handlers"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
	"github.com/backsoul/ktet-quiz/pkg/redis"
	"github.com/backsoul/ktet-quiz/pkg/services"
	"github.com/backsoul/ktet-quiz/pkg/websocket"
	"github.com/valyala/fasthttp"
)

var (
	cfg             *config.Config
	redisClient     *redis.RedisClient
	presetStore     services.PresetStore
	questionService *services.QuestionService
	hub             *websocket.Hub
	router          *handlers.Router
)

func main() {
	log.Println("🚀 Iniciando servidor KTET Quiz")
	cfg = config.Load()

	initStore()
	initServices()
	loadInitialQuestions()

	server := &fasthttp.Server{
		Handler: router.Handler(),
		Name:    "KTET Quiz Server",
	}

	log.Printf("📱 Quiz: http://localhost:%s", cfg.Port)
	log.Printf("🔧 API Health: http://localhost:%s/api/health", cfg.Port)
	log.Printf("🤖 Generador: %s", cfg.GeneratorURL)
	log.Println("🔄 Presiona Ctrl+C para detener el servidor")

	go func() {
		if err := server.ListenAndServe(":" + cfg.Port); err != nil {
			log.Fatalf("Error al iniciar el servidor: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Deteniendo servidor...")
	if err := server.ShutdownWithContext(context.Background()); err != nil {
		log.Printf("⚠️ Error deteniendo el servidor: %v", err)
	}
	hub.Stop()
	if redisClient != nil {
		redisClient.Close()
	}
}

// initStore usa Redis si está configurado y disponible; si no, memoria
func initStore() {
	if cfg.RedisAddr == "" {
		log.Println("💾 REDIS_ADDR no configurado, usando almacén en memoria")
		presetStore = services.NewMemoryStore()
		return
	}

	log.Printf("🔌 Conectando a Redis en %s...", cfg.RedisAddr)
	client, err := redis.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("⚠️ %v", err)
		log.Println("💾 Usando almacén en memoria")
		presetStore = services.NewMemoryStore()
		return
	}

	redisClient = client
	presetStore = client
}

func initServices() {
	log.Println("⚙️  Inicializando servicios...")
	questionService = services.NewQuestionService(presetStore, cfg.QuestionsFile, cfg.PresetDefaultCategory, cfg.PresetBatchSize)

	completion := services.NewCompletionService(nil, services.CompletionConfig{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	})
	if cfg.AIAPIKey == "" {
		log.Println("⚠️ AI_API_KEY no configurada: solo habrá preguntas predefinidas")
	}

	generator := services.NewGeneratorClient(nil, cfg.GeneratorURL, cfg.GeneratorTimeout)
	source := services.NewQuestionSource(presetStore, generator, services.SourceConfig{
		BatchSize:         cfg.PresetBatchSize,
		GenerateCount:     cfg.GenerateCount,
		GenerateSubject:   cfg.GenerateSubject,
		NonQuizCategories: cfg.NonQuizCategories,
	})

	hub = websocket.NewHub()
	go hub.Run()

	router = &handlers.Router{
		Questions: handlers.NewQuestionHandler(questionService, hub),
		Generate:  handlers.NewGenerateHandler(completion),
		QuizSocket: handlers.NewQuizSocketHandler(source, hub, quiz.Options{
			ContinueWithGenerated: cfg.ContinueWithGenerated,
		}),
		StaticDir:     cfg.StaticDir,
		QuestionsFile: cfg.QuestionsFile,
	}
}

func loadInitialQuestions() {
	log.Println("📚 Cargando preguntas iniciales...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := questionService.LoadQuestionsFromFile(ctx); err != nil {
		log.Printf("⚠️ Error cargando preguntas iniciales: %v", err)
		log.Println("💡 El servidor continuará funcionando con el generador. Puedes cargar preguntas usando POST /api/questions/reload")
		return
	}

	categories, err := questionService.GetCategories(ctx)
	if err == nil {
		for _, c := range categories {
			log.Printf("   • %s: %d preguntas", c.Name, c.Count)
		}
	}
}
