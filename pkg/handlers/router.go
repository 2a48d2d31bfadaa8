package handlers

import (
	"log"
	"os"
	"path/filepath"

	"github.com/backsoul/ktet-quiz/pkg/metrics"
	"github.com/valyala/fasthttp"
)

// Router enruta las peticiones del servidor del quiz
type Router struct {
	Questions     *QuestionHandler
	Generate      *GenerateHandler
	QuizSocket    *QuizSocketHandler
	StaticDir     string
	QuestionsFile string

	metrics fasthttp.RequestHandler
}

// Handler devuelve el fasthttp.RequestHandler del servidor
func (r *Router) Handler() fasthttp.RequestHandler {
	r.metrics = metrics.Handler()
	return r.requestHandler
}

func (r *Router) requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "KTET-Quiz-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/":
		r.serveFile(ctx, "index.html")
	case path == "/favicon.ico":
		ctx.SetStatusCode(fasthttp.StatusNotFound)

	case path == "/api/health":
		r.Questions.HealthCheck(ctx)
	case path == "/api/categories" && method == fasthttp.MethodGet:
		r.Questions.GetCategories(ctx)
	case path == "/api/questions" && method == fasthttp.MethodGet:
		r.Questions.GetQuestions(ctx)
	case path == "/api/questions/reload" && method == fasthttp.MethodPost:
		r.Questions.ReloadQuestions(ctx)

	// cualquier método; el handler responde 405 si no es POST
	case path == "/api/generate":
		r.Generate.Generate(ctx)

	case path == "/data/questions.json":
		r.serveQuestionsFile(ctx)

	case path == "/ws":
		r.QuizSocket.HandleWebSocket(ctx)

	case path == "/metrics":
		r.metrics(ctx)

	default:
		serve404(ctx)
	}
}

func (r *Router) serveFile(ctx *fasthttp.RequestCtx, filename string) {
	filePath := filepath.Join(r.StaticDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBodyString(`<!DOCTYPE html>
<html>
<head><title>Archivo no encontrado</title></head>
<body>
	<h1>⚠️ Archivo no encontrado</h1>
	<p>El archivo <strong>` + filename + `</strong> no existe en el servidor.</p>
</body>
</html>`)
		return
	}

	if filepath.Ext(filename) == ".html" {
		ctx.SetContentType("text/html; charset=utf-8")
	}

	fasthttp.ServeFile(ctx, filePath)
	log.Printf("✅ Archivo servido: %s", filename)
}

// serveQuestionsFile sirve el bundle tal cual está en disco
func (r *Router) serveQuestionsFile(ctx *fasthttp.RequestCtx) {
	data, err := os.ReadFile(r.QuestionsFile)
	if err != nil {
		serve404(ctx)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(`<!DOCTYPE html>
<html>
<head><title>404 - Página no encontrada</title></head>
<body>
	<h1>📚 404 - Página no encontrada</h1>
	<p>La página que buscas no existe en este servidor.</p>
	<h3>🔧 Endpoints disponibles:</h3>
	<ul>
		<li>GET /api/health</li>
		<li>GET /api/categories</li>
		<li>GET /api/questions?category=...&amp;offset=0</li>
		<li>POST /api/questions/reload</li>
		<li>POST /api/generate</li>
		<li>GET /data/questions.json</li>
		<li>GET /ws</li>
		<li>GET /metrics</li>
	</ul>
</body>
</html>`)
}
