package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	categoriesKey = "quiz:preset:categories"
	metadataKey   = "quiz:preset:metadata"
)

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient crea una nueva instancia del cliente Redis y verifica la conexión
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error conectando a Redis en %s: %w", addr, err)
	}

	log.Println("✅ Conexión exitosa a Redis")
	return &RedisClient{client: rdb}, nil
}

func categoryKey(category string) string {
	return fmt.Sprintf("quiz:preset:%s", category)
}

// LoadBundle reemplaza las preguntas predefinidas. Cada categoría es una lista
// de preguntas en JSON, así una ventana es un LRANGE.
func (r *RedisClient) LoadBundle(ctx context.Context, bundle models.Bundle) error {
	log.Printf("📚 Cargando %d preguntas a Redis...", bundle.Total())

	if err := r.ClearAllQuestions(ctx); err != nil {
		log.Printf("⚠️ Error limpiando preguntas existentes: %v", err)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for category, questions := range bundle {
			if len(questions) == 0 {
				continue
			}
			values := make([]interface{}, 0, len(questions))
			for _, q := range questions {
				questionJSON, err := json.Marshal(q)
				if err != nil {
					return fmt.Errorf("error serializing question %d: %w", q.ID, err)
				}
				values = append(values, questionJSON)
			}
			pipe.RPush(ctx, categoryKey(category), values...)
			pipe.SAdd(ctx, categoriesKey, category)
		}

		metadataJSON, _ := json.Marshal(map[string]interface{}{
			"totalQuestions": bundle.Total(),
			"categories":     len(bundle),
			"lastUpdated":    time.Now().Format(time.RFC3339),
		})
		pipe.Set(ctx, metadataKey, metadataJSON, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error guardando preguntas en Redis: %w", err)
	}

	log.Printf("✅ %d categorías cargadas exitosamente en Redis", len(bundle))
	return nil
}

// GetWindow obtiene hasta size preguntas de una categoría desde offset
func (r *RedisClient) GetWindow(ctx context.Context, category string, offset, size int) (models.Batch, error) {
	if offset < 0 || size <= 0 {
		return models.Batch{}, nil
	}

	items, err := r.client.LRange(ctx, categoryKey(category), int64(offset), int64(offset+size-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting questions for %q: %w", category, err)
	}

	batch := make(models.Batch, 0, len(items))
	for _, item := range items {
		var q models.Question
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			return nil, fmt.Errorf("error parsing question in %q: %w", category, err)
		}
		batch = append(batch, q)
	}
	return batch, nil
}

// GetQuestionCount obtiene el número de preguntas de una categoría
func (r *RedisClient) GetQuestionCount(ctx context.Context, category string) (int, error) {
	count, err := r.client.LLen(ctx, categoryKey(category)).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting question count: %w", err)
	}
	return int(count), nil
}

// GetCategories lista las categorías con su número de preguntas
func (r *RedisClient) GetCategories(ctx context.Context) ([]models.CategoryInfo, error) {
	names, err := r.client.SMembers(ctx, categoriesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting categories: %w", err)
	}

	categories := make([]models.CategoryInfo, 0, len(names))
	for _, name := range names {
		count, err := r.GetQuestionCount(ctx, name)
		if err != nil {
			log.Printf("⚠️ Error obteniendo conteo de %s: %v", name, err)
			continue
		}
		categories = append(categories, models.CategoryInfo{Name: name, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// ClearAllQuestions elimina todas las preguntas predefinidas
func (r *RedisClient) ClearAllQuestions(ctx context.Context) error {
	names, err := r.client.SMembers(ctx, categoriesKey).Result()
	if err != nil {
		return fmt.Errorf("error getting categories: %w", err)
	}

	keys := []string{categoriesKey, metadataKey}
	for _, name := range names {
		keys = append(keys, categoryKey(name))
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
