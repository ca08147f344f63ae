package controllers

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// Concurrent creates must decode into per-request state. Both bodies fail
// validation, so the handler turns around before any storage call; run with
// the race detector to catch any shared decode target.
func TestCreateMaterialConcurrentRequestsIsolated(t *testing.T) {
	app := fiber.New()
	controller := NewMaterialController(nil)
	app.Post("/materials", controller.CreateMaterial)

	bodies := []string{
		`{"code":"FLR-001","name":"flour","current_qty":"100"}`,
		`{"name":"sugar","unit":"kg","min_threshold":"5"}`,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				req := httptest.NewRequest("POST", "/materials", strings.NewReader(bodies[(i+j)%len(bodies)]))
				req.Header.Set("Content-Type", "application/json")

				resp, err := app.Test(req)
				if err != nil {
					t.Errorf("request failed: %v", err)
					return
				}
				if resp.StatusCode != fiber.StatusBadRequest {
					t.Errorf("status = %d, want 400", resp.StatusCode)
				}
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()
}
