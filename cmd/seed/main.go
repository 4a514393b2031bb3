// Seeds the running service with generated orders over its HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

type itemPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderPayload struct {
	Timestamp int64         `json:"timestamp"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Notes     string        `json:"notes"`
	Items     []itemPayload `json:"items"`
}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	baseURL := env("SERVICE_URL", "http://localhost:8080")
	n := mustInt(env("SEED_COUNT", "20"))

	client := &http.Client{Timeout: 5 * time.Second}

	// A small fixed menu so repeated orders actually exercise item reuse:
	// the same name resolves to the same item row whatever price we send.
	menu := make([]itemPayload, 0, 8)
	for i := 0; i < cap(menu); i++ {
		menu = append(menu, itemPayload{
			Name:  gofakeit.ProductName(),
			Price: float64(gofakeit.Number(100, 5000)) / 100,
		})
	}

	for i := 0; i < n; i++ {
		o := fakeOrder(menu)
		if err := postOrder(client, baseURL+"/orders", o); err != nil {
			log.Fatalf("seed order %d: %v", i, err)
		}
	}
	log.Printf("seeded %d orders", n)
}

func fakeOrder(menu []itemPayload) orderPayload {
	items := make([]itemPayload, 0, 3)
	for j := 0; j < gofakeit.Number(1, 3); j++ {
		items = append(items, menu[gofakeit.Number(0, len(menu)-1)])
	}
	return orderPayload{
		Timestamp: time.Now().Unix(),
		Name:      gofakeit.Name(),
		Phone:     gofakeit.Phone(),
		Notes:     gofakeit.Sentence(4),
		Items:     items,
	}
}

func postOrder(client *http.Client, url string, o orderPayload) error {
	body, err := json.Marshal(o)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("bad count %q: %v", s, err)
	}
	return n
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
