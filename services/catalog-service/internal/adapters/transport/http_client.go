package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Error ошибка одного обращения к API поставщика
type Error struct {
	URL        string
	StatusCode int // 0, если ответ не был получен
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Getter выполняет GET к API поставщиков и декодирует JSON в dst
type Getter interface {
	Get(ctx context.Context, path string, dst any) error
}

// ProviderClient HTTP клиент для API поставщиков.
// Все поставщики доступны по одному базовому адресу, путь задает адаптер.
type ProviderClient struct {
	baseURL string
	client  *http.Client
}

// NewProviderClient создает клиент с таймаутом на одно обращение
func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL возвращает базовый адрес API поставщиков
func (c *ProviderClient) BaseURL() string {
	return c.baseURL
}

// Get выполняет запрос без повторов. Ответ никогда не берется из кэша.
func (c *ProviderClient) Get(ctx context.Context, path string, dst any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error{URL: url, Err: fmt.Errorf("request was cancelled: %w", ctxErr)}
		}
		return &Error{URL: url, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Тело не нужно, но дочитываем его, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Error{URL: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &Error{URL: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
