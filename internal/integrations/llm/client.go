// Package llm is the model gateway: text and vision completions against the
// Anthropic API, with usage accounting and an optional content-hash cache.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client is the consumed model capability. Both calls are effectively
// deterministic: temperature is pinned to zero so responses are cacheable by
// content hash.
type Client interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
	CompleteVision(ctx context.Context, prompt string, imagePaths []string) (string, error)
}

// Cache stores completions keyed by content hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, response string) error
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

const DefaultModel = "claude-sonnet-4-5-20250929"

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	cache     Cache
	usage     Usage
}

func NewAnthropicClient(apiKey, model string, maxTokens int64, cache Cache) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
		cache:     cache,
	}
}

// TotalUsage reports tokens consumed by uncached calls made so far.
func (c *AnthropicClient) TotalUsage() Usage { return c.usage }

func (c *AnthropicClient) CompleteText(ctx context.Context, prompt string) (string, error) {
	key := contentKey(c.model, prompt, nil)
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)}
	text, err := c.call(ctx, "text", blocks)
	if err != nil {
		return "", err
	}
	c.remember(ctx, key, text)
	return text, nil
}

func (c *AnthropicClient) CompleteVision(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	var blocks []anthropic.ContentBlockParamUnion
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	var imageData [][]byte
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading image %s: %w", path, err)
		}
		imageData = append(imageData, data)
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			mediaType(path), base64.StdEncoding.EncodeToString(data)))
	}

	key := contentKey(c.model, prompt, imageData)
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	text, err := c.call(ctx, "vision", blocks)
	if err != nil {
		return "", err
	}
	c.remember(ctx, key, text)
	return text, nil
}

func (c *AnthropicClient) call(ctx context.Context, kind string, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic %s completion: %w", kind, err)
	}

	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	c.usage.Add(usage)

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic %s response size=%d tokens_in=%d tokens_out=%d",
				kind, len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic %s response", kind)
}

func (c *AnthropicClient) lookup(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Printf("llm cache read error (ignored): %v", err)
		return "", false
	}
	if ok {
		log.Printf("llm cache hit key=%s", key[:12])
	}
	return cached, ok
}

func (c *AnthropicClient) remember(ctx context.Context, key, response string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, key, response); err != nil {
		log.Printf("llm cache write error (ignored): %v", err)
	}
}

func contentKey(model, prompt string, images [][]byte) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	for _, img := range images {
		h.Write([]byte{0})
		h.Write(img)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func mediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
