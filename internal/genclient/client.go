// Package genclient talks to the remote generative service: concurrent
// image generation with partial success, single-image edits, background
// removal, and long-running video jobs polled to completion. Every
// failure leaving this package carries a typed ErrorKind; no caller
// inspects message text.
package genclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/liminalpurple/stickerforge/internal/imaging"
	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

const (
	// DefaultImageCount is the fan-out width of a generation request.
	DefaultImageCount = 5

	// DefaultPollInterval is the delay between video job status checks.
	DefaultPollInterval = 10 * time.Second

	// DefaultImageModel and DefaultVideoModel are the service models
	// used when the config does not override them.
	DefaultImageModel = "gemini-2.5-flash-image-preview"
	DefaultVideoModel = "veo-2.0-generate-001"

	// backgroundRemovalPrompt is the fixed, non-user-editable edit
	// instruction used by RemoveBackground.
	backgroundRemovalPrompt = "Remove the background of this image completely, " +
		"leaving only the main subject on a fully transparent background. " +
		"Do not alter the subject."
)

// service is the seam between the client's orchestration (fan-out,
// polling, normalization) and the remote API.
type service interface {
	generateImage(ctx context.Context, prompt string) (sticker.Image, error)
	editImage(ctx context.Context, src sticker.Image, instruction string) (sticker.Image, error)
	startVideo(ctx context.Context, prompt string) (videoJob, error)
}

// videoJob is a handle to a long-running remote video generation task.
// done reflects the last observed job state; poll refreshes it.
type videoJob interface {
	done() bool
	poll(ctx context.Context) error
	result() (uri, mimeType string)
}

// Options configures a Client.
type Options struct {
	APIKey       string
	ImageModel   string
	VideoModel   string
	StickerSize  int           // normalized sticker edge, default 512
	PollInterval time.Duration // video poll interval, default 10s
	MaxPolls     int           // 0 means poll until the job settles
}

// Client issues generation requests against the remote service.
type Client struct {
	svc          service
	size         int
	pollInterval time.Duration
	maxPolls     int
	log          logger.Logger
}

// New creates a Client backed by the Gemini API.
func New(ctx context.Context, opts Options, log logger.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	videoModel := opts.VideoModel
	if videoModel == "" {
		videoModel = DefaultVideoModel
	}

	return newClient(&geminiService{
		client:     gc,
		imageModel: imageModel,
		videoModel: videoModel,
	}, opts, log), nil
}

func newClient(svc service, opts Options, log logger.Logger) *Client {
	size := opts.StickerSize
	if size <= 0 {
		size = imaging.DefaultSize
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Client{
		svc:          svc,
		size:         size,
		pollInterval: interval,
		maxPolls:     opts.MaxPolls,
		log:          log,
	}
}

// GenerateImages issues count independent image requests concurrently
// and returns the stickers built from the successes, each normalized to
// the fixed sticker size. Individual failures never abort the group.
// Zero successes is reported as KindNothingProduced unless a credential
// failure was observed, which takes precedence so the caller can
// re-authenticate.
func (c *Client) GenerateImages(ctx context.Context, prompt string, count int) ([]sticker.Sticker, error) {
	if count <= 0 {
		count = DefaultImageCount
	}

	results := make([]*sticker.Sticker, count)
	errs := make([]error, count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			img, err := c.svc.generateImage(ctx, prompt)
			if err != nil {
				errs[slot] = classify(err, "image generation failed")
				c.log.Warn("image request failed",
					zap.Int("slot", slot), zap.Error(errs[slot]))
				return
			}

			data, mimeType, err := imaging.Normalize(img.Data, c.size)
			if err != nil {
				errs[slot] = &Error{Kind: KindRemote, Message: "generated image unusable", cause: err}
				c.log.Warn("normalization failed",
					zap.Int("slot", slot), zap.Error(err))
				return
			}

			st := sticker.NewStatic(sticker.Image{Data: data, MimeType: mimeType}, img)
			results[slot] = &st
		}(i)
	}
	wg.Wait()

	stickers := make([]sticker.Sticker, 0, count)
	for _, st := range results {
		if st != nil {
			stickers = append(stickers, *st)
		}
	}

	if len(stickers) == 0 {
		for _, err := range errs {
			if KindOf(err) == KindAuth {
				return nil, err
			}
		}
		return nil, nothingProduced("none of %d image requests produced an image", count)
	}

	c.log.Info("images generated",
		zap.Int("requested", count), zap.Int("produced", len(stickers)))
	return stickers, nil
}

// EditImage combines an existing image with a free-text instruction and
// returns the normalized display image plus the raw result, the new
// edit basis.
func (c *Client) EditImage(ctx context.Context, src sticker.Image, instruction string) (display, source sticker.Image, err error) {
	img, err := c.svc.editImage(ctx, src, instruction)
	if err != nil {
		return sticker.Image{}, sticker.Image{}, classify(err, "image edit failed")
	}

	data, mimeType, err := imaging.Normalize(img.Data, c.size)
	if err != nil {
		return sticker.Image{}, sticker.Image{}, &Error{Kind: KindRemote, Message: "edited image unusable", cause: err}
	}

	return sticker.Image{Data: data, MimeType: mimeType}, img, nil
}

// RemoveBackground is EditImage with a fixed instruction.
func (c *Client) RemoveBackground(ctx context.Context, src sticker.Image) (display, source sticker.Image, err error) {
	return c.EditImage(ctx, src, backgroundRemovalPrompt)
}

// GenerateVideo starts a long-running video job and polls it on a fixed
// interval until it settles, then extracts the time-limited download
// reference. There is no cancellation beyond the context. A job that
// completes without a reference, or that is still running after
// MaxPolls checks, is KindNothingProduced: non-fatal and retryable.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (uri, mimeType string, err error) {
	job, err := c.svc.startVideo(ctx, prompt)
	if err != nil {
		return "", "", classify(err, "video generation failed to start")
	}

	polls := 0
	for !job.done() {
		if c.maxPolls > 0 && polls >= c.maxPolls {
			return "", "", nothingProduced("video job still running after %d polls", polls)
		}

		select {
		case <-ctx.Done():
			return "", "", &Error{Kind: KindTransport, Message: "video polling aborted", cause: ctx.Err()}
		case <-time.After(c.pollInterval):
		}

		if err := job.poll(ctx); err != nil {
			return "", "", classify(err, "video status check failed")
		}
		polls++

		c.log.Debug("video job polled", zap.Int("polls", polls), zap.Bool("done", job.done()))
	}

	uri, mimeType = job.result()
	if uri == "" {
		return "", "", nothingProduced("video job completed without a download reference")
	}

	c.log.Info("video generated", zap.Int("polls", polls))
	return uri, mimeType, nil
}
