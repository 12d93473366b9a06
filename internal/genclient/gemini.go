package genclient

import (
	"context"

	"google.golang.org/genai"

	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// geminiService implements the service seam over the Gemini API.
type geminiService struct {
	client     *genai.Client
	imageModel string
	videoModel string
}

func (g *geminiService) generateImage(ctx context.Context, prompt string) (sticker.Image, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	return g.requestImage(ctx, parts)
}

func (g *geminiService) editImage(ctx context.Context, src sticker.Image, instruction string) (sticker.Image, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(src.Data, src.MimeType),
		genai.NewPartFromText(instruction),
	}
	return g.requestImage(ctx, parts)
}

// requestImage issues one generation request and extracts the first
// inline image from the response. A response without an image is a
// "nothing produced" condition, not a transport failure.
func (g *geminiService) requestImage(ctx context.Context, parts []*genai.Part) (sticker.Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return sticker.Image{}, err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return sticker.Image{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	return sticker.Image{}, nothingProduced("response contained no image")
}

func (g *geminiService) startVideo(ctx context.Context, prompt string) (videoJob, error) {
	op, err := g.client.Models.GenerateVideos(ctx, g.videoModel, prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    "16:9",
	})
	if err != nil {
		return nil, err
	}
	return &geminiJob{client: g.client, op: op}, nil
}

// geminiJob wraps a long-running video generation operation.
type geminiJob struct {
	client *genai.Client
	op     *genai.GenerateVideosOperation
}

func (j *geminiJob) done() bool {
	return j.op != nil && j.op.Done
}

func (j *geminiJob) poll(ctx context.Context) error {
	op, err := j.client.Operations.GetVideosOperation(ctx, j.op, nil)
	if err != nil {
		return err
	}
	j.op = op
	return nil
}

func (j *geminiJob) result() (uri, mimeType string) {
	if j.op == nil || j.op.Response == nil || len(j.op.Response.GeneratedVideos) == 0 {
		return "", ""
	}
	video := j.op.Response.GeneratedVideos[0].Video
	if video == nil {
		return "", ""
	}
	return video.URI, video.MIMEType
}
