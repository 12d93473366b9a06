package genclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// testPNG returns a small valid PNG payload
func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// fakeService scripts per-call image results and a single video job
type fakeService struct {
	calls       atomic.Int64
	generate    func(call int) (sticker.Image, error)
	edit        func(src sticker.Image, instruction string) (sticker.Image, error)
	lastEdit    string
	job         *fakeJob
	startErr    error
}

func (f *fakeService) generateImage(_ context.Context, _ string) (sticker.Image, error) {
	call := int(f.calls.Add(1)) - 1
	return f.generate(call)
}

func (f *fakeService) editImage(_ context.Context, src sticker.Image, instruction string) (sticker.Image, error) {
	f.lastEdit = instruction
	return f.edit(src, instruction)
}

func (f *fakeService) startVideo(_ context.Context, _ string) (videoJob, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.job, nil
}

// fakeJob reports done only after a fixed number of polls
type fakeJob struct {
	pollsUntilDone int
	polls          int
	uri            string
	mimeType       string
	pollError      error
}

func (j *fakeJob) done() bool {
	return j.polls >= j.pollsUntilDone
}

func (j *fakeJob) poll(_ context.Context) error {
	if j.pollError != nil {
		return j.pollError
	}
	j.polls++
	return nil
}

func (j *fakeJob) result() (string, string) {
	return j.uri, j.mimeType
}

func testClient(svc service) *Client {
	return newClient(svc, Options{
		StickerSize:  32,
		PollInterval: time.Millisecond,
	}, logger.Nop())
}

// TestGenerateImages_PartialFailure verifies 2 failures out of 5
// requests still yield exactly 3 normalized stickers
func TestGenerateImages_PartialFailure(t *testing.T) {
	raw := testPNG(t)
	svc := &fakeService{
		generate: func(call int) (sticker.Image, error) {
			if call < 2 {
				return sticker.Image{}, fmt.Errorf("request %d blew up", call)
			}
			return sticker.Image{Data: raw, MimeType: "image/png"}, nil
		},
	}

	stickers, err := testClient(svc).GenerateImages(context.Background(), "a happy clam", 5)
	if err != nil {
		t.Fatalf("GenerateImages failed: %v", err)
	}

	if len(stickers) != 3 {
		t.Fatalf("Expected exactly 3 stickers, got %d", len(stickers))
	}

	seen := map[string]bool{}
	for _, st := range stickers {
		if st.ID == "" {
			t.Error("Expected sticker to have an ID")
		}
		if seen[st.ID] {
			t.Errorf("Duplicate sticker ID %s", st.ID)
		}
		seen[st.ID] = true

		if st.IsAnimated {
			t.Error("Expected static sticker")
		}
		if !bytes.Equal(st.Source.Data, raw) {
			t.Error("Expected source to keep the original bytes")
		}

		decoded, _, err := image.Decode(bytes.NewReader(st.Display.Data))
		if err != nil {
			t.Fatalf("Display image does not decode: %v", err)
		}
		if decoded.Bounds().Dx() != 32 || decoded.Bounds().Dy() != 32 {
			t.Errorf("Expected 32x32 display image, got %dx%d",
				decoded.Bounds().Dx(), decoded.Bounds().Dy())
		}
	}
}

// TestGenerateImages_AllFail verifies zero successes report as
// nothing-produced rather than a hard failure
func TestGenerateImages_AllFail(t *testing.T) {
	svc := &fakeService{
		generate: func(int) (sticker.Image, error) {
			return sticker.Image{}, fmt.Errorf("service melted")
		},
	}

	_, err := testClient(svc).GenerateImages(context.Background(), "anything", 5)
	if KindOf(err) != KindNothingProduced {
		t.Errorf("Expected KindNothingProduced, got %v (kind %s)", err, KindOf(err))
	}
}

// TestGenerateImages_AuthFailureSurfaces verifies a credential failure
// takes precedence over the nothing-produced condition
func TestGenerateImages_AuthFailureSurfaces(t *testing.T) {
	svc := &fakeService{
		generate: func(int) (sticker.Image, error) {
			return sticker.Image{}, genai.APIError{Code: 403, Message: "permission denied"}
		},
	}

	_, err := testClient(svc).GenerateImages(context.Background(), "anything", 3)
	if KindOf(err) != KindAuth {
		t.Errorf("Expected KindAuth, got %v (kind %s)", err, KindOf(err))
	}
}

// TestEditImage verifies the edit result is normalized and the raw
// result kept as the new edit basis
func TestEditImage(t *testing.T) {
	raw := testPNG(t)
	svc := &fakeService{
		edit: func(src sticker.Image, _ string) (sticker.Image, error) {
			return sticker.Image{Data: raw, MimeType: "image/png"}, nil
		},
	}

	display, source, err := testClient(svc).EditImage(context.Background(),
		sticker.Image{Data: testPNG(t), MimeType: "image/png"}, "add a hat")
	if err != nil {
		t.Fatalf("EditImage failed: %v", err)
	}

	if svc.lastEdit != "add a hat" {
		t.Errorf("Expected instruction to reach the service, got %q", svc.lastEdit)
	}
	if !bytes.Equal(source.Data, raw) {
		t.Error("Expected source to keep the raw edit result")
	}

	decoded, _, err := image.Decode(bytes.NewReader(display.Data))
	if err != nil {
		t.Fatalf("Display image does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 32 {
		t.Errorf("Expected normalized 32px display, got %d", decoded.Bounds().Dx())
	}
}

// TestRemoveBackground verifies the fixed instruction is used verbatim
func TestRemoveBackground(t *testing.T) {
	svc := &fakeService{
		edit: func(_ sticker.Image, _ string) (sticker.Image, error) {
			return sticker.Image{}, fmt.Errorf("unused")
		},
	}

	_, _, _ = testClient(svc).RemoveBackground(context.Background(),
		sticker.Image{Data: []byte{1}, MimeType: "image/png"})

	if svc.lastEdit != backgroundRemovalPrompt {
		t.Errorf("Expected the fixed background removal instruction, got %q", svc.lastEdit)
	}
}

// TestGenerateVideo_PollsUntilDone verifies a job reporting not-done
// three times performs exactly 3 delay-then-poll cycles
func TestGenerateVideo_PollsUntilDone(t *testing.T) {
	job := &fakeJob{pollsUntilDone: 3, uri: "https://example.com/video", mimeType: "video/mp4"}
	svc := &fakeService{job: job}

	uri, mimeType, err := testClient(svc).GenerateVideo(context.Background(), "a dancing clam")
	if err != nil {
		t.Fatalf("GenerateVideo failed: %v", err)
	}

	if job.polls != 3 {
		t.Errorf("Expected exactly 3 polls, got %d", job.polls)
	}
	if uri != "https://example.com/video" {
		t.Errorf("Expected download reference, got %q", uri)
	}
	if mimeType != "video/mp4" {
		t.Errorf("Expected video/mp4, got %s", mimeType)
	}
}

// TestGenerateVideo_NoReference verifies a completed job without a
// download reference is nothing-produced, not a hard failure
func TestGenerateVideo_NoReference(t *testing.T) {
	svc := &fakeService{job: &fakeJob{pollsUntilDone: 0}}

	_, _, err := testClient(svc).GenerateVideo(context.Background(), "anything")
	if KindOf(err) != KindNothingProduced {
		t.Errorf("Expected KindNothingProduced, got %v (kind %s)", err, KindOf(err))
	}
}

// TestGenerateVideo_MaxPolls verifies the optional poll cap surfaces as
// a retryable nothing-produced condition
func TestGenerateVideo_MaxPolls(t *testing.T) {
	job := &fakeJob{pollsUntilDone: 1000}
	client := newClient(&fakeService{job: job}, Options{
		PollInterval: time.Millisecond,
		MaxPolls:     4,
	}, logger.Nop())

	_, _, err := client.GenerateVideo(context.Background(), "anything")
	if KindOf(err) != KindNothingProduced {
		t.Errorf("Expected KindNothingProduced, got %v (kind %s)", err, KindOf(err))
	}
	if job.polls != 4 {
		t.Errorf("Expected exactly 4 polls before giving up, got %d", job.polls)
	}
}

// TestGenerateVideo_ContextCancel verifies cancellation during the
// delay surfaces as a transport error
func TestGenerateVideo_ContextCancel(t *testing.T) {
	job := &fakeJob{pollsUntilDone: 1000}
	client := newClient(&fakeService{job: job}, Options{
		PollInterval: time.Hour,
	}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.GenerateVideo(ctx, "anything")
	if KindOf(err) != KindTransport {
		t.Errorf("Expected KindTransport, got %v (kind %s)", err, KindOf(err))
	}
}

// TestClassify verifies error-kind classification at the boundary
func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"unauthorized", genai.APIError{Code: 401, Message: "unauthorized"}, KindAuth},
		{"forbidden", genai.APIError{Code: 403, Message: "forbidden"}, KindAuth},
		{"expired key", genai.APIError{Code: 400, Message: "API key expired. Please renew the API key."}, KindAuth},
		{"invalid key", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."}, KindAuth},
		{"not found", genai.APIError{Code: 404, Message: "Requested entity was not found."}, KindNotFound},
		{"quota", genai.APIError{Code: 429, Message: "quota exceeded"}, KindRemote},
		{"server error", genai.APIError{Code: 500, Message: "internal"}, KindRemote},
		{"plain error", errors.New("connection refused"), KindTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classify(tc.err, "test")
			if KindOf(classified) != tc.expected {
				t.Errorf("Expected kind %s, got %s", tc.expected, KindOf(classified))
			}
		})
	}
}

// TestKindOf_Unknown verifies foreign errors report KindUnknown
func TestKindOf_Unknown(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("Expected KindUnknown for a foreign error")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("Expected KindUnknown for nil")
	}
}
