package image

import (
	"context"
	"encoding/base64"
	"errors"
	"iter"
	"testing"

	"autopost/internal/domain"
	"autopost/internal/providers/stability"
)

type stubStability struct {
	artifacts []stability.Artifact
	err       error
	req       stability.Request
	yielded   int
}

func (s *stubStability) Generate(ctx context.Context, req stability.Request) iter.Seq2[stability.Artifact, error] {
	s.req = req
	return func(yield func(stability.Artifact, error) bool) {
		if s.err != nil {
			yield(stability.Artifact{}, s.err)
			return
		}
		for _, a := range s.artifacts {
			s.yielded++
			if !yield(a, nil) {
				return
			}
		}
	}
}

func TestStabilityReturnsFirstUnfilteredImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes(t))
	client := &stubStability{artifacts: []stability.Artifact{
		{FinishReason: stability.FinishContentFiltered},
		{Base64: encoded, FinishReason: stability.FinishSuccess},
		{Base64: encoded, FinishReason: stability.FinishSuccess},
	}}
	backend := NewStability(client)

	artifact, err := backend.Generate(context.Background(), domain.GenerationRequest{
		Subject:       "Naruto",
		Style:         "ukiyo-e",
		NegativeTerms: []string{"blurry", "watermark"},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if artifact.MIMEType != domain.MIMETypePNG {
		t.Fatalf("mime = %q", artifact.MIMEType)
	}
	if !artifact.ContentFiltered {
		t.Fatal("expected content-filter observation to be recorded")
	}
	if client.yielded != 2 {
		t.Fatalf("scanned %d artifacts, want 2", client.yielded)
	}

	prompts := client.req.Prompts
	if len(prompts) != 3 || prompts[0].Text != "Naruto, ukiyo-e" || prompts[0].Weight != 1 {
		t.Fatalf("prompts = %#v", prompts)
	}
	if prompts[1].Weight != -1 || prompts[2].Text != "watermark" {
		t.Fatalf("negative prompts = %#v", prompts[1:])
	}
}

func TestStabilityAllFiltered(t *testing.T) {
	client := &stubStability{artifacts: []stability.Artifact{
		{FinishReason: stability.FinishContentFiltered},
		{FinishReason: stability.FinishContentFiltered},
	}}
	_, err := NewStability(client).Generate(context.Background(), domain.GenerationRequest{Subject: "x"})
	if !errors.Is(err, domain.ErrNoArtifactProduced) || !errors.Is(err, domain.ErrContentFiltered) {
		t.Fatalf("expected no-artifact and content-filtered, got %v", err)
	}
}

func TestStabilityEmptyResponse(t *testing.T) {
	_, err := NewStability(&stubStability{}).Generate(context.Background(), domain.GenerationRequest{Subject: "x"})
	if !errors.Is(err, domain.ErrNoArtifactProduced) || errors.Is(err, domain.ErrContentFiltered) {
		t.Fatalf("expected bare no-artifact error, got %v", err)
	}
}

func TestStabilityTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewStability(&stubStability{err: boom}).Generate(context.Background(), domain.GenerationRequest{Subject: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
