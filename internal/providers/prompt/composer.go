package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"text/template"

	"autopost/internal/domain"
)

// Mode selects how a GenerationRequest is sampled.
type Mode string

const (
	ModeDirect     Mode = "direct"
	ModeContextual Mode = "contextual"
	ModeEnhanced   Mode = "enhanced"
)

// MaxNegativeTerms caps the sampled negative-term subset.
const MaxNegativeTerms = 10

// ParseMode accepts the mode names case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDirect:
		return ModeDirect, nil
	case ModeContextual:
		return ModeContextual, nil
	case ModeEnhanced:
		return ModeEnhanced, nil
	default:
		return "", fmt.Errorf("prompt: unknown mode %q", s)
	}
}

// Random is the sampling source. *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Completer turns a short instruction into free text.
type Completer interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// Profile adapts enhanced prompts to one image backend.
type Profile struct {
	Name            string
	Template        *template.Template
	AcceptsNegative bool
}

// NewProfile parses tmpl. The template sees Subject, Style, Lighting, Composition, Mood and Quality.
func NewProfile(name, tmpl string, acceptsNegative bool) (Profile, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return Profile{}, fmt.Errorf("prompt: parse %s template: %w", name, err)
	}
	return Profile{Name: name, Template: t, AcceptsNegative: acceptsNegative}, nil
}

func mustProfile(name, tmpl string, acceptsNegative bool) Profile {
	p, err := NewProfile(name, tmpl, acceptsNegative)
	if err != nil {
		panic(err)
	}
	return p
}

var (
	StabilityProfile = mustProfile("stability",
		"{{.Subject}}, {{.Style}}, {{.Lighting}}, {{.Composition}}, {{.Mood}} atmosphere, {{.Quality}}", true)
	DallEProfile = mustProfile("openai",
		"A {{.Mood}} image of {{.Subject}} rendered as {{.Style}}, lit by {{.Lighting}}, framed as a {{.Composition}}. {{.Quality}}.", false)
	ImagenProfile = mustProfile("imagen",
		"{{.Subject}} in {{.Style}}. {{.Composition}} with {{.Lighting}}, {{.Mood}} mood, {{.Quality}}.", false)
)

// Options configures a Composer.
type Options struct {
	Completer  Completer
	Random     Random
	Vocabulary *Vocabulary
}

// Composer builds GenerationRequests. It holds no per-call state and is safe for concurrent use
// as long as its Random is.
type Composer struct {
	completer Completer
	rand      Random
	vocab     Vocabulary
}

func NewComposer(opts Options) *Composer {
	r := opts.Random
	if r == nil {
		r = globalRandom{}
	}
	vocab := DefaultVocabulary()
	if opts.Vocabulary != nil {
		vocab = *opts.Vocabulary
	}
	return &Composer{completer: opts.Completer, rand: r, vocab: vocab}
}

type templateData struct {
	Subject     string
	Style       string
	Lighting    string
	Composition string
	Mood        string
	Quality     string
}

// Compose samples a fresh request. Completion failures in contextual mode are returned as-is.
func (c *Composer) Compose(ctx context.Context, mode Mode, profile Profile) (domain.GenerationRequest, error) {
	switch mode {
	case ModeDirect:
		return domain.GenerationRequest{
			Subject: c.pick(c.vocab.Subjects),
			Style:   c.pick(c.vocab.Styles),
		}, nil

	case ModeContextual:
		if c.completer == nil {
			return domain.GenerationRequest{}, errors.New("prompt: contextual mode requires a completer")
		}
		instruction := fmt.Sprintf("pick one %s in %s, describe briefly", c.pick(c.vocab.Topics), c.pick(c.vocab.Scopes))
		subject, err := c.completer.Complete(ctx, instruction)
		if err != nil {
			return domain.GenerationRequest{}, fmt.Errorf("prompt: completion: %w", err)
		}
		subject = strings.TrimSpace(subject)
		if subject == "" {
			return domain.GenerationRequest{}, errors.New("prompt: completion returned empty subject")
		}
		return domain.GenerationRequest{Subject: subject, Style: c.pick(c.vocab.Styles)}, nil

	case ModeEnhanced:
		if profile.Template == nil {
			return domain.GenerationRequest{}, errors.New("prompt: enhanced mode requires a profile template")
		}
		data := templateData{
			Subject:     c.pick(c.vocab.Subjects),
			Style:       c.pick(c.vocab.Styles),
			Lighting:    c.pick(c.vocab.Lighting),
			Composition: c.pick(c.vocab.Composition),
			Mood:        c.pick(c.vocab.Mood),
			Quality:     c.pick(c.vocab.Quality),
		}
		var buf bytes.Buffer
		if err := profile.Template.Execute(&buf, data); err != nil {
			return domain.GenerationRequest{}, fmt.Errorf("prompt: render %s template: %w", profile.Name, err)
		}
		req := domain.GenerationRequest{
			Subject: data.Subject,
			Style:   data.Style,
			Prompt:  strings.TrimSpace(buf.String()),
		}
		if profile.AcceptsNegative {
			req.NegativeTerms = c.sample(c.vocab.Negative, MaxNegativeTerms)
		}
		return req, nil

	default:
		return domain.GenerationRequest{}, fmt.Errorf("prompt: unknown mode %q", mode)
	}
}

func (c *Composer) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[c.rand.IntN(len(list))]
}

// sample draws min(n, len(list)) distinct entries using a partial Fisher-Yates shuffle.
func (c *Composer) sample(list []string, n int) []string {
	if n > len(list) {
		n = len(list)
	}
	pool := clone(list)
	for i := 0; i < n; i++ {
		j := i + c.rand.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
