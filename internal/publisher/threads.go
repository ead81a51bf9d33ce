package publisher

import (
	"context"
	"net/url"
	"unicode/utf8"

	"autopost/internal/domain"
)

// ThreadsTextLimit is the maximum post length accepted by Threads.
const ThreadsTextLimit = 500

// Threads publishes a single image post.
type Threads struct {
	userID string
	graph  *graphClient
}

func NewThreads(userID string, opts GraphOptions) *Threads {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://graph.threads.net/v1.0"
	}
	return &Threads{userID: userID, graph: newGraphClient(opts)}
}

func (p *Threads) Name() string { return "threads" }

func (p *Threads) Publish(ctx context.Context, asset domain.StagedAsset, caption domain.Caption) error {
	fields := url.Values{
		"media_type": {"IMAGE"},
		"image_url":  {asset.PublicURL},
		"text":       {TruncateText(caption.Text, ThreadsTextLimit)},
	}
	if _, err := p.graph.twoPhase(ctx, "/"+p.userID+"/threads", "/"+p.userID+"/threads_publish", fields); err != nil {
		return publishError(p.Name(), "post", err)
	}
	return nil
}

// TruncateText cuts text to at most limit code points without re-encoding it. An invalid byte
// counts as one code point and is kept as is.
func TruncateText(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := 0; i < len(text); n++ {
		if n == limit {
			return text[:i]
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return text
}

var _ Publisher = (*Threads)(nil)
