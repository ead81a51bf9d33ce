package publisher

import (
	"context"
	"net/url"

	"autopost/internal/domain"
)

// Instagram publishes a feed post and mirrors it as a story. All four calls are sequential
// and a story failure does not roll back the published feed item.
type Instagram struct {
	accountID string
	graph     *graphClient
}

func NewInstagram(accountID string, opts GraphOptions) *Instagram {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://graph.instagram.com/v22.0"
	}
	return &Instagram{accountID: accountID, graph: newGraphClient(opts)}
}

func (p *Instagram) Name() string { return "instagram" }

func (p *Instagram) Publish(ctx context.Context, asset domain.StagedAsset, caption domain.Caption) error {
	createPath := "/" + p.accountID + "/media"
	publishPath := "/" + p.accountID + "/media_publish"

	feed := url.Values{
		"image_url": {asset.PublicURL},
		"caption":   {caption.Text},
	}
	if _, err := p.graph.twoPhase(ctx, createPath, publishPath, feed); err != nil {
		return publishError(p.Name(), "feed", err)
	}

	story := url.Values{
		"image_url":  {asset.PublicURL},
		"media_type": {"STORIES"},
	}
	if _, err := p.graph.twoPhase(ctx, createPath, publishPath, story); err != nil {
		return publishError(p.Name(), "story", err)
	}
	return nil
}

var _ Publisher = (*Instagram)(nil)
