package publish

import (
	"context"

	"shotsync/internal/services/kitsu"
)

// Publisher performs the three remote steps for one clip.
type Publisher interface {
	Comment(ctx context.Context, taskID string) (commentID string, err error)
	AttachPreview(ctx context.Context, taskID, commentID, path string) (previewID string, err error)
	SetMainPreview(ctx context.Context, previewID string) error
}

type kitsuAPI interface {
	AddComment(ctx context.Context, taskID, statusID, text string) (kitsu.Comment, error)
	AddPreview(ctx context.Context, taskID, commentID, moviePath string) (kitsu.PreviewFile, error)
	SetMainPreview(ctx context.Context, previewID string) error
}

// KitsuPublisher publishes through a Kitsu client, posting every comment with
// the same status and text.
type KitsuPublisher struct {
	api      kitsuAPI
	statusID string
	text     string
}

// NewKitsuPublisher wraps client.
func NewKitsuPublisher(client kitsuAPI, status kitsu.TaskStatus, text string) *KitsuPublisher {
	return &KitsuPublisher{api: client, statusID: status.ID, text: text}
}

func (p *KitsuPublisher) Comment(ctx context.Context, taskID string) (string, error) {
	c, err := p.api.AddComment(ctx, taskID, p.statusID, p.text)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (p *KitsuPublisher) AttachPreview(ctx context.Context, taskID, commentID, path string) (string, error) {
	pf, err := p.api.AddPreview(ctx, taskID, commentID, path)
	if err != nil {
		return "", err
	}
	return pf.ID, nil
}

func (p *KitsuPublisher) SetMainPreview(ctx context.Context, previewID string) error {
	return p.api.SetMainPreview(ctx, previewID)
}
