package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yantrahq/yantra/internal/models"
)

const (
	settingsCollection = "settings"
	roundsDocument     = "rounds"
)

// settingsWatcher streams the settings/rounds document via Firestore snapshots
type settingsWatcher struct {
	client *firestore.Client
}

// NewSettingsWatcher creates a SettingsWatcher on the settings/rounds document
func NewSettingsWatcher(client *firestore.Client) SettingsWatcher {
	return &settingsWatcher{client: client}
}

func (w *settingsWatcher) Watch(ctx context.Context, fn func(models.RoundSettings, bool)) error {
	iter := w.client.Collection(settingsCollection).Doc(roundsDocument).Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return ctx.Err()
			}
			return classify("watch round settings", err)
		}
		if !snap.Exists() {
			fn(nil, false)
			continue
		}

		settings := models.RoundSettings{}
		for field, value := range snap.Data() {
			open, ok := value.(bool)
			if !ok {
				continue
			}
			settings[field] = open
		}
		fn(settings, true)
	}
}
