package runner

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/samvad-hq/steam-webapi/pkg/publishers"
	"github.com/samvad-hq/steam-webapi/pkg/webapi"
)

// WebAPI is the subset of *webapi.Client the runner drives.
type WebAPI interface {
	Load(ctx context.Context, format webapi.Format, iface, method string, version int, params *webapi.Params) (string, error)
	GetJSONData(ctx context.Context, iface, method string, version int, params *webapi.Params) (gjson.Result, error)
}

// EventPublisher publishes call results downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper tracks which result fingerprints were already published.
type Deduper interface {
	SeenResult(fingerprint string) (bool, error)
	MarkResult(fingerprint string) error
}
