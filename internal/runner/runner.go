// Package runner executes a batch of Web API calls and publishes new results.
package runner

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/samvad-hq/steam-webapi/internal/domain"
	"github.com/samvad-hq/steam-webapi/internal/logger"
	"github.com/samvad-hq/steam-webapi/pkg/calls"
	"github.com/samvad-hq/steam-webapi/pkg/publishers"
	"github.com/samvad-hq/steam-webapi/pkg/webapi"
)

// Service runs call batches against the Web API.
type Service struct {
	api     WebAPI
	pub     EventPublisher
	deduper Deduper
	log     logger.Logger
}

// NewService wires a runner. A nil publisher drops results without marking
// them; a nil deduper publishes every result.
func NewService(api WebAPI, pub EventPublisher, log logger.Logger, deduper Deduper) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		api:     api,
		pub:     pub,
		deduper: deduper,
		log:     log,
	}
}

// Stats summarises one pass.
type Stats struct {
	Executed  int `json:"executed"`
	Published int `json:"published"`
	Unchanged int `json:"unchanged"`
	Dropped   int `json:"dropped"`
	Failed    int `json:"failed"`
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomePublished
	outcomeDropped
)

// Run executes every call once. Per-call failures are logged and returned
// joined; a cancelled context ends the pass early without error.
func (s *Service) Run(ctx context.Context, cfgs []calls.Call) (Stats, error) {
	if s == nil || s.api == nil {
		return Stats{}, fmt.Errorf("runner service is not initialized")
	}
	if len(cfgs) == 0 {
		return Stats{}, fmt.Errorf("no calls configured")
	}

	var (
		stats Stats
		errs  []error
	)
	for _, c := range cfgs {
		select {
		case <-ctx.Done():
			return stats, errors.Join(errs...)
		default:
		}

		out, err := s.runCall(ctx, c)
		stats.Executed++
		switch {
		case err != nil:
			stats.Failed++
			errs = append(errs, err)
			s.log.ErrorObj("web api call failed", "call_error", callErrorFields(c, err))
		case out == outcomePublished:
			stats.Published++
		case out == outcomeDropped:
			stats.Dropped++
		default:
			stats.Unchanged++
		}
	}
	return stats, errors.Join(errs...)
}

// callErrorFields describes a failed call; HTTP failures also carry the
// status and the headline of the server's error page.
func callErrorFields(c calls.Call, err error) map[string]any {
	fields := map[string]any{
		"call_id":  c.ID,
		"endpoint": c.Endpoint(),
		"error":    err.Error(),
	}
	var httpErr *webapi.HTTPError
	if errors.As(err, &httpErr) {
		fields["http_status"] = httpErr.StatusCode
		if httpErr.Detail != "" {
			fields["http_detail"] = httpErr.Detail
		}
	}
	return fields
}

// runCall executes one call and reports what happened to its result. Only
// delivered results are marked as seen.
func (s *Service) runCall(ctx context.Context, c calls.Call) (outcome, error) {
	body, err := s.execute(ctx, c)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("call %s (%s): %w", c.ID, c.Endpoint(), err)
	}

	result := domain.Result{
		CallID:      c.ID,
		Interface:   c.Interface,
		Method:      c.Method,
		Version:     c.Version,
		Format:      c.Format,
		Body:        body,
		Fingerprint: Fingerprint(c.ID, body),
	}

	if s.deduper != nil {
		seen, err := s.deduper.SeenResult(result.Fingerprint)
		if err != nil {
			s.log.WarnObj("result lookup failed; publishing anyway", "dedupe_error", map[string]any{
				"call_id": c.ID,
				"error":   err.Error(),
			})
		} else if seen {
			s.log.DebugObj("result unchanged", "call_id", c.ID)
			return outcomeUnchanged, nil
		}
	}

	if s.pub == nil {
		s.log.DebugObj("no publisher; result dropped", "call_id", c.ID)
		return outcomeDropped, nil
	}
	delivered, err := s.pub.Publish(ctx, publishers.NewEvent(c.Endpoint(), result))
	if err != nil && delivered == 0 {
		return outcomeUnchanged, fmt.Errorf("publish call %s: %w", c.ID, err)
	}
	if delivered == 0 {
		s.log.DebugObj("no sink accepted the result; result dropped", "call_id", c.ID)
		return outcomeDropped, nil
	}
	if err != nil {
		s.log.WarnObj("result partially published", "publish_error", map[string]any{
			"call_id":   c.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}

	if s.deduper != nil {
		if err := s.deduper.MarkResult(result.Fingerprint); err != nil {
			return outcomePublished, fmt.Errorf("mark call %s: %w", c.ID, err)
		}
	}

	s.log.InfoObj("call result published", "call_result", map[string]any{
		"call_id":     c.ID,
		"endpoint":    c.Endpoint(),
		"bytes":       len(body),
		"fingerprint": result.Fingerprint,
	})
	return outcomePublished, nil
}

func (s *Service) execute(ctx context.Context, c calls.Call) (string, error) {
	if c.Mode == calls.ModeData {
		result, err := s.api.GetJSONData(ctx, c.Interface, c.Method, c.Version, c.Params)
		if err != nil {
			return "", err
		}
		return result.Raw, nil
	}
	return s.api.Load(ctx, webapi.Format(c.Format), c.Interface, c.Method, c.Version, c.Params)
}

// Fingerprint identifies a call's result body.
func Fingerprint(callID, body string) string {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(callID))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}
