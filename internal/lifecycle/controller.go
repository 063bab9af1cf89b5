// Package lifecycle moves items through verification and matching.
//
// An item starts pending. Verifying it makes it active and runs the matcher
// against the opposite-type pool; when a candidate qualifies, the item and the
// best candidate become matched together and both reporters are notified.
// Rejecting a pending or active item deletes it. Matched items are final.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
)

// ErrNotFound is returned for unknown item IDs.
var ErrNotFound = itemstore.ErrNotFound

// ErrAlreadyMatched is returned when an operation would break a matched pair.
var ErrAlreadyMatched = errors.New("item is already matched")

// Invalidator is told when the item collection changed.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// VerificationResult reports the outcome of Verify.
type VerificationResult struct {
	Verified        bool    `json:"verified"`
	AutoMatchedWith string  `json:"auto_matched_with,omitempty"`
	Score           float64 `json:"score,omitempty"`
}

// Controller runs verify, reject, and notify operations.
type Controller struct {
	Items    itemstore.Store
	Notifier notify.Notifier

	// NotifyTimeout bounds each notification. Zero means notify.DefaultTimeout.
	NotifyTimeout time.Duration

	// OnRemove, if set, is called with a rejected item after it is deleted.
	OnRemove func(item *model.Item)

	// Cache, if set, is invalidated after every committed change.
	Cache Invalidator

	Logger *slog.Logger
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Verify marks an item verified and active, then pairs it with its best
// opposite-type candidate if one scores above the matching threshold. Both
// items of a pair are updated in the same store update. Match notifications
// are sent after the update is committed and never undo it.
func (c *Controller) Verify(ctx context.Context, id string) (*VerificationResult, error) {
	var result VerificationResult
	var target, partner model.Item

	err := c.Items.Update(ctx, func(items []model.Item) ([]model.Item, error) {
		idx := model.IndexOf(items, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if items[idx].Status == model.ItemStatusMatched {
			return nil, ErrAlreadyMatched
		}

		items[idx].Verified = true
		items[idx].Status = model.ItemStatusActive
		result = VerificationResult{Verified: true}

		matches := matching.FindMatches(id, items)
		if len(matches) == 0 {
			target = items[idx]
			return items, nil
		}

		best := matches[0]
		pidx := model.IndexOf(items, best.ItemID)
		items[idx].Status = model.ItemStatusMatched
		items[idx].MatchedWith = best.ItemID
		items[pidx].Status = model.ItemStatusMatched
		items[pidx].Verified = true
		items[pidx].MatchedWith = id

		result.AutoMatchedWith = best.ItemID
		result.Score = best.Score
		target, partner = items[idx], items[pidx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx)

	if result.AutoMatchedWith == "" {
		c.logger().Info("item verified", "item", id, "type", target.Type)
		return &result, nil
	}

	c.logger().Info("item verified and matched",
		"item", id, "matched_with", partner.ID, "score", result.Score)

	c.sendMatchFound(ctx, &target)
	c.sendMatchFound(ctx, &partner)

	return &result, nil
}

// Reject permanently removes a pending or active item.
func (c *Controller) Reject(ctx context.Context, id string) error {
	var removed model.Item

	err := c.Items.Update(ctx, func(items []model.Item) ([]model.Item, error) {
		idx := model.IndexOf(items, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if items[idx].Status == model.ItemStatusMatched {
			return nil, ErrAlreadyMatched
		}
		removed = items[idx]
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	c.invalidate(ctx)
	c.logger().Info("item rejected", "item", id, "type", removed.Type, "reported_by", removed.ReportedBy)

	if c.OnRemove != nil {
		c.OnRemove(&removed)
	}
	return nil
}

// NotifyOwner sends a potential-match alert describing the item to its
// reporter. It reports whether the message was delivered; delivery failure
// is not an error.
func (c *Controller) NotifyOwner(ctx context.Context, id, recipientName string) (bool, error) {
	item, err := itemstore.Get(ctx, c.Items, id)
	if err != nil {
		return false, err
	}

	subject, body, err := headsUpMessage(item, recipientName)
	if err != nil {
		return false, err
	}

	if err := c.send(ctx, item.ReportedBy, subject, body); err != nil {
		c.logger().Warn("failed to send match alert", "item", id, "to", item.ReportedBy, "error", err)
		return false, nil
	}

	c.logger().Info("match alert sent", "item", id, "to", item.ReportedBy)
	return true, nil
}

func (c *Controller) sendMatchFound(ctx context.Context, item *model.Item) {
	subject, body, err := matchFoundMessage(item)
	if err != nil {
		c.logger().Error("failed to render match notification", "item", item.ID, "error", err)
		return
	}
	if err := c.send(ctx, item.ReportedBy, subject, body); err != nil {
		c.logger().Warn("failed to send match notification", "item", item.ID, "to", item.ReportedBy, "error", err)
	}
}

// send delivers one message with its own timeout, detached from the caller's
// cancellation so a finished request does not cut a delivery short.
func (c *Controller) send(ctx context.Context, to, subject, body string) error {
	if c.Notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	timeout := c.NotifyTimeout
	if timeout <= 0 {
		timeout = notify.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return c.Notifier.Send(ctx, to, subject, body)
}

func (c *Controller) invalidate(ctx context.Context) {
	if c.Cache != nil {
		c.Cache.Invalidate(ctx)
	}
}
