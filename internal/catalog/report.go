package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/model"
)

// ReportInput is a new lost or found report.
type ReportInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=lost found"`
	Location    string `json:"location" validate:"required,max=200"`
	Color       string `json:"color" validate:"max=50"`
	Description string `json:"description" validate:"required,max=2000"`
	ReportedBy  string `json:"reported_by" validate:"required,email"`
}

func (in *ReportInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Location = strings.TrimSpace(in.Location)
	in.Color = strings.TrimSpace(in.Color)
	in.Description = strings.TrimSpace(in.Description)
	in.ReportedBy = strings.ToLower(strings.TrimSpace(in.ReportedBy))
}

// Report stores a new pending, unverified item. image may be nil; when set
// it is downscaled, re-encoded, and saved to the uploads directory.
func (s *Service) Report(ctx context.Context, in ReportInput, image io.Reader) (*model.Item, error) {
	in.trim()
	if err := check(&in); err != nil {
		return nil, err
	}

	item := model.Item{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Name:        in.Name,
		Category:    in.Category,
		Location:    in.Location,
		Color:       in.Color,
		Description: in.Description,
		Status:      model.ItemStatusPending,
		ReportedBy:  in.ReportedBy,
		Date:        time.Now().UTC().Truncate(time.Second),
	}

	if image != nil {
		name, err := imaging.Save(s.UploadsDir, image)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"image": err.Error()}}
		}
		item.Image = name
	}

	if err := itemstore.Insert(ctx, s.Items, item); err != nil {
		s.RemoveImage(&item)
		return nil, fmt.Errorf("storing report: %w", err)
	}

	s.invalidate(ctx)
	s.logger().Info("item reported", "item", item.ID, "type", item.Type, "reported_by", item.ReportedBy)
	return &item, nil
}
