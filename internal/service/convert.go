package service

import (
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/pkg/api"
)

func toSession(snap session.Snapshot) *api.Session {
	out := &api.Session{
		ID:              snap.ID,
		Owner:           snap.Owner,
		State:           string(snap.State),
		Participants:    make([]api.Participant, len(snap.Participants)),
		Items:           toItems(snap.Items),
		Summary:         toSummary(snap.Summary),
		Shares:          toShares(snap.Shares),
		UnassignedCount: snap.UnassignedCount,
		PaymentReady:    snap.PaymentReady,
		Submission:      snap.Submission,
		UpdatedAt:       snap.UpdatedAt.Unix(),
	}
	for i, p := range snap.Participants {
		out.Participants[i] = toParticipant(p, calculator.AssignedCount(snap.Items, p.ID))
	}
	if snap.Upload != nil {
		out.Upload = &api.Upload{
			Source:      string(snap.Upload.Source),
			FileName:    snap.Upload.FileName,
			ContentType: snap.Upload.ContentType,
			Size:        snap.Upload.Size,
		}
	}
	return out
}

func toParticipant(p models.Participant, itemCount int) api.Participant {
	return api.Participant{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		ColorTag:    p.ColorTag,
		Total:       p.Total,
		ItemCount:   itemCount,
	}
}

func toItems(items []models.ReceiptItem) []api.Item {
	out := make([]api.Item, len(items))
	for i, item := range items {
		out[i] = api.Item{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			AssignedTo: item.AssignedTo,
		}
	}
	return out
}

func toSummary(s calculator.Summary) api.Summary {
	return api.Summary{
		Subtotal: s.Subtotal,
		TaxRate:  s.TaxRate,
		Tax:      s.Tax,
		Total:    s.Total,
	}
}

func toShares(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		items := make([]api.ShareItem, len(s.Items))
		for j, item := range s.Items {
			items[j] = api.ShareItem{ItemID: item.ItemID, Name: item.Name, Price: item.Price}
		}
		out[i] = api.Share{
			ParticipantID: s.ParticipantID,
			DisplayName:   s.DisplayName,
			ColorTag:      s.ColorTag,
			Subtotal:      s.Subtotal,
			Tax:           s.Tax,
			Total:         s.Total,
			Items:         items,
		}
	}
	return out
}

func toBill(b *models.Bill) *api.Bill {
	return &api.Bill{
		ID:        b.ID,
		SessionID: b.SessionID,
		Title:     b.Title,
		Items:     toItems(b.Items),
		Shares:    toShares(b.Shares),
		Subtotal:  b.Subtotal,
		TaxRate:   b.TaxRate,
		Tax:       b.Tax,
		Total:     b.Total,
		CreatedAt: b.CreatedAt,
	}
}

func fromExtracted(items []api.ExtractedItem) []models.ExtractedItem {
	out := make([]models.ExtractedItem, len(items))
	for i, item := range items {
		out[i] = models.ExtractedItem{Name: item.Name, Price: item.Price}
	}
	return out
}
