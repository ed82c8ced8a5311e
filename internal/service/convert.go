package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/split"
	pb "github.com/mmynk/tablesplit/pkg/api"
)

func snapshotFromRequest(msg *pb.StartSplitRequest) models.CartSnapshot {
	items := make([]models.LineItem, len(msg.Items))
	for i, item := range msg.Items {
		items[i] = models.LineItem{
			ID:          item.ID,
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Modifiers:   item.Modifiers,
		}
	}
	return models.CartSnapshot{Items: items, Total: msg.Total}
}

func splitToProto(v split.View) *pb.Split {
	guests := make([]pb.Guest, len(v.Guests))
	for i, g := range v.Guests {
		guest := pb.Guest{
			Index:        g.Index,
			Status:       string(g.Status),
			Owed:         g.Owed,
			Method:       string(g.Method),
			Items:        g.Items,
			CustomAmount: g.Custom,
		}
		if g.Status == models.PaymentStatusPaid {
			settled := g.Settled
			guest.Settled = &settled
		}
		guests[i] = guest
	}

	return &pb.Split{
		SessionID: v.ID,
		Mode:      string(v.Mode),
		Total:     v.Total,
		Remaining: v.Remaining,
		Guests:    guests,
		Payment:   flowToProto(v.Flow),
		Coverage: pb.Coverage{
			Warning:    string(v.Coverage.Warning),
			Allocated:  v.Coverage.Allocated,
			Difference: v.Coverage.Difference,
			Unassigned: v.Coverage.Unassigned,
		},
		Closed: v.Closed,
	}
}

func flowToProto(f split.FlowState) pb.PaymentFlow {
	switch st := f.(type) {
	case split.Selecting:
		g := st.Guest
		return pb.PaymentFlow{State: "selecting", GuestIndex: &g}
	case split.MethodChosen:
		g := st.Guest
		return pb.PaymentFlow{State: "method_chosen", GuestIndex: &g, Method: string(st.Method)}
	default:
		return pb.PaymentFlow{State: "idle"}
	}
}

func settlementToProto(s models.Settlement) pb.Settlement {
	return pb.Settlement{
		ID:         s.ID,
		SessionID:  s.SessionID,
		GuestIndex: s.GuestIndex,
		Amount:     s.Amount,
		Method:     string(s.Method),
		Mode:       string(s.Mode),
		Sequence:   s.Sequence,
		OperatorID: s.OperatorID,
		CreatedAt:  s.CreatedAt,
	}
}

func amountFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
