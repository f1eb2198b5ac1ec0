package usecase

import (
	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/geo"
)

// NearbyRadiusKm is the inclusive radius of the "nearby" tab.
const NearbyRadiusKm = 10.0

type TicketTab string

const (
	TabAll    TicketTab = "all"
	TabMine   TicketTab = "mine"
	TabNearby TicketTab = "nearby"
)

// ParseTab maps a query value to a tab. Empty selects TabAll.
func ParseTab(value string) (TicketTab, bool) {
	switch TicketTab(value) {
	case "", TabAll:
		return TabAll, true
	case TabMine, TabNearby:
		return TicketTab(value), true
	}
	return "", false
}

type TicketQuery struct {
	Tab           TicketTab
	Category      *entity.TicketCategory
	CurrentUserID string
	Home          *entity.Coordinate
}

// FilterTickets keeps the tickets matching both the tab and the category
// filter. Input order is preserved; a nil home makes "nearby" a pass-through.
func FilterTickets(tickets []*entity.Ticket, q TicketQuery) []*entity.Ticket {
	filtered := make([]*entity.Ticket, 0, len(tickets))
	if q.Tab == TabMine && q.CurrentUserID == "" {
		return filtered
	}

	for _, t := range tickets {
		if !matchesTab(t, q) {
			continue
		}
		if q.Category != nil && t.Category != *q.Category {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

func matchesTab(t *entity.Ticket, q TicketQuery) bool {
	switch q.Tab {
	case TabMine:
		return t.UserID == q.CurrentUserID
	case TabNearby:
		if q.Home == nil {
			return true
		}
		return geo.Between(*q.Home, t.Location) <= NearbyRadiusKm
	default:
		return true
	}
}
