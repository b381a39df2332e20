package chat

import (
	"time"

	"library-portal/internal/models"
)

// ConversationItemType rozróżnia pozycje projekcji konwersacji
type ConversationItemType string

const (
	ItemMessage     ConversationItemType = "message"
	ItemDateDivider ConversationItemType = "date_divider"
)

// ConversationItem to pozycja gotowej do wyświetlenia projekcji konwersacji
type ConversationItem struct {
	Type    ConversationItemType `json:"type"`
	Message *models.Message      `json:"message,omitempty"`
	Date    string               `json:"date,omitempty"` // YYYY-MM-DD w kalendarzu odbiorcy
}

// BuildConversationView buduje projekcję dziennika konwersacji przeplecioną
// separatorami dat: separator pojawia się między dwiema sąsiednimi
// wiadomościami z różnych dni kalendarzowych strefy loc.
//
// Czysta funkcja - wejściowy dziennik jest już ściśle uporządkowany
// kontraktem dopisywania, projekcję można bezpiecznie przeliczać po każdej
// zmianie dziennika.
func BuildConversationView(messages []models.Message, loc *time.Location) []ConversationItem {
	if loc == nil {
		loc = time.Local
	}

	items := make([]ConversationItem, 0, len(messages))
	var prevDay string

	for i := range messages {
		msg := messages[i]
		day := msg.SentAt.In(loc).Format("2006-01-02")

		if prevDay != "" && day != prevDay {
			items = append(items, ConversationItem{Type: ItemDateDivider, Date: day})
		}
		prevDay = day

		items = append(items, ConversationItem{Type: ItemMessage, Message: &msg})
	}

	return items
}
