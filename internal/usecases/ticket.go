package usecases

import (
	"time"

	"github.com/google/uuid"

	"powaccount/internal/domain"
)

// TicketUsecase issues admission tickets for accepted origins.
type TicketUsecase interface {
	Issue(origin string) domain.Ticket
}

type ticketUsecaseImpl struct {
	now func() time.Time
}

func NewTicketUsecase() TicketUsecase {
	return &ticketUsecaseImpl{now: time.Now}
}

func (t *ticketUsecaseImpl) Issue(origin string) domain.Ticket {
	return domain.Ticket{
		ID:       uuid.NewString(),
		Origin:   origin,
		IssuedAt: t.now(),
	}
}
