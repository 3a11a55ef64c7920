package services

import (
	"context"
	"strings"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

type SupportService interface {
	CreateTicket(ctx context.Context, actor *auth.Actor, req *dto.CreateTicketRequest) (*dto.TicketResponse, error)
	ListTickets(ctx context.Context, status string, page, pageSize int) (*dto.TicketListResponse, error)
	CloseTicket(ctx context.Context, actor *auth.Actor, ticketID string) (*dto.TicketResponse, error)
}

type supportService struct {
	store repositories.Store
}

func NewSupportService(store repositories.Store) SupportService {
	return &supportService{store: store}
}

func (s *supportService) CreateTicket(ctx context.Context, actor *auth.Actor, req *dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermSupportCreate) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	ticket := &models.SupportTicket{
		UserID:  actor.ID,
		Subject: strings.TrimSpace(req.Subject),
		Body:    strings.TrimSpace(req.Body),
		Status:  models.TicketStatusOpen,
	}
	if err := s.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "support ticket created", "ticket_id", ticket.ID, "user_id", actor.ID)
	return toTicketResponse(ticket), nil
}

func (s *supportService) ListTickets(ctx context.Context, status string, page, pageSize int) (*dto.TicketListResponse, error) {
	ticketStatus := models.TicketStatus(strings.ToUpper(strings.TrimSpace(status)))
	if ticketStatus != "" && !ticketStatus.IsValid() {
		return nil, apperrors.ErrInvalidStatus("support", "Unknown ticket status")
	}

	p := repositories.Page{Page: page, PageSize: pageSize}.Normalize()
	tickets, total, err := s.store.Tickets().List(ctx, ticketStatus, p)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, toTicketResponse(&tickets[i]))
	}
	return &dto.TicketListResponse{Tickets: out, Total: total, Page: p.Page}, nil
}

func (s *supportService) CloseTicket(ctx context.Context, actor *auth.Actor, ticketID string) (*dto.TicketResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermSupportManage) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	ticket, err := s.store.Tickets().FindByID(ctx, ticketID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if ticket.Status != models.TicketStatusClosed {
		if err := s.store.Tickets().UpdateStatus(ctx, ticketID, models.TicketStatusClosed); err != nil {
			return nil, handleRepoError(err)
		}
		ticket.Status = models.TicketStatusClosed
		logger.CtxInfo(ctx, "support ticket closed", "ticket_id", ticketID, "actor_id", actor.ID)
	}
	return toTicketResponse(ticket), nil
}
