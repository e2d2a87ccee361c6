package service

import (
	"context"
	"fmt"

	"github.com/digkill/TGUpdateStore/internal/models"
	"github.com/digkill/TGUpdateStore/internal/repository"
)

type ReportStore interface {
	SelectChats(ctx context.Context, filter models.ChatFilter) ([]repository.Row, error)
	RequestCounters(ctx context.Context, target models.RequestTarget) (models.RequestCounters, error)
}

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

func (s *ReportService) Chats(ctx context.Context, filter models.ChatFilter) ([]repository.Row, error) {
	rows, err := s.store.SelectChats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("select chats: %w", err)
	}
	return rows, nil
}

func (s *ReportService) Counters(ctx context.Context, target models.RequestTarget) (models.RequestCounters, error) {
	c, err := s.store.RequestCounters(ctx, target)
	if err != nil {
		return models.RequestCounters{}, fmt.Errorf("request counters: %w", err)
	}
	return c, nil
}
