package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/storage"
	"github.com/xuri/excelize/v2"
)

const scoreboardSheet = "Classificacao"

var scoreboardHeader = []interface{}{
	"Posicao", "Turma", "Esportivos", "Alimentos", "Sangue",
	"W.O.", "Disciplinar", "Plantao", "Calouro", "Kg alimentos", "Total",
}

type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ExportService interface {
	ExportScoreboard(ctx context.Context) (*ExportResult, error)
}

type exportService struct {
	scoreboard ScoreboardService
	uploader   storage.FileUploader
	logger     *slog.Logger
	now        func() time.Time
}

// NewExportService accepts a nil uploader; exports then fail with
// ErrStorageNotConfigured.
func NewExportService(scoreboard ScoreboardService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{scoreboard: scoreboard, uploader: uploader, logger: logger, now: time.Now}
}

// BuildScoreboardWorkbook renders the ranking as a single-sheet XLSX file.
func BuildScoreboardWorkbook(ranking []*models.AggregateScore) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), scoreboardSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(scoreboardSheet, "A1", &scoreboardHeader); err != nil {
		return nil, err
	}
	for i, s := range ranking {
		name := s.TurmaID.String()
		if s.Turma != nil {
			name = s.Turma.Name
		}
		row := []interface{}{
			i + 1, name, s.SportPoints, s.FoodPoints, s.BloodPoints,
			s.ForfeitPenalty, s.DisciplinaryPenalty, s.GuardDutyPenalty, s.FreshmanFine,
			s.FoodKg, s.Total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(scoreboardSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) ExportScoreboard(ctx context.Context) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	ranking, err := s.scoreboard.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	data, err := BuildScoreboardWorkbook(ranking)
	if err != nil {
		return nil, err
	}

	key := storage.ExportKey("classificacao", s.now(), "xlsx")
	res, err := s.uploader.Upload(ctx, key, storage.ContentTypeXLSX, bytes.NewReader(data))
	if err != nil {
		s.logger.ErrorContext(ctx, "scoreboard export upload failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url := s.uploader.GetPublicURL(res.Key)
	s.logger.InfoContext(ctx, "scoreboard exported", slog.String("key", res.Key), slog.Int("rows", len(ranking)))
	return &ExportResult{Key: res.Key, URL: url}, nil
}
