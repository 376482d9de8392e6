package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jaehyuk-lee/infinite_buying_bot/config"
	"github.com/jaehyuk-lee/infinite_buying_bot/data/repository"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/service"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/strategy"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

type Repository interface {
	RegUser(ctx context.Context, chatID int64) (userID int64, err error)
	GetUserID(ctx context.Context, chatID int64) (userID int64, err error)
	CreatePortfolio(ctx context.Context, userID int64, name string, totalInvestment decimal.Decimal, installments int) (portfolioID int64, err error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	UpdatePortfolioState(ctx context.Context, p model.Portfolio) error
	GetPortfoliosPage(ctx context.Context, chatID int64, status model.PortfolioStatus, limit, offset int) (portfolios []model.Portfolio, hasNextPage bool, err error)
	GetOngoingPortfolioIDs(ctx context.Context) ([]int64, error)
	DeletePortfolio(ctx context.Context, portfolioID int64) error
	InsertTransaction(ctx context.Context, tx model.Transaction) (transactionID int64, err error)
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, portfolioID, transactionID int64) error
	GetTransactions(ctx context.Context, portfolioID int64) ([]model.Transaction, error)
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type Cache interface {
	GetPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error)
	SetPortfolioDetails(ctx context.Context, portfolioID int64, details model.PortfolioDetails) error
	FlushPortfolio(ctx context.Context, portfolioID int64) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, details model.PortfolioDetails) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
}

func New(cfg *config.Config, repo Repository, cache Cache, reportGenerator ReportGenerator, cloudStorage CloudStorage) *PortfolioService {
	return &PortfolioService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

func (s *PortfolioService) RegUser(ctx context.Context, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RegUser"

	slog.Debug("RegUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("RegUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}()

	_, err := s.repo.RegUser(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		slog.Error("got error from repo.RegUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *PortfolioService) CreatePortfolio(ctx context.Context, chatID int64, name string, totalInvestment decimal.Decimal, installments int) (portfolioID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.Int64("chatID", chatID))
	}()

	if strings.TrimSpace(name) == "" || !totalInvestment.IsPositive() || installments <= 0 {
		return 0, service.ErrInvalidInput
	}

	userID, err := s.repo.GetUserID(ctx, chatID)
	if err != nil {
		slog.Error("got error from repo.GetUserID", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return 0, err
	}

	portfolioID, err = s.repo.CreatePortfolio(ctx, userID, name, totalInvestment, installments)
	if err != nil {
		slog.Error("got error from repo.CreatePortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return 0, err
	}

	return portfolioID, nil
}

// GetPortfolioDetails serves the full portfolio view. Persisted mode/status
// fields are only a cache of the last recalculation, so every load re-derives
// them from the transaction list before anything is rendered or recommended.
func (s *PortfolioService) GetPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolioDetails"

	slog.Debug("GetPortfolioDetails start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GetPortfolioDetails finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	details, err := s.cache.GetPortfolioDetails(ctx, portfolioID)
	if err == nil {
		return details, nil
	}

	details, err = s.loadPortfolioDetails(ctx, portfolioID)
	if err != nil {
		return model.PortfolioDetails{}, err
	}

	go s.cache.SetPortfolioDetails(context.WithoutCancel(ctx), portfolioID, details)

	return details, nil
}

func (s *PortfolioService) loadPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.loadPortfolioDetails"

	p, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioDetails{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioDetails{}, err
	}

	p.Transactions, err = s.repo.GetTransactions(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioDetails{}, err
	}

	p = strategy.Recalculate(p)
	stats := strategy.ComputeStats(p.Transactions)

	return model.PortfolioDetails{
		Portfolio:      p,
		Stats:          stats,
		Recommendation: strategy.Recommend(p, stats),
	}, nil
}

func validateTransaction(tx model.Transaction) error {
	if tx.Type != model.TransactionBuy && tx.Type != model.TransactionSell {
		return service.ErrInvalidInput
	}
	if !tx.Price.IsPositive() || !tx.Quantity.IsPositive() || tx.Date.IsZero() {
		return service.ErrInvalidInput
	}
	return nil
}

// AddTransaction appends a trade and re-derives the whole portfolio state from
// the updated history inside one DB transaction.
func (s *PortfolioService) AddTransaction(ctx context.Context, portfolioID int64, tx model.Transaction) (details model.PortfolioDetails, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("AddTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	if err = validateTransaction(tx); err != nil {
		return model.PortfolioDetails{}, err
	}

	tx.PortfolioID = portfolioID

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		p, txErr := s.repo.GetPortfolio(ctx, portfolioID)
		if txErr != nil {
			return txErr
		}

		transactions, txErr := s.repo.GetTransactions(ctx, portfolioID)
		if txErr != nil {
			return txErr
		}

		if tx.Type == model.TransactionSell {
			stats := strategy.ComputeStats(strategy.SortTransactions(transactions))
			if tx.Quantity.GreaterThan(stats.SharesHeld) {
				return service.ErrSellExceedsHoldings
			}
		}

		tx.ID, txErr = s.repo.InsertTransaction(ctx, tx)
		if txErr != nil {
			return txErr
		}

		p.Transactions = append(transactions, tx)
		p = strategy.Recalculate(p)

		return s.repo.UpdatePortfolioState(ctx, p)
	})
	if err != nil {
		if !errors.Is(err, service.ErrSellExceedsHoldings) {
			slog.Error("AddTransaction transaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioDetails{}, service.ErrNotFound
		}
		return model.PortfolioDetails{}, err
	}

	return s.refreshPortfolioDetails(ctx, portfolioID)
}

// EditTransaction replaces a past trade and replays the full history; an edit
// to an early transaction may rewrite the entire mode trajectory after it.
func (s *PortfolioService) EditTransaction(ctx context.Context, portfolioID int64, tx model.Transaction) (details model.PortfolioDetails, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.EditTransaction"

	slog.Debug("EditTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int64("transactionID", tx.ID))
	defer func() {
		slog.Debug("EditTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	if err = validateTransaction(tx); err != nil {
		return model.PortfolioDetails{}, err
	}

	tx.PortfolioID = portfolioID

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if txErr := s.repo.UpdateTransaction(ctx, tx); txErr != nil {
			return txErr
		}
		return s.recalculateAndPersist(ctx, portfolioID)
	})
	if err != nil {
		slog.Error("EditTransaction transaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioDetails{}, service.ErrNotFound
		}
		return model.PortfolioDetails{}, err
	}

	return s.refreshPortfolioDetails(ctx, portfolioID)
}

func (s *PortfolioService) DeleteTransaction(ctx context.Context, portfolioID, transactionID int64) (details model.PortfolioDetails, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if txErr := s.repo.DeleteTransaction(ctx, portfolioID, transactionID); txErr != nil {
			return txErr
		}
		return s.recalculateAndPersist(ctx, portfolioID)
	})
	if err != nil {
		slog.Error("DeleteTransaction transaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioDetails{}, service.ErrNotFound
		}
		return model.PortfolioDetails{}, err
	}

	return s.refreshPortfolioDetails(ctx, portfolioID)
}

// recalculateAndPersist reloads the full history and persists the re-derived
// portfolio state. Must run inside a repository transaction.
func (s *PortfolioService) recalculateAndPersist(ctx context.Context, portfolioID int64) error {
	p, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	p.Transactions, err = s.repo.GetTransactions(ctx, portfolioID)
	if err != nil {
		return err
	}

	p = strategy.Recalculate(p)

	return s.repo.UpdatePortfolioState(ctx, p)
}

// refreshPortfolioDetails drops the stale cache entry and rebuilds the view.
func (s *PortfolioService) refreshPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	// flushed synchronously so a concurrent read can't resurrect stale state
	err := s.cache.FlushPortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	details, err := s.loadPortfolioDetails(ctx, portfolioID)
	if err != nil {
		return model.PortfolioDetails{}, err
	}

	go s.cache.SetPortfolioDetails(context.WithoutCancel(ctx), portfolioID, details)

	return details, nil
}

func (s *PortfolioService) GetPortfoliosPage(ctx context.Context, chatID int64, status model.PortfolioStatus, page int) (model.PortfolioPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfoliosPage"

	slog.Debug("GetPortfoliosPage start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID), slog.Int("page", page))
	defer func() {
		slog.Debug("GetPortfoliosPage finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}()

	if page < 1 {
		page = 1
	}

	limit := s.cfg.PortfoliosPerPage
	offset := (page - 1) * limit

	portfolios, hasNextPage, err := s.repo.GetPortfoliosPage(ctx, chatID, status, limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetPortfoliosPage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioPage{}, err
	}

	return model.PortfolioPage{Portfolios: portfolios, CurPage: page, HasNextPage: hasNextPage}, nil
}

func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeletePortfolio"

	slog.Debug("DeletePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("DeletePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	if err := s.repo.DeletePortfolio(ctx, portfolioID); err != nil {
		slog.Error("got error from repo.DeletePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := s.cache.FlushPortfolio(ctx, portfolioID); err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return nil
}

// GetEvaluation returns the frozen result of a completed portfolio.
func (s *PortfolioService) GetEvaluation(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error) {
	details, err := s.GetPortfolioDetails(ctx, portfolioID)
	if err != nil {
		return model.PortfolioDetails{}, err
	}

	if details.Portfolio.Status != model.StatusCompleted || details.Portfolio.EvaluationResult == nil {
		return model.PortfolioDetails{}, service.ErrNotCompleted
	}

	return details, nil
}

// GenerateEvaluationReport builds the result workbook for a completed
// portfolio and uploads it to cloud storage.
func (s *PortfolioService) GenerateEvaluationReport(ctx context.Context, portfolioID int64) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateEvaluationReport"

	slog.Debug("GenerateEvaluationReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GenerateEvaluationReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	details, err := s.GetPortfolioDetails(ctx, portfolioID)
	if err != nil {
		return "", err
	}

	if details.Portfolio.Status != model.StatusCompleted {
		return "", service.ErrNotCompleted
	}

	fileBytes, fileExtension, err := s.reportGenerator.Generate(ctx, details)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("%s_%s%s", details.Portfolio.Name, time.Now().Format("2006-01-02"), fileExtension)
	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}

// WarmPortfolioCache recomputes and caches details of every ongoing portfolio.
// Scheduled job; keeps bot responses fast after the cache TTL expires.
func (s *PortfolioService) WarmPortfolioCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.WarmPortfolioCache"

	slog.Debug("WarmPortfolioCache start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("WarmPortfolioCache finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	portfolioIDs, err := s.repo.GetOngoingPortfolioIDs(ctx)
	if err != nil {
		slog.Error("got error from repo.GetOngoingPortfolioIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	for _, portfolioID := range portfolioIDs {
		details, loadErr := s.loadPortfolioDetails(ctx, portfolioID)
		if loadErr != nil {
			slog.Error("can't load portfolio details", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("err", loadErr.Error()))
			continue
		}

		if cacheErr := s.cache.SetPortfolioDetails(ctx, portfolioID, details); cacheErr != nil {
			slog.Error("can't cache portfolio details", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("err", cacheErr.Error()))
		}
	}

	return nil
}

// CleanupOldReports removes expired report files from cloud storage.
// Scheduled job.
func (s *PortfolioService) CleanupOldReports(ctx context.Context) error {
	return s.cloudStorage.DeleteOldFiles(ctx)
}
