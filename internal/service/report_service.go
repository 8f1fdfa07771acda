package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dailyEarningSheet = "DailyEarnings"
	payoutSheet       = "Payouts"
	maxReportRangeDay = 366
)

// ReportService 收益汇总与导出
type ReportService struct {
	dailyRepo  repository.DailyEarningRepository
	payoutRepo repository.PayoutRepository
}

// NewReportService 创建报表服务
func NewReportService(dailyRepo repository.DailyEarningRepository, payoutRepo repository.PayoutRepository) *ReportService {
	return &ReportService{dailyRepo: dailyRepo, payoutRepo: payoutRepo}
}

// EarningsSummary 用户收益汇总
type EarningsSummary struct {
	From            string                `json:"from"`
	To              string                `json:"to"`
	Visits          int64                 `json:"visits"`
	UniqueVisits    int64                 `json:"unique_visits"`
	Earnings        models.Money          `json:"earnings"`
	EarningsDisplay string                `json:"earnings_display"`
	Rows            []models.DailyEarning `json:"rows"`
}

// UserEarningsSummary 按日期区间汇总用户收益（日期 YYYY-MM-DD，UTC，闭区间）
func (s *ReportService) UserEarningsSummary(userID uint, from, to string) (*EarningsSummary, error) {
	from, to, err := normalizeReportRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.dailyRepo.List(repository.DailyEarningFilter{UserID: userID, DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}
	summary := &EarningsSummary{From: from, To: to, Rows: rows}
	total := decimal.Zero
	for _, row := range rows {
		summary.Visits += row.Visits
		summary.UniqueVisits += row.UniqueVisits
		total = total.Add(row.Earnings.Decimal)
	}
	summary.Earnings = models.NewMoneyFromDecimal(total)
	summary.EarningsDisplay = summary.Earnings.Display()
	return summary, nil
}

// ExportDailyEarnings 导出日收益汇总 XLSX
func (s *ReportService) ExportDailyEarnings(from, to string) ([]byte, error) {
	from, to, err := normalizeReportRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.dailyRepo.List(repository.DailyEarningFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}
	headers := []string{"Date", "User ID", "Country", "Visits", "Unique Visits", "Earnings", "Platform Earning"}
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, []interface{}{
			row.Date,
			row.UserID,
			row.CountryCode,
			row.Visits,
			row.UniqueVisits,
			row.Earnings.String(),
			row.PlatformEarning.String(),
		})
	}
	return buildWorkbook(dailyEarningSheet, headers, values)
}

// ExportPayouts 导出提现记录 XLSX（status 为空导出全部）
func (s *ReportService) ExportPayouts(status string) ([]byte, error) {
	rows, _, err := s.payoutRepo.List(repository.PayoutListFilter{Status: status})
	if err != nil {
		return nil, err
	}
	headers := []string{"ID", "User ID", "Amount", "Method", "Address", "Status", "Reject Reason", "Created At", "Processed At"}
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		processedAt := ""
		if row.ProcessedAt != nil {
			processedAt = row.ProcessedAt.UTC().Format(time.RFC3339)
		}
		values = append(values, []interface{}{
			row.ID,
			row.UserID,
			row.Amount.String(),
			row.Method,
			row.Address,
			row.Status,
			row.RejectReason,
			row.CreatedAt.UTC().Format(time.RFC3339),
			processedAt,
		})
	}
	return buildWorkbook(payoutSheet, headers, values)
}

func buildWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeReportRange 缺省为最近 30 天
func normalizeReportRange(from, to string) (string, string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	today := time.Now().UTC()
	if to == "" {
		to = today.Format(time.DateOnly)
	}
	if from == "" {
		from = today.AddDate(0, 0, -29).Format(time.DateOnly)
	}
	fromDate, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid from date", ErrReportRangeInvalid)
	}
	toDate, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid to date", ErrReportRangeInvalid)
	}
	if toDate.Before(fromDate) {
		return "", "", fmt.Errorf("%w: from after to", ErrReportRangeInvalid)
	}
	if toDate.Sub(fromDate) > maxReportRangeDay*24*time.Hour {
		return "", "", fmt.Errorf("%w: range too large", ErrReportRangeInvalid)
	}
	return from, to, nil
}
