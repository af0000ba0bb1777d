package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

// ExportSummary はエクスポート結果の集計です
type ExportSummary struct {
	Batches int
	Rows    int
	Skipped int
	Files   []string
}

// ExportService はSprintlyのアイテムをTracker用CSVへ書き出します
type ExportService struct {
	config   *config.Config
	source   ItemSource
	composer *RowComposer
	csvProc  *CSVProcessor
}

// NewExportService は新しいエクスポートサービスを作成します
func NewExportService(cfg *config.Config, source ItemSource, composer *RowComposer, csvProc *CSVProcessor) *ExportService {
	return &ExportService{
		config:   cfg,
		source:   source,
		composer: composer,
		csvProc:  csvProc,
	}
}

// BatchFileName はオフセットごとの出力ファイル名を返します
func BatchFileName(prefix string, offset int) string {
	return fmt.Sprintf("%s-%d.csv", prefix, offset)
}

// ExportAll は設定されたオフセットを順番に処理し、バッチごとに1ファイルを書き出します。
// エラーが起きた時点で中断しますが、書き出し済みのファイルはそのまま残ります。
func (e *ExportService) ExportAll(prefix string, offsets []int) (*ExportSummary, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "エクスポート全体")

	summary := &ExportSummary{}
	for _, offset := range offsets {
		path := BatchFileName(prefix, offset)
		rows, skipped, err := e.ExportBatch(offset)
		if err != nil {
			return summary, fmt.Errorf("オフセット %d の処理エラー: %w", offset, err)
		}

		if err := e.csvProc.WriteBatch(path, rows); err != nil {
			return summary, fmt.Errorf("オフセット %d の書き込みエラー: %w", offset, err)
		}

		summary.Batches++
		summary.Rows += len(rows)
		summary.Skipped += skipped
		summary.Files = append(summary.Files, path)
	}

	utils.LogInfo("エクスポートが完了しました: バッチ=%d, 行=%d, スキップ=%d", summary.Batches, summary.Rows, summary.Skipped)
	return summary, nil
}

// ExportBatch は1バッチ分のアイテムを取得し、行に変換します
func (e *ExportService) ExportBatch(offset int) ([]models.Row, int, error) {
	utils.LogInfo("アイテムを取得しています: offset=%d, limit=%d", offset, e.config.PageLimit)

	items, err := e.source.Items(offset, e.config.PageLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("アイテム取得エラー: %w", err)
	}
	if len(items) == 0 {
		utils.LogWarn("offset=%d にアイテムがありません", offset)
	}

	rows := make([]models.Row, 0, len(items))
	skipped := 0
	for i, item := range items {
		row, err := e.processItem(item)
		if err != nil {
			var itemErr *ItemError
			if e.config.SkipInvalidItems && errors.As(err, &itemErr) {
				utils.Logger().Error("アイテムをスキップします", zap.Int("number", item.Number), zap.Error(err))
				skipped++
				continue
			}
			return nil, skipped, err
		}
		rows = append(rows, row)

		// 進捗を表示（大量データの場合）
		if i > 0 && i%25 == 0 {
			utils.LogInfo("処理中... %d/%d 件完了", i, len(items))
		}
	}

	return rows, skipped, nil
}

// processItem はアイテム1件のコメント・添付ファイルを取得して1行に変換します
func (e *ExportService) processItem(item models.Item) (models.Row, error) {
	comments, err := e.source.Comments(item.Number)
	if err != nil {
		return nil, fmt.Errorf("アイテム #%d のコメント取得エラー: %w", item.Number, err)
	}

	attachments, err := e.source.Attachments(item.Number)
	if err != nil {
		return nil, fmt.Errorf("アイテム #%d の添付ファイル取得エラー: %w", item.Number, err)
	}

	return e.composer.ComposeRow(item, comments, attachments)
}
