package services

import (
	"encoding/csv"
	"fmt"
	"os"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

// DefaultCommentColumns はヘッダーに最低限用意するCommentカラム数です
const DefaultCommentColumns = 6

// fixedHeaders はTracker CSVの固定カラムです
var fixedHeaders = []string{
	"Created at", "Accepted at", "Requested By", "Owned By", "Type",
	"Estimate", "Current State", "Title", "Description", "Labels",
}

// CSVProcessor はTracker用CSVファイルの書き出しを担当します
type CSVProcessor struct {
	config *config.Config
}

// NewCSVProcessor は新しいCSVプロセッサーを作成します
func NewCSVProcessor(cfg *config.Config) *CSVProcessor {
	return &CSVProcessor{
		config: cfg,
	}
}

// Headers はCommentカラムを commentColumns 個持つヘッダーを返します
func Headers(commentColumns int) []string {
	headers := make([]string, 0, len(fixedHeaders)+commentColumns)
	headers = append(headers, fixedHeaders...)
	for i := 0; i < commentColumns; i++ {
		headers = append(headers, "Comment")
	}
	return headers
}

// Layout はバッチの行をCSVに書ける形に揃え、ヘッダーと行を返します。
//
// 通常はヘッダーのCommentカラムを max(6, 最も長い行の末尾セル数) に広げ、
// 全行を空セルで埋めて同じ幅にします。RaggedRows が有効な場合は
// Commentカラム6個の固定ヘッダーと、埋めない行をそのまま返します。
func (p *CSVProcessor) Layout(rows []models.Row) ([]string, [][]string) {
	if p.config.RaggedRows {
		records := make([][]string, len(rows))
		for i, row := range rows {
			records[i] = row
		}
		return Headers(DefaultCommentColumns), records
	}

	commentColumns := DefaultCommentColumns
	for _, row := range rows {
		if tail := len(row) - FixedColumns; tail > commentColumns {
			commentColumns = tail
		}
	}

	headers := Headers(commentColumns)
	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(headers))
		copy(record, row)
		records[i] = record
	}
	return headers, records
}

// WriteBatch は1バッチ分の行をCSVファイルに書き出します
func (p *CSVProcessor) WriteBatch(path string, rows []models.Row) error {
	utils.LogInfo("Tracker CSVファイル '%s' を作成します", path)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("CSVファイル作成エラー: %w", err)
	}
	defer file.Close()

	headers, records := p.Layout(rows)

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("ヘッダー書き込みエラー: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("行書き込みエラー: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV書き込み完了エラー: %w", err)
	}

	utils.LogInfo("CSV書き込み完了: %d 行", len(records))
	return nil
}

// ReadCSV は書き出したCSVを読み戻します（行ごとのセル数は揃っていなくてもよい）
func (p *CSVProcessor) ReadCSV(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("CSVオープンエラー: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV読み込みエラー: %w", err)
	}

	return records, nil
}
