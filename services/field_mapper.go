package services

import (
	"fmt"
	"strings"
	"time"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

const (
	// DefaultCompletedEstimate は完了済みアイテムの見積もりが不明な場合に使う値です
	DefaultCompletedEstimate = 2

	// trackerDateLayout はコメント署名に使う日付書式です（例: Jul 21, 2014）
	trackerDateLayout = "Jan 02, 2006"
)

// 見積もりを必須とするTracker側のステータス
var completedStatuses = map[string]bool{
	"delivered": true,
	"accepted":  true,
}

// FieldMapper は個々のフィールドをSprintlyの語彙からTrackerの語彙へ変換します
type FieldMapper struct {
	mapping *config.Mapping
}

// NewFieldMapper は変換表を注入してマッパーを作成します
func NewFieldMapper(m *config.Mapping) *FieldMapper {
	return &FieldMapper{
		mapping: m,
	}
}

// MapType はアイテム種別を変換します
func (f *FieldMapper) MapType(t string) (string, error) {
	v, ok := f.mapping.Types[t]
	if !ok {
		return "", &UnknownEnumError{Field: "type", Value: t}
	}
	return v, nil
}

// MapStatus はステータスを変換します
func (f *FieldMapper) MapStatus(s string) (string, error) {
	v, ok := f.mapping.Statuses[s]
	if !ok {
		return "", &UnknownEnumError{Field: "status", Value: s}
	}
	return v, nil
}

// MapEstimate はスコアを見積もりポイントに変換します。
// スコアが無い場合は "~"（不明）と同じ扱いで番兵値を返します。
func (f *FieldMapper) MapEstimate(token string) (int, error) {
	if token == "" {
		return config.UnknownEstimate, nil
	}
	v, ok := f.mapping.Estimates[token]
	if !ok {
		return 0, &UnknownEnumError{Field: "score", Value: token}
	}
	return v, nil
}

// AcceptedAt はアイテムの受け入れ日時を返します（無ければnil）
func AcceptedAt(item *models.Item) *string {
	if item.Progress == nil {
		return nil
	}
	return item.Progress.AcceptedAt
}

// ResolveStatus は最終的なTrackerステータスを決定します。
// 受け入れ日時があれば元のステータスに関係なく "accepted" です。
func (f *FieldMapper) ResolveStatus(item *models.Item) (string, error) {
	if AcceptedAt(item) != nil {
		return "accepted", nil
	}
	return f.MapStatus(item.Status)
}

// ResolveEstimate は解決済みステータスを前提に見積もりを決定します
func (f *FieldMapper) ResolveEstimate(status, score string) (int, error) {
	estimate, err := f.MapEstimate(score)
	if err != nil {
		return 0, err
	}
	if completedStatuses[status] && estimate == config.UnknownEstimate {
		return DefaultCompletedEstimate, nil
	}
	return estimate, nil
}

// FormatFullName は "名 姓" 形式の表示名を返します
func FormatFullName(p *models.Person) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// FormatTimestamp は指定したタイムスタンプ項目をそのまま返します
func FormatTimestamp(p *models.Person, field string) string {
	return p.Field(field)
}

// FormatDate は指定したタイムスタンプ項目を "Jan 02, 2006" 形式に整形します
func FormatDate(p *models.Person, field string) string {
	if p == nil {
		return ""
	}
	return convertDateFormat(p.Field(field))
}

// 日付文字列を変換
func convertDateFormat(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return ""
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return t.Format(trackerDateLayout)
		}
	}

	utils.LogWarn("日付変換エラー: '%s'", dateStr)
	return ""
}

// JoinTags はタグをカンマ区切りの1セルにまとめます（空なら空セル）
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return strings.Join(tags, ",")
}
