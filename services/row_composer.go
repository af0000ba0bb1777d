package services

import (
	"fmt"
	"strconv"
	"strings"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
)

// FixedColumns はどの行でも必ず出力される先頭セルの数です
const FixedColumns = 10

// RowComposer はアイテム・コメント・添付ファイルから1行を組み立てます
type RowComposer struct {
	mapper   *FieldMapper
	rewriter *MentionRewriter
}

// NewRowComposer は変換表とメンションポリシーから行組み立て器を作成します
func NewRowComposer(m *config.Mapping, policy config.MentionPolicy) *RowComposer {
	return &RowComposer{
		mapper:   NewFieldMapper(m),
		rewriter: NewMentionRewriter(m.Mentions, policy),
	}
}

// ComposeRow は固定10セル + コメントセル + 添付ファイルセルの行を返します。
// コメントが1件も無いアイテムは添付ファイルセルも付きません。
func (c *RowComposer) ComposeRow(item models.Item, comments []models.Comment, attachments models.AttachmentList) (models.Row, error) {
	row, err := c.composePrefix(&item)
	if err != nil {
		return nil, &ItemError{Number: item.Number, Err: err}
	}

	if len(comments) == 0 {
		return row, nil
	}

	for i, comment := range comments {
		cell, ok, err := c.rewriter.RewriteComment(comment)
		if err != nil {
			return nil, &ItemError{Number: item.Number, Err: fmt.Errorf("コメント %d: %w", i+1, err)}
		}
		if !ok {
			continue
		}
		row = append(row, cell)
	}

	cell, ok, err := FormatAttachments(attachments)
	if err != nil {
		return nil, &ItemError{Number: item.Number, Err: err}
	}
	if ok {
		row = append(row, cell)
	}

	return row, nil
}

func (c *RowComposer) composePrefix(item *models.Item) (models.Row, error) {
	status, err := c.mapper.ResolveStatus(item)
	if err != nil {
		return nil, err
	}

	estimate, err := c.mapper.ResolveEstimate(status, item.Score)
	if err != nil {
		return nil, err
	}

	itemType, err := c.mapper.MapType(item.Type)
	if err != nil {
		return nil, err
	}

	acceptedAt := ""
	if v := AcceptedAt(item); v != nil {
		acceptedAt = *v
	}

	row := make(models.Row, 0, FixedColumns+2)
	row = append(row,
		FormatTimestamp(item.CreatedBy, "created_at"),
		acceptedAt,
		FormatFullName(item.CreatedBy),
		FormatFullName(item.AssignedTo),
		itemType,
		strconv.Itoa(estimate),
		status,
		item.Title,
		item.Description,
		JoinTags(item.Tags),
	)
	return row, nil
}

// FormatAttachments は添付ファイル一覧を1セルにまとめます。
// アイテムが存在しない（404）場合は ok=false でセル自体を出力しません。
func FormatAttachments(list models.AttachmentList) (string, bool, error) {
	if list.Err != nil {
		if list.NotFound() {
			return "", false, nil
		}
		return "", false, fmt.Errorf("添付ファイル取得エラー: %w", list.Err)
	}

	var sb strings.Builder
	for _, a := range list.Attachments {
		fmt.Fprintf(&sb, "%s: %s\n", a.Name, a.Href)
	}
	return sb.String(), true, nil
}
