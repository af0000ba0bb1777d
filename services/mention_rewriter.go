package services

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

// mentionPattern はコメント本文中の @[Full Name](pk:12345) 形式のメンションに一致します
var mentionPattern = regexp.MustCompile(`@\[([^\]\n]+)\]\(pk:(\d+)\)`)

// MentionRewriter はコメント本文のメンションをTrackerハンドルに書き換えます
type MentionRewriter struct {
	directory map[string]string
	policy    config.MentionPolicy
}

// NewMentionRewriter は辞書とポリシーを注入して作成します
func NewMentionRewriter(directory map[string]string, policy config.MentionPolicy) *MentionRewriter {
	if policy == "" {
		policy = config.MentionKeep
	}
	return &MentionRewriter{
		directory: directory,
		policy:    policy,
	}
}

// RewriteBody は本文を左から1回だけ走査し、一致するたびにその場で置換します。
// 辞書に無い名前は MentionKeep なら元のまま残し、MentionFail ならエラーを返します。
func (r *MentionRewriter) RewriteBody(body string) (string, error) {
	matches := mentionPattern.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body, nil
	}

	var sb strings.Builder
	sb.Grow(len(body))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		name := body[m[2]:m[3]]
		pk := body[m[4]:m[5]]

		sb.WriteString(body[last:start])
		last = end

		handle, ok := r.directory[name]
		if ok {
			sb.WriteString(handle)
			continue
		}

		if r.policy == config.MentionFail {
			return "", &UnresolvedMentionError{Name: name, PK: pk}
		}
		utils.Logger().Warn("メンションに対応するハンドルがないため元の表記を残します",
			zap.String("name", name), zap.String("pk", pk))
		sb.WriteString(body[start:end])
	}
	sb.WriteString(body[last:])

	return sb.String(), nil
}

// RewriteComment はコメント1件をCSVセルに変換します。
// 本文が無いコメントは ok=false を返し、出力から除外されます。
func (r *MentionRewriter) RewriteComment(c models.Comment) (string, bool, error) {
	if c.Body == nil {
		return "", false, nil
	}

	body, err := r.RewriteBody(*c.Body)
	if err != nil {
		return "", false, err
	}

	// 署名の日付はコメント作成者のアカウント作成日
	return fmt.Sprintf("%s (%s - %s)", body, FormatFullName(c.CreatedBy), FormatDate(c.CreatedBy, "created_at")), true, nil
}
