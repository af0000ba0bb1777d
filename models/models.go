package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Person はSprintlyのユーザー情報を表します（アイテムやコメントに埋め込まれています）
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login"`
}

// Field は名前で指定したタイムスタンプ項目の生の値を返します
func (p *Person) Field(name string) string {
	if p == nil {
		return ""
	}
	switch name {
	case "created_at":
		return p.CreatedAt
	case "last_login":
		return p.LastLogin
	}
	return ""
}

// Progress はアイテムの進捗タイムスタンプです
type Progress struct {
	TriagedAt  *string `json:"triaged_at,omitempty"`
	StartedAt  *string `json:"started_at,omitempty"`
	ClosedAt   *string `json:"closed_at,omitempty"`
	AcceptedAt *string `json:"accepted_at,omitempty"`
}

// Item はSprintlyのアイテム（story / defect / task / test）を表します
type Item struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Score       string    `json:"score"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
	CreatedBy   *Person   `json:"created_by"`
	AssignedTo  *Person   `json:"assigned_to"`
	Progress    *Progress `json:"progress"`
}

// Comment はアイテムに付いたコメントです
type Comment struct {
	ID           int     `json:"id"`
	Type         string  `json:"type"`
	Body         *string `json:"body"`
	CreatedBy    *Person `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
	LastModified string  `json:"last_modified"`
}

// Attachment はアイテムの添付ファイルです
type Attachment struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// APIError はSprintly APIが返すエラーオブジェクトです
// 例: {"message":"Item does not exist.","code":404}
type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sprintly api error %d: %s", e.Code, e.Message)
}

// AttachmentList は添付ファイル一覧、またはエラーオブジェクトのどちらかを保持します
type AttachmentList struct {
	Attachments []Attachment
	Err         *APIError
}

// NotFound はアイテムが既に存在しない（code 404）場合にtrueを返します
func (l AttachmentList) NotFound() bool {
	return l.Err != nil && l.Err.Code == http.StatusNotFound
}

// UnmarshalJSON は配列とエラーオブジェクトの両方を受け付けます
func (l *AttachmentList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = AttachmentList{}
		return nil
	}

	if trimmed[0] == '{' {
		var apiErr APIError
		if err := json.Unmarshal(trimmed, &apiErr); err != nil {
			return fmt.Errorf("添付ファイルのエラーオブジェクト解析エラー: %w", err)
		}
		*l = AttachmentList{Err: &apiErr}
		return nil
	}

	var attachments []Attachment
	if err := json.Unmarshal(trimmed, &attachments); err != nil {
		return fmt.Errorf("添付ファイル一覧の解析エラー: %w", err)
	}
	*l = AttachmentList{Attachments: attachments}
	return nil
}

// MarshalJSON は元のSprintly形式（配列またはエラーオブジェクト）で出力します
func (l AttachmentList) MarshalJSON() ([]byte, error) {
	if l.Err != nil {
		return json.Marshal(l.Err)
	}
	if l.Attachments == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Attachments)
}

// Row はPivotal Tracker用CSVの1行を表します
type Row []string
