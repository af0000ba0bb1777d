package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

// 取得対象とするSprintlyのステータス
var exportStatuses = []string{"someday", "backlog", "in-progress", "completed", "accepted"}

// ItemsQuery はアイテム一覧APIのクエリパラメータです
type ItemsQuery struct {
	Status   []string `url:"status,comma"`
	Tags     string   `url:"tags,omitempty"`
	Children bool     `url:"children"`
	Offset   int      `url:"offset"`
	Limit    int      `url:"limit"`
	OrderBy  string   `url:"order_by"`
}

// SprintlyClient はSprintly APIとのやり取りを処理します
type SprintlyClient struct {
	config *config.Config
	client *http.Client
}

// NewSprintlyClient は新しいSprintlyクライアントを作成します
func NewSprintlyClient(cfg *config.Config) *SprintlyClient {
	return &SprintlyClient{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// CheckAuth はSprintly認証をチェックし、ログインユーザーを返します
func (s *SprintlyClient) CheckAuth() (*models.Person, error) {
	url := fmt.Sprintf("%s/api/user/whoami.json", s.config.SprintlyURL)

	resp, err := s.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("認証失敗: %s", string(body))
	}

	var me models.Person
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	return &me, nil
}

// ItemsURL はアイテム一覧のURLを組み立てます
func (s *SprintlyClient) ItemsURL(offset, limit int) (string, error) {
	q := ItemsQuery{
		Status:   exportStatuses,
		Tags:     s.config.Tags,
		Children: true,
		Offset:   offset,
		Limit:    limit,
		OrderBy:  "oldest",
	}

	values, err := query.Values(q)
	if err != nil {
		return "", fmt.Errorf("クエリ生成エラー: %w", err)
	}

	return fmt.Sprintf("%s/api/products/%s/items.json?%s", s.config.SprintlyURL, s.config.ProductID, values.Encode()), nil
}

// Items はアイテム一覧を1ページ分取得します
func (s *SprintlyClient) Items(offset, limit int) ([]models.Item, error) {
	url, err := s.ItemsURL(offset, limit)
	if err != nil {
		return nil, err
	}

	resp, err := s.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp, "アイテム取得失敗")
	}

	var items []models.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	return items, nil
}

// Comments はアイテムのコメント一覧を取得します（アイテムが存在しなければ空）
func (s *SprintlyClient) Comments(number int) ([]models.Comment, error) {
	url := fmt.Sprintf("%s/api/products/%s/items/%d/comments.json", s.config.SprintlyURL, s.config.ProductID, number)

	resp, err := s.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		utils.LogWarn("アイテム #%d のコメントが見つかりません", number)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp, "コメント取得失敗")
	}

	var comments []models.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	return comments, nil
}

// Attachments はアイテムの添付ファイル一覧を取得します。
// 404の場合もエラーオブジェクトをそのまま AttachmentList として返します。
func (s *SprintlyClient) Attachments(number int) (models.AttachmentList, error) {
	url := fmt.Sprintf("%s/api/products/%s/items/%d/attachments.json", s.config.SprintlyURL, s.config.ProductID, number)

	resp, err := s.get(url)
	if err != nil {
		return models.AttachmentList{}, err
	}
	defer resp.Body.Close()

	var list models.AttachmentList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		if resp.StatusCode != http.StatusOK {
			return models.AttachmentList{Err: &models.APIError{Message: http.StatusText(resp.StatusCode), Code: resp.StatusCode}}, nil
		}
		return models.AttachmentList{}, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	if resp.StatusCode != http.StatusOK && list.Err == nil {
		list = models.AttachmentList{Err: &models.APIError{Message: http.StatusText(resp.StatusCode), Code: resp.StatusCode}}
	}

	return list, nil
}

func (s *SprintlyClient) get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	req.SetBasicAuth(s.config.Email, s.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リクエスト送信エラー: %w", err)
	}

	return resp, nil
}

// decodeAPIError はエラーレスポンスを *models.APIError に変換します
func decodeAPIError(resp *http.Response, what string) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr models.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return fmt.Errorf("%s: %w", what, &apiErr)
	}
	return fmt.Errorf("%s: %d %s", what, resp.StatusCode, string(body))
}
