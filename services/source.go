package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

// ItemSource はアイテム・コメント・添付ファイルの取得元です。
// api.SprintlyClient と DumpSource が実装します。
type ItemSource interface {
	Items(offset, limit int) ([]models.Item, error)
	Comments(number int) ([]models.Comment, error)
	Attachments(number int) (models.AttachmentList, error)
}

var dumpItemsPattern = regexp.MustCompile(`^items-(\d+)\.json$`)

// DumpSource は保存済みのJSONファイルから読み込む取得元です。
//
//	{dir}/items-{offset}.json
//	{dir}/comments/{number}.json
//	{dir}/attachments/{number}.json
type DumpSource struct {
	dir string
}

// NewDumpSource はダンプディレクトリを読む取得元を作成します
func NewDumpSource(dir string) *DumpSource {
	return &DumpSource{dir: dir}
}

// Offsets はダンプに含まれるバッチのオフセットを昇順で返します
func (d *DumpSource) Offsets() ([]int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("ダンプディレクトリ読み取りエラー: %w", err)
	}

	var offsets []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := dumpItemsPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		offsets = append(offsets, n)
	}
	sort.Ints(offsets)
	return offsets, nil
}

// Items はオフセットに対応するアイテム一覧を読み込みます（limit を超える分は切り捨て）
func (d *DumpSource) Items(offset, limit int) ([]models.Item, error) {
	var items []models.Item
	if err := readJSON(filepath.Join(d.dir, fmt.Sprintf("items-%d.json", offset)), &items); err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Comments はコメント一覧を読み込みます（ファイルが無ければコメント無し）
func (d *DumpSource) Comments(number int) ([]models.Comment, error) {
	var comments []models.Comment
	err := readJSON(filepath.Join(d.dir, "comments", fmt.Sprintf("%d.json", number)), &comments)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return comments, err
}

// Attachments は添付ファイル一覧を読み込みます（ファイルが無ければ404扱い）
func (d *DumpSource) Attachments(number int) (models.AttachmentList, error) {
	var list models.AttachmentList
	err := readJSON(filepath.Join(d.dir, "attachments", fmt.Sprintf("%d.json", number)), &list)
	if errors.Is(err, fs.ErrNotExist) {
		return models.AttachmentList{Err: &models.APIError{Message: "Item does not exist.", Code: http.StatusNotFound}}, nil
	}
	return list, err
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みエラー: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSON解析エラー (%s): %w", path, err)
	}
	return nil
}

// RecordingSource は別の取得元をラップし、取得したJSONをダンプ形式で保存します
type RecordingSource struct {
	src ItemSource
	dir string
}

// NewRecordingSource は保存先ディレクトリを作成してラッパーを返します
func NewRecordingSource(src ItemSource, dir string) (*RecordingSource, error) {
	for _, sub := range []string{"", "comments", "attachments"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("ダンプディレクトリ作成エラー: %w", err)
		}
	}
	return &RecordingSource{src: src, dir: dir}, nil
}

func (r *RecordingSource) Items(offset, limit int) ([]models.Item, error) {
	items, err := r.src.Items(offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	r.save(filepath.Join(r.dir, fmt.Sprintf("items-%d.json", offset)), items)
	return items, nil
}

func (r *RecordingSource) Comments(number int) ([]models.Comment, error) {
	comments, err := r.src.Comments(number)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	r.save(filepath.Join(r.dir, "comments", fmt.Sprintf("%d.json", number)), comments)
	return comments, nil
}

func (r *RecordingSource) Attachments(number int) (models.AttachmentList, error) {
	list, err := r.src.Attachments(number)
	if err != nil {
		return list, err
	}
	r.save(filepath.Join(r.dir, "attachments", fmt.Sprintf("%d.json", number)), list)
	return list, nil
}

// save の失敗はエクスポート自体を止めない
func (r *RecordingSource) save(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		utils.LogWarn("ダンプのエンコードエラー %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		utils.LogWarn("ダンプの書き込みエラー %s: %v", path, err)
	}
}
