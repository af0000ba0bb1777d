package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MentionPolicy は辞書に存在しないメンションの扱いを表します
type MentionPolicy string

const (
	// MentionKeep は元のマークアップをそのまま残し、警告ログを出します
	MentionKeep MentionPolicy = "keep"
	// MentionFail は変換エラーとして扱います
	MentionFail MentionPolicy = "fail"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Sprintly API設定
	SprintlyURL string
	Email       string
	APIKey      string
	ProductID   string
	Tags        string

	// ページング設定
	Offsets   []int
	PageLimit int

	// ファイルパス
	OutputPrefix string
	MappingFile  string
	DumpDir      string

	// 変換ポリシー
	MentionPolicy    MentionPolicy
	RaggedRows       bool
	SkipInvalidItems bool
}

// LoadConfig は環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	offsets, err := parseOffsets(getEnvWithDefault("SPRINTLY_OFFSETS", "0,100,200,300"))
	if err != nil {
		return nil, fmt.Errorf("SPRINTLY_OFFSETS の解析エラー: %w", err)
	}

	policy, err := ParseMentionPolicy(getEnvWithDefault("MENTION_POLICY", string(MentionKeep)))
	if err != nil {
		return nil, err
	}

	config := &Config{
		SprintlyURL:      strings.TrimRight(getEnvWithDefault("SPRINTLY_URL", "https://sprint.ly"), "/"),
		Email:            os.Getenv("SPRINTLY_EMAIL"),
		APIKey:           os.Getenv("SPRINTLY_API_KEY"),
		ProductID:        os.Getenv("SPRINTLY_PRODUCT_ID"),
		Tags:             getEnvWithDefault("SPRINTLY_TAGS", "pivotal"),
		Offsets:          offsets,
		PageLimit:        getEnvAsIntWithDefault("SPRINTLY_PAGE_LIMIT", 100),
		OutputPrefix:     getEnvWithDefault("OUTPUT_PREFIX", "tracker_import"),
		MappingFile:      os.Getenv("MAPPING_FILE"),
		DumpDir:          getEnvWithDefault("DUMP_DIR", "sprintly_dump"),
		MentionPolicy:    policy,
		RaggedRows:       getEnvAsBoolWithDefault("RAGGED_ROWS", false),
		SkipInvalidItems: getEnvAsBoolWithDefault("SKIP_INVALID_ITEMS", false),
	}

	return config, nil
}

// Validate はAPIアクセスに必要な設定が揃っているかを確認します
func (c *Config) Validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "SPRINTLY_EMAIL")
	}
	if c.APIKey == "" {
		missing = append(missing, "SPRINTLY_API_KEY")
	}
	if c.ProductID == "" {
		missing = append(missing, "SPRINTLY_PRODUCT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if c.PageLimit <= 0 {
		return errors.New("SPRINTLY_PAGE_LIMIT は1以上である必要があります")
	}
	return nil
}

// ParseMentionPolicy は文字列からポリシーを解決します
func ParseMentionPolicy(s string) (MentionPolicy, error) {
	switch p := MentionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MentionKeep, MentionFail:
		return p, nil
	}
	return "", fmt.Errorf("不明なメンションポリシー: %q (keep または fail)", s)
}

// ParseOffsets はカンマ区切りのオフセット一覧を解析します
func ParseOffsets(s string) ([]int, error) {
	return parseOffsets(s)
}

func parseOffsets(s string) ([]int, error) {
	var offsets []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("オフセット %q は整数ではありません", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("オフセット %d は負の値です", n)
		}
		offsets = append(offsets, n)
	}
	if len(offsets) == 0 {
		return nil, errors.New("オフセットが指定されていません")
	}
	return offsets, nil
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// デフォルト値付きで環境変数を整数として取得
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を真偽値として取得
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
