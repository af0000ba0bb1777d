package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// UnknownEstimate は「見積もり不明」を表す番兵値です
const UnknownEstimate = -1

// Mapping はSprintlyの語彙からPivotal Trackerの語彙への変換表です。
// 作成後は読み取り専用として扱います。
type Mapping struct {
	Types     map[string]string `toml:"types"`
	Statuses  map[string]string `toml:"statuses"`
	Estimates map[string]int    `toml:"estimates"`
	Mentions  map[string]string `toml:"mentions"`
}

// DefaultMapping は標準の変換表を返します
func DefaultMapping() *Mapping {
	return &Mapping{
		// Sprintly type → Tracker story type
		Types: map[string]string{
			"story":  "feature",
			"defect": "bug",
			"task":   "feature",
			"test":   "feature",
		},
		// Sprintly status → Tracker current state
		Statuses: map[string]string{
			"someday":     "unscheduled",
			"backlog":     "unstarted",
			"in-progress": "started",
			"completed":   "delivered",
			"accepted":    "accepted",
		},
		// Sprintly score → Tracker estimate
		Estimates: map[string]int{
			"~":  UnknownEstimate,
			"S":  2,
			"M":  3,
			"L":  5,
			"XL": 8,
		},
		// メンバーのフルネーム → Trackerハンドル
		Mentions: map[string]string{
			"Joe Developer":  "@joedev",
			"Jane Developer": "@janedev",
		},
	}
}

// LoadMapping はTOMLファイルを読み込み、標準の変換表に上書きします
func LoadMapping(path string) (*Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("マッピングファイル %s の読み込みエラー: %w", path, err)
	}

	var override Mapping
	if err := toml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("マッピングファイル %s の解析エラー: %w", path, err)
	}

	m.merge(&override)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("マッピングファイル %s の検証エラー: %w", path, err)
	}

	return m, nil
}

func (m *Mapping) merge(o *Mapping) {
	for k, v := range o.Types {
		m.Types[k] = v
	}
	for k, v := range o.Statuses {
		m.Statuses[k] = v
	}
	for k, v := range o.Estimates {
		m.Estimates[k] = v
	}
	for k, v := range o.Mentions {
		m.Mentions[k] = v
	}
}

// Validate は変換表の値が使用可能かを確認します
func (m *Mapping) Validate() error {
	for k, v := range m.Types {
		if v == "" {
			return fmt.Errorf("types.%s が空です", k)
		}
	}
	for k, v := range m.Statuses {
		if v == "" {
			return fmt.Errorf("statuses.%s が空です", k)
		}
	}
	for k, v := range m.Estimates {
		// Trackerの見積もりに0以下は存在しない
		if v != UnknownEstimate && v <= 0 {
			return fmt.Errorf("estimates.%s は正の整数または %d である必要があります: %d", k, UnknownEstimate, v)
		}
	}
	for k, v := range m.Mentions {
		if v == "" {
			return fmt.Errorf("mentions.%q が空です", k)
		}
	}
	return nil
}
