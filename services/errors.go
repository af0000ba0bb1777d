package services

import "fmt"

// UnknownEnumError は変換表に存在しない値を受け取ったことを表します
type UnknownEnumError struct {
	Field string
	Value string
}

func (e *UnknownEnumError) Error() string {
	return fmt.Sprintf("%s の値 %q は変換表に存在しません", e.Field, e.Value)
}

// UnresolvedMentionError はメンション辞書に名前が無いことを表します（MentionFail ポリシー時のみ）
type UnresolvedMentionError struct {
	Name string
	PK   string
}

func (e *UnresolvedMentionError) Error() string {
	return fmt.Sprintf("メンション @[%s](pk:%s) に対応するハンドルがありません", e.Name, e.PK)
}

// ItemError はアイテム単位の変換失敗をアイテム番号付きで包みます
type ItemError struct {
	Number int
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("アイテム #%d の変換エラー: %v", e.Number, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
