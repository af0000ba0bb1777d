package main

import (
	"flag"
	"fmt"
	"os"

	"sprintlytotracker/api"
	"sprintlytotracker/config"
	"sprintlytotracker/services"
	"sprintlytotracker/utils"
)

func main() {
	// ヘルプフラグの定義
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}
	defer utils.Sync()

	utils.LogInfo("Sprintly認証確認ツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}

	// Sprintlyクライアントの初期化
	client := api.NewSprintlyClient(cfg)

	// 認証チェック
	utils.LogInfo("Sprintly APIの認証を確認しています...")
	me, err := client.CheckAuth()
	if err != nil {
		utils.LogError("Sprintly認証エラー: %v", err)
		utils.LogError("認証情報を確認してください。")
		os.Exit(1)
	}

	utils.LogInfo("Sprintly認証成功！ ユーザー: %s (%s) 接続先: %s", services.FormatFullName(me), me.Email, cfg.SprintlyURL)
	utils.LogInfo("Sprintly APIの認証情報は正常です。")
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Sprintly認証確認ツール

使用方法:
  %s [オプション]

オプション:
  -help               このヘルプを表示する

環境変数:
  SPRINTLY_URL          Sprintly URL (デフォルト: https://sprint.ly)
  SPRINTLY_EMAIL        Sprintlyアカウントのメールアドレス (必須)
  SPRINTLY_API_KEY      Sprintly APIキー (必須)
  SPRINTLY_PRODUCT_ID   プロダクトID (必須)

説明:
  このツールはSprintly APIの認証情報が正しく設定されているかを確認します。
  認証が成功すれば、エクスポートツールも正常に動作する可能性が高いです。
`, os.Args[0])
}
