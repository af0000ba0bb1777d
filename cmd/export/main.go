package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sprintlytotracker/api"
	"sprintlytotracker/config"
	"sprintlytotracker/services"
	"sprintlytotracker/utils"
)

func main() {
	// コマンドラインフラグの定義
	output := flag.String("output", "", "出力ファイル名のプレフィックス（{prefix}-{offset}.csv）")
	offsets := flag.String("offsets", "", "取得するオフセット（カンマ区切り、例: 0,100,200,300）")
	mappingFile := flag.String("mapping", "", "変換表のTOMLファイル")
	dump := flag.Bool("dump", false, "取得したJSONを DUMP_DIR に保存する")
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}
	defer utils.Sync()

	// 開始時間の記録
	startTime := time.Now()

	utils.LogInfo("Sprintly → Pivotal Tracker エクスポートツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// コマンドラインで指定された場合、設定を上書き
	if *output != "" {
		cfg.OutputPrefix = *output
	}
	if *offsets != "" {
		cfg.Offsets, err = config.ParseOffsets(*offsets)
		if err != nil {
			utils.LogError("オフセットの指定が不正です: %v", err)
			os.Exit(1)
		}
	}
	if *mappingFile != "" {
		cfg.MappingFile = *mappingFile
	}

	if err := cfg.Validate(); err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}

	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		utils.LogError("変換表の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// 必要なサービスの初期化
	var source services.ItemSource = api.NewSprintlyClient(cfg)
	if *dump {
		source, err = services.NewRecordingSource(source, cfg.DumpDir)
		if err != nil {
			utils.LogError("%v", err)
			os.Exit(1)
		}
		utils.LogInfo("取得したJSONを保存します: %s", cfg.DumpDir)
	}

	composer := services.NewRowComposer(mapping, cfg.MentionPolicy)
	csvProc := services.NewCSVProcessor(cfg)
	exportService := services.NewExportService(cfg, source, composer, csvProc)

	// エクスポートの実行
	summary, err := exportService.ExportAll(cfg.OutputPrefix, cfg.Offsets)
	if err != nil {
		utils.LogError("エクスポートに失敗しました: %v", err)
		if summary != nil && len(summary.Files) > 0 {
			utils.LogInfo("書き出し済みのファイル: %v", summary.Files)
		}
		os.Exit(1)
	}

	// 合計実行時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("Done: %d ファイル, %d 行。合計実行時間: %s", len(summary.Files), summary.Rows, elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Sprintly → Pivotal Tracker エクスポートツール

使用方法:
  %s [オプション]

オプション:
  -output プレフィックス  出力ファイル名のプレフィックス
  -offsets 0,100,...     取得するオフセット
  -mapping ファイル       変換表のTOMLファイル
  -dump                  取得したJSONを保存する（csv_convert で再変換可能）
  -help                  このヘルプを表示する

環境変数:
  SPRINTLY_URL          Sprintly URL (デフォルト: https://sprint.ly)
  SPRINTLY_EMAIL        Sprintlyアカウントのメールアドレス (必須)
  SPRINTLY_API_KEY      Sprintly APIキー (必須)
  SPRINTLY_PRODUCT_ID   プロダクトID (必須)
  SPRINTLY_OFFSETS      オフセット (デフォルト: 0,100,200,300)
  SPRINTLY_PAGE_LIMIT   1ページの件数 (デフォルト: 100)
  SPRINTLY_TAGS         取得するタグ (デフォルト: pivotal)
  OUTPUT_PREFIX         出力ファイル名のプレフィックス (デフォルト: tracker_import)
  MAPPING_FILE          変換表のTOMLファイル
  MENTION_POLICY        辞書にないメンションの扱い keep|fail (デフォルト: keep)
  RAGGED_ROWS           true の場合、Commentカラム6個固定のヘッダーで行を埋めない
  SKIP_INVALID_ITEMS    true の場合、変換できないアイテムをスキップする
  DUMP_DIR              -dump 時の保存先 (デフォルト: sprintly_dump)

例:
  # 標準のオフセットでエクスポート
  %s -output sprintly

  # 先頭200件だけエクスポートし、JSONも保存
  %s -offsets 0,100 -dump
`, os.Args[0], os.Args[0], os.Args[0])
}
