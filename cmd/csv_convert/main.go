package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sprintlytotracker/config"
	"sprintlytotracker/services"
	"sprintlytotracker/utils"
)

func main() {
	// コマンドラインフラグの定義
	input := flag.String("input", "", "保存済みJSONのディレクトリ（指定しない場合は環境変数 DUMP_DIR）")
	output := flag.String("output", "", "出力ファイル名のプレフィックス（指定しない場合は環境変数 OUTPUT_PREFIX）")
	mappingFile := flag.String("mapping", "", "変換表のTOMLファイル")
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

	utils.LogInfo("Sprintly JSON → Tracker CSV 変換ツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// コマンドラインでパスが指定された場合、設定を上書き
	if *input != "" {
		cfg.DumpDir = *input
		utils.LogInfo("入力ディレクトリを指定: %s", cfg.DumpDir)
	}
	if *output != "" {
		cfg.OutputPrefix = *output
		utils.LogInfo("出力プレフィックスを指定: %s", cfg.OutputPrefix)
	}
	if *mappingFile != "" {
		cfg.MappingFile = *mappingFile
	}

	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		utils.LogError("変換表の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	source := services.NewDumpSource(cfg.DumpDir)
	offsets, err := source.Offsets()
	if err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}
	if len(offsets) == 0 {
		utils.LogError("%s に items-{offset}.json がありません", cfg.DumpDir)
		os.Exit(1)
	}
	utils.LogInfo("変換対象のオフセット: %v", offsets)

	exportService := services.NewExportService(cfg, source,
		services.NewRowComposer(mapping, cfg.MentionPolicy), services.NewCSVProcessor(cfg))

	summary, err := exportService.ExportAll(cfg.OutputPrefix, offsets)
	if err != nil {
		utils.LogError("CSV変換エラー: %v", err)
		os.Exit(1)
	}

	// 処理時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("CSV変換が完了しました: %d 件のレコードを処理しました。処理時間: %s", summary.Rows, elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
Sprintly JSON → Tracker CSV 変換ツール

使用方法:
  %s [オプション]

オプション:
  -input ディレクトリ   export -dump で保存したJSONのディレクトリ
  -output プレフィックス 出力ファイル名のプレフィックス
  -mapping ファイル      変換表のTOMLファイル
  -help                 このヘルプを表示する

環境変数:
  DUMP_DIR            保存済みJSONのディレクトリ (デフォルト: sprintly_dump)
  OUTPUT_PREFIX       出力ファイル名のプレフィックス (デフォルト: tracker_import)
  MAPPING_FILE        変換表のTOMLファイル
  MENTION_POLICY      辞書にないメンションの扱い keep|fail (デフォルト: keep)

説明:
  このツールは Sprintly API にアクセスせず、保存済みのJSONから
  Pivotal Tracker用のCSVを作成します。変換表を調整して再変換する際に使用します。
`, os.Args[0])
}
