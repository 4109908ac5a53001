// Package main provides localization for the sceneshow CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration":  "設定",
		"External tools": "外部ツール",
		"Output":         "出力先",
		"Video":          "動画",
		"Ad":             "広告",
		"Deck":           "スライド",
		"Debug":          "デバッグ",
		"Logging":        "ログ",

		// Root command
		"Render scenes, animations and product ads to images and video": "シーン・アニメーション・商品広告を画像や動画にレンダリング",
		"sceneshow lays out JSON or YAML scenes of images, text and shapes and renders them to PNG, JPEG or MP4.": "sceneshowは画像・テキスト・図形からなるJSONまたはYAMLのシーンをレイアウトし、PNG・JPEG・MP4に出力します。",

		// Commands
		"Render a scene to PNG or JPEG":     "シーンをPNGまたはJPEGにレンダリング",
		"Render a timeline to MP4":          "タイムラインをMP4にレンダリング",
		"Render a product ad from a record": "商品レコードから広告をレンダリング",
		"Turn a PDF into a slideshow video": "PDFをスライドショー動画に変換",

		// Global flags
		"YAML configuration file":                          "YAML設定ファイル",
		"Canvas preset (story, square, post, landscape)":   "キャンバスプリセット (story, square, post, landscape)",
		"Quality preset (low, medium, high)":               "品質プリセット (low, medium, high)",
		"Frame render workers (0 = from CPUs and memory)":  "フレーム描画ワーカー数 (0 = CPUとメモリから決定)",
		"Directory searched for font files (repeatable)":   "フォントファイルを探すディレクトリ (複数指定可)",
		"Path to ffmpeg executable":                        "ffmpeg実行ファイルのパス",
		"Path to Chrome executable (enables html elements)": "Chrome実行ファイルのパス (html要素を有効化)",
		"Log level (debug, info, warn, error)":             "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                          "すべてのログ出力を抑制",
		"Enable debug output":                              "デバッグ出力を有効化",
		"Directory for debug output":                       "デバッグ出力用ディレクトリ",

		// Command flags
		"Output image path (.png or .jpg; pages get -01, -02 ...)": "出力画像パス (.png または .jpg、複数ページは -01, -02 ...)",
		"Output MP4 file path":                                     "出力MP4ファイルパス",
		"Output path (.png/.jpg, or .mp4 for animated templates)":  "出力パス (.png/.jpg、アニメーションテンプレートは .mp4)",
		"Also write all pages side by side to this image":          "全ページを横に並べた画像もこのパスに出力",
		"Write warnings to a JSON file":                            "警告をJSONファイルに出力",
		"Output execution summary to file (Markdown format)":       "実行サマリーをファイルに出力 (Markdown形式)",
		"Video codec (auto, h264, mjpeg)":                          "動画コーデック (auto, h264, mjpeg)",
		"Frames per second":                                        "フレームレート",
		"Duration to hold final frame in milliseconds":             "最終フレームを保持する時間 (ミリ秒)",
		"Template (minimal, bold, luxury, tiktok)":                 "テンプレート (minimal, bold, luxury, tiktok)",
		"Seconds each slide is shown":                              "各スライドの表示秒数",
		"Cross-fade seconds between slides (0 = cut)":              "スライド間のクロスフェード秒数 (0 = カット)",

		// Runtime messages
		"One %s argument is required":  "%s の引数を1つ指定してください",
		"Rendering %s...":              "%s をレンダリング中...",
		"Animating %s...":              "%s をアニメーション化中...",
		"Rendering %s ad for %s...":    "%s 広告を %s 用にレンダリング中...",
		"Rendering deck %s...":         "スライド %s をレンダリング中...",
		"Tagline: %s":                  "キャッチコピー: %s",
		"Contact sheet saved to %s":    "一覧画像を %s に保存しました",
		"%d warnings":                  "%d 件の警告",
		"Summary saved to %s":          "サマリーを %s に保存しました",
		"Failed to write summary: %s":  "サマリーの書き込みに失敗しました: %s",
		"fallback":                     "フォールバック",

		// Summary
		"Render Summary": "レンダリングサマリー",
		"Source":         "入力",
		"Kind":           "種類",
		"Item":           "項目",
		"Value":          "値",
		"Canvas":         "キャンバス",
		"Frames":         "フレーム数",
		"Duration":       "再生時間",
		"CRF":            "CRF",
		"Outro":          "アウトロ",
		"Pages":          "ページ数",
		"File Size":      "ファイルサイズ",
		"File":           "ファイル",
		"Settings":       "設定",
		"Preset":         "プリセット",
		"Quality":        "品質",
		"Template":       "テンプレート",
		"Codec":          "コーデック",
		"Frame Rate":     "フレームレート",
		"Workers":        "ワーカー数",
		"Warnings":       "警告",
		"No warnings":    "警告はありません",
		"Page":           "ページ",
		"Element":        "要素",
		"Message":        "メッセージ",
		"and %d more":    "ほか %d 件",
		"Generated at":   "生成日時",
	})
}
