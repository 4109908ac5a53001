package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting render":                         "レンダリングを開始します",
		"Render completed: %d pages, %d warnings": "レンダリング完了: %d ページ, %d 件の警告",
		"Starting animation":                      "アニメーションを開始します",
		"Animation completed successfully":        "アニメーションが正常に完了しました",
		"Output saved to %s":                      "出力を %s に保存しました",
		"Interrupted, shutting down...":           "中断されました。シャットダウン中...",
		"Loading %d assets":                       "%d 個のアセットを読み込み中",

		// Layout
		"Layout calculated: %d pages": "レイアウト計算完了: %d ページ",

		// Composite
		"Compositing page %d of %d": "ページ合成中 %d/%d",

		// Frames
		"Rendering %d frames": "%d フレームを描画中",

		// Encode
		"Encoding video with CRF %d": "CRF %d で動画をエンコード中",
		"Video encoded: %d bytes":    "動画エンコード完了: %d バイト",

		// Ad and deck
		"Composing %s ad":   "%s 広告を構成中",
		"Reading deck %s":   "スライド %s を読み込み中",
		"Deck has %d pages": "スライドは %d ページです",

		// Errors
		"Failed to calculate layout: %s":  "レイアウトの計算に失敗しました: %s",
		"Failed to composite page %d: %s": "ページ %d の合成に失敗しました: %s",
		"Failed to render frames: %s":     "フレームの描画に失敗しました: %s",
		"Failed to encode video: %s":      "動画のエンコードに失敗しました: %s",
		"Failed to compose ad: %s":        "広告の構成に失敗しました: %s",
		"Failed to write output: %s":      "出力の書き込みに失敗しました: %s",
	})
}
